package cmdutils

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// StartMemLogs prints heap usage every interval until onEnd is called.
func StartMemLogs(interval time.Duration) (onEnd func()) {
	globalStart := time.Now()
	ticker := time.NewTicker(interval)
	stop := make(chan bool)

	log := func() {
		mins := int(time.Since(globalStart).Minutes())
		fmt.Fprintf(color.Output, "[%sm][%v] utilization\n", color.YellowString("%v", mins), color.YellowString(humanize.IBytes(allocatedMem())))
	}

	go func() {
		for {
			select {
			case <-ticker.C:
				log()
			case <-stop:
				return
			}
		}
	}()

	log()

	return func() {
		ticker.Stop()
		close(stop)
	}
}

func allocatedMem() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
