package cmdutils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
)

// ProfileKinds lists the values EnableProfiling accepts.
var ProfileKinds = []string{"cpu", "mem", "trace", "block", "mutex"}

func EnableProfiling(kind string) (onEnd func(), _ error) {
	var mode func(*profile.Profile)
	switch kind {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "trace":
		mode = profile.TraceProfile
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	default:
		return nil, fmt.Errorf("unexpected profile %q, expecting one of %v", kind, ProfileKinds)
	}

	dir, err := os.MkdirTemp("", "ichurn-profile")
	if err != nil {
		return nil, err
	}
	stop := profile.Start(mode, profile.ProfilePath(dir), profile.Quiet).Stop

	return func() {
		stop()
		fn := filepath.Join(dir, kind+".pprof")
		fmt.Printf("to view profile, run `go tool pprof --pdf %s`\n", fn)
	}, nil
}
