package gitblame

import (
	"fmt"
	"strconv"
	"strings"
)

type line struct {
	CommitHash string
	FinalLine  int
	Content    string
	Meta       map[string]string
}

// parseOutput parses git blame --porcelain output. Metadata is only printed the first
// time a commit appears, later lines of the same commit reuse it.
func parseOutput(data string) (res []line, _ error) {
	lines := strings.Split(data, "\n")
	metasByCommit := map[string]map[string]string{}
	for i := 0; i < len(lines); {
		fl := lines[i]
		if fl == "" && i == len(lines)-1 {
			// skip last empty line
			break
		}
		parts := strings.Split(fl, " ")
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid blame header line %v: %q", i+1, fl)
		}
		rl := line{}
		rl.CommitHash = parts[0]
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid final line number in blame header %q: %v", fl, err)
		}
		rl.FinalLine = n
		rl.Meta = map[string]string{}
		for {
			i++
			if i >= len(lines) {
				return nil, fmt.Errorf("after header in git blame we need the content line, header: %q", fl)
			}
			l := lines[i]
			if strings.HasPrefix(l, "\t") {
				rl.Content = l[1:]
				break
			}
			parts := strings.SplitN(l, " ", 2)
			if len(parts) == 2 {
				rl.Meta[parts[0]] = parts[1]
			} else {
				// i.e. boundary
				rl.Meta[l] = ""
			}
		}
		// newer git repeats the filename for every group, merge instead of replacing
		if prev, ok := metasByCommit[rl.CommitHash]; ok {
			merged := make(map[string]string, len(prev)+len(rl.Meta))
			for k, v := range prev {
				merged[k] = v
			}
			for k, v := range rl.Meta {
				merged[k] = v
			}
			rl.Meta = merged
		}
		metasByCommit[rl.CommitHash] = rl.Meta
		res = append(res, rl)
		i++
	}
	return
}
