package ichurn

import (
	"bufio"
	"io"
	"strings"
)

// ReadRevisions reads one revision per line. Blank lines and lines starting with # are
// skipped, surrounding whitespace is trimmed.
func ReadRevisions(r io.Reader) (res []string, _ error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res = append(res, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
