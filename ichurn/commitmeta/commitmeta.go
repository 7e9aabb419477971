package commitmeta

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pinpt/ichurn/ichurn/gitexec"
)

type Opts struct {
	// GitCommand defaults to git.
	GitCommand string
}

type Processor struct {
	repoDir    string
	gitCommand string
	opts       Opts
}

func New(repoDir string, opts Opts) *Processor {
	s := &Processor{
		repoDir:    repoDir,
		gitCommand: opts.GitCommand,
		opts:       opts,
	}
	if s.gitCommand == "" {
		s.gitCommand = "git"
	}
	return s
}

// Commit is a specific detail around a commit
type Commit struct {
	SHA         string
	AuthorName  string
	AuthorEmail string
	Date        time.Time
	Message     string
	Parents     []string
	Files       map[string]*CommitFile
}

// Author returns either the author name (preference) or the email if not found
func (c Commit) Author() string {
	if c.AuthorName != "" {
		return c.AuthorName
	}
	return c.AuthorEmail
}

// AuthorLine returns the author in the format git log prints it.
func (c Commit) AuthorLine() string {
	return fmt.Sprintf("Author: %s <%s>", c.AuthorName, c.AuthorEmail)
}

// IsMerge returns true for commits with more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// FileNames returns changed file paths sorted.
func (c Commit) FileNames() []string {
	res := make([]string, 0, len(c.Files))
	for f := range c.Files {
		res = append(res, f)
	}
	sort.Strings(res)
	return res
}

// CommitFile is a specific detail around a file in a commit
type CommitFile struct {
	Filename  string
	Additions int
	Deletions int
	Binary    bool
}

const (
	shaPrefix        = "!SHA: "
	parentsPrefix    = "!Parents: "
	authorPrefix     = "!Author: "
	authorNamePrefix = "!AName: "
	datePrefix       = "!Date: "
	messagePrefix    = "!Message: "
)

// Commit returns metadata and numstat for a single revision. Renames are reported as a
// deletion plus an addition, matching how a per path git log sees them. Author name and
// email respect .mailmap, like blame and git log do.
func (s *Processor) Commit(ctx context.Context, revision string) (res Commit, _ error) {
	args := []string{
		"-c", "core.quotePath=false",
		"show",
		"--numstat",
		"--no-renames",
		"--no-color",
		"--pretty=format:" + shaPrefix + "%H%n" + parentsPrefix + "%P%n" + authorPrefix + "%aE%n" + authorNamePrefix + "%aN%n" + datePrefix + "%aI%n" + messagePrefix + "%s%n",
		revision,
		"--",
	}
	out, err := gitexec.Exec(ctx, s.gitCommand, s.repoDir, args)
	if err != nil {
		return res, err
	}
	return parseShow(string(out))
}

func parseShow(data string) (res Commit, _ error) {
	res.Files = map[string]*CommitFile{}
	for _, line := range strings.Split(data, "\n") {
		switch {
		case strings.HasPrefix(line, shaPrefix):
			res.SHA = strings.TrimSpace(line[len(shaPrefix):])
		case strings.HasPrefix(line, parentsPrefix):
			res.Parents = strings.Fields(line[len(parentsPrefix):])
		case strings.HasPrefix(line, authorPrefix):
			res.AuthorEmail = strings.TrimSpace(line[len(authorPrefix):])
		case strings.HasPrefix(line, authorNamePrefix):
			res.AuthorName = strings.TrimSpace(line[len(authorNamePrefix):])
		case strings.HasPrefix(line, datePrefix):
			d := strings.TrimSpace(line[len(datePrefix):])
			t, err := time.Parse(time.RFC3339, d)
			if err != nil {
				return res, fmt.Errorf("error parsing commit date `%v`. %v", d, err)
			}
			res.Date = t.UTC()
		case strings.HasPrefix(line, messagePrefix):
			res.Message = line[len(messagePrefix):]
		case line == "":
		default:
			f, err := parseNumstat(line)
			if err != nil {
				return res, err
			}
			res.Files[f.Filename] = f
		}
	}
	if res.SHA == "" {
		return res, fmt.Errorf("no commit found in git show output")
	}
	return res, nil
}

func parseNumstat(line string) (*CommitFile, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid numstat line %q", line)
	}
	name, err := unquotePath(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid numstat path %q: %v", line, err)
	}
	f := &CommitFile{Filename: name}
	if parts[0] == "-" && parts[1] == "-" {
		f.Binary = true
		return f, nil
	}
	if f.Additions, err = strconv.Atoi(parts[0]); err != nil {
		return nil, fmt.Errorf("invalid numstat additions %q: %v", line, err)
	}
	if f.Deletions, err = strconv.Atoi(parts[1]); err != nil {
		return nil, fmt.Errorf("invalid numstat deletions %q: %v", line, err)
	}
	return f, nil
}

// unquotePath undoes the C style quoting git still applies to paths with control
// characters, quotes or backslashes when core.quotePath is off.
func unquotePath(p string) (string, error) {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p, nil
	}
	return strconv.Unquote(p)
}

// RevList returns commits reachable from revision, oldest first.
func (s *Processor) RevList(ctx context.Context, revision string, noMerges bool) ([]string, error) {
	args := []string{"rev-list", "--reverse"}
	if noMerges {
		args = append(args, "--no-merges")
	}
	args = append(args, revision, "--")
	out, err := gitexec.Exec(ctx, s.gitCommand, s.repoDir, args)
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(out)), nil
}
