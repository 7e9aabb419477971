// Package gitrepos finds git repositories below a directory.
package gitrepos

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
)

// IterDir calls cb for dir if it is a git repo, otherwise for every repo found in its
// subdirectories up to maxRecursion levels deep. Both work trees (containing .git) and
// bare repos (name ending in .git, containing objects) are reported. Repos are not
// searched for nested repos.
func IterDir(dir string, maxRecursion int, cb func(repo string) error) error {
	repos, err := Find(dir, maxRecursion)
	if err != nil {
		return err
	}
	for _, r := range repos {
		if err := cb(r); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the repos IterDir would visit, in lexical order.
func Find(dir string, maxRecursion int) (res []string, _ error) {
	stat, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("can't stat passed dir, err: %v", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("passed dir is a file, expecting a dir")
	}
	root := filepath.Clean(dir)

	err = godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if de.Name() == ".git" {
				return godirwalk.SkipThis
			}
			ok, err := isRepo(osPathname)
			if err != nil {
				return err
			}
			if ok {
				res = append(res, osPathname)
				return godirwalk.SkipThis
			}
			if depth(root, osPathname) >= maxRecursion {
				return godirwalk.SkipThis
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func depth(root, p string) int {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func isRepo(dir string) (bool, error) {
	ok, err := dirContainsDir(dir, ".git")
	if err != nil || ok {
		return ok, err
	}
	if filepath.Ext(dir) == ".git" {
		return dirContainsDir(dir, "objects")
	}
	return false, nil
}

func dirContainsDir(dir string, sub string) (bool, error) {
	stat, err := os.Stat(filepath.Join(dir, sub))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("can't check if dir contains %v, dir: %v err: %v", sub, dir, err)
	}
	return stat.IsDir(), nil
}
