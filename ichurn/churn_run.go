package ichurn

import (
	"context"
	"time"

	"github.com/pinpt/ichurn/ichurn/churn"
	"golang.org/x/sync/errgroup"
)

// Result is one processed (revision, file) unit. Err is set when the unit failed, in which
// case Record is the zero value.
type Result struct {
	Record churn.Record
	Err    *churn.UnitError
}

type unit struct {
	revision string
	file     string
	// lines is the pre-split patch in commit patch mode
	lines []string
	// err is a revision level failure, reported as a unit with an empty file
	err error
}

// Run processes revisions and sends one Result per unit to res. Results are delivered in
// submission order even though units run concurrently. A failed unit does not stop the
// batch. Run stops dispatching new units once ctx is done and returns ctx.Err().
// res is closed when Run returns.
func (s *Ichurn) Run(ctx context.Context, revisions []string, res chan<- Result) error {
	defer close(res)

	started := time.Now()
	var units, failures int

	pending := make(chan chan Result, s.opts.Workers*2)
	done := make(chan bool)
	go func() {
		for p := range pending {
			r := <-p
			units++
			if r.Err != nil {
				failures++
			}
			res <- r
		}
		done <- true
	}()

	g := &errgroup.Group{}
	g.SetLimit(s.opts.Workers)

	err := s.dispatch(ctx, g, revisions, pending)
	close(pending)
	<-done
	_ = g.Wait()

	s.opts.Logger.Info("churn run finished", "revisions", len(revisions), "units", units, "failures", failures, "dur", time.Since(started).String())
	return err
}

// RunAll is Run collecting all results in memory.
func (s *Ichurn) RunAll(ctx context.Context, revisions []string) (records []churn.Record, failed []*churn.UnitError, _ error) {
	res := make(chan Result)
	done := make(chan bool)
	go func() {
		for r := range res {
			if r.Err != nil {
				failed = append(failed, r.Err)
				continue
			}
			records = append(records, r.Record)
		}
		done <- true
	}()
	err := s.Run(ctx, revisions, res)
	<-done
	return records, failed, err
}

func (s *Ichurn) dispatch(ctx context.Context, g *errgroup.Group, revisions []string, pending chan<- chan Result) error {
	for _, rev := range revisions {
		if err := ctx.Err(); err != nil {
			return err
		}
		units, err := s.revisionUnits(ctx, rev)
		if err != nil {
			units = []unit{{revision: rev, err: err}}
		}
		for _, u := range units {
			u := u
			p := make(chan Result, 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case pending <- p:
			}
			g.Go(func() error {
				p <- s.processUnit(ctx, u)
				return nil
			})
		}
	}
	return nil
}

func (s *Ichurn) revisionUnits(ctx context.Context, rev string) (res []unit, _ error) {
	c, err := s.meta.Commit(ctx, rev)
	if err != nil {
		return nil, err
	}
	if c.IsMerge() {
		s.opts.Logger.Debug("skipping merge commit", "rev", rev)
		return nil, nil
	}
	var patches map[string][]string
	if s.opts.PatchMode == PatchModeCommit {
		patches, err = s.gitPatch.CommitPatches(ctx, c)
		if err != nil {
			return nil, err
		}
	}
	for _, f := range c.FileNames() {
		if !s.opts.Filter.Match(f) {
			continue
		}
		u := unit{revision: c.SHA, file: f}
		if s.opts.PatchMode == PatchModeCommit {
			u.lines = patches[f]
			if u.lines == nil {
				// binary files have no hunks
				u.lines = []string{"commit " + c.SHA, c.AuthorLine()}
			}
		}
		res = append(res, u)
	}
	s.opts.Logger.Debug("listed revision files", "rev", rev, "files", len(c.Files), "selected", len(res))
	return res, nil
}

func (s *Ichurn) processUnit(ctx context.Context, u unit) Result {
	if u.err != nil {
		return s.failed(u, u.err)
	}
	lines := u.lines
	if lines == nil {
		var err error
		lines, err = s.patches.Patch(ctx, u.revision, u.file)
		if err != nil {
			return s.failed(u, err)
		}
	}
	rec, err := s.builder.Build(ctx, u.revision, u.file, lines)
	if err != nil {
		return s.failed(u, err)
	}
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveRecord(rec)
	}
	return Result{Record: rec}
}

func (s *Ichurn) failed(u unit, err error) Result {
	uerr := &churn.UnitError{Revision: u.revision, File: u.file, Err: err}
	s.opts.Logger.Warn("unit failed", "rev", u.revision, "file", u.file, "err", err.Error())
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveFailure(uerr)
	}
	return Result{Err: uerr}
}
