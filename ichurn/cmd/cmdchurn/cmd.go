package cmdchurn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/pinpt/ichurn/ichurn"
	"github.com/pinpt/ichurn/ichurn/cmd/cmdutils"
	"github.com/pinpt/ichurn/ichurn/commitmeta"
	"github.com/pinpt/ichurn/ichurn/config"
	"github.com/pinpt/ichurn/ichurn/gitexec"
	"github.com/pinpt/ichurn/ichurn/metrics"
	"github.com/pinpt/ichurn/ichurn/output"
)

type Opts struct {
	// RepoDir is the git repo to run on.
	RepoDir string

	// Revisions to process. When empty all non-merge commits reachable from HEAD are
	// processed, oldest first.
	Revisions []string

	Config *config.Config

	// Out receives the records in the configured format.
	Out io.Writer

	// Log receives progress output and log lines.
	Log io.Writer
}

type Stats struct {
	Revisions int
	Records   int
	Failures  []error
}

func Run(ctx context.Context, opts Opts) (stats Stats, rerr error) {
	start := time.Now()
	cfg := opts.Config

	log, err := cfg.Logger(opts.Log)
	if err != nil {
		return stats, err
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		stop := cmdutils.ServeMetrics(cfg.MetricsAddr, m, log)
		defer stop()
	}

	var cache *gitexec.Cache
	if cfg.CacheFile != "" {
		cache, err = gitexec.OpenCache(cfg.CacheFile)
		if err != nil {
			return stats, err
		}
		defer cache.Close()
	}

	writers, err := openWriters(cfg, opts.Out, opts.Log)
	if err != nil {
		return stats, err
	}
	defer func() {
		if err := writers.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()

	rerr = cmdutils.RunOnRepo(ctx, opts.Log, cfg.GitCommand, opts.RepoDir, func() error {
		revisions := opts.Revisions
		if len(revisions) == 0 {
			revisions, err = commitmeta.New(opts.RepoDir, commitmeta.Opts{GitCommand: cfg.GitCommand}).RevList(ctx, "HEAD", true)
			if err != nil {
				return err
			}
		}
		stats.Revisions = len(revisions)

		iopts := cfg.IchurnOpts(opts.RepoDir)
		iopts.Logger = log
		iopts.Cache = cache
		iopts.Observer = m

		res := make(chan ichurn.Result)
		done := make(chan error)
		go func() {
			var werr error
			for r := range res {
				if r.Err != nil {
					stats.Failures = append(stats.Failures, r.Err)
					continue
				}
				stats.Records++
				if werr == nil {
					werr = writers.Write(r.Record)
				}
			}
			done <- werr
		}()
		runErr := ichurn.New(iopts).Run(ctx, revisions, res)
		werr := <-done
		return errors.Join(runErr, werr)
	})

	if len(stats.Failures) != 0 {
		cmdutils.PrintErrs(opts.Log, stats.Failures)
		fmt.Fprintf(opts.Log, "%v", color.YellowString("Warning! %v units failed\n", len(stats.Failures)))
	}
	fmt.Fprintf(opts.Log, "%v", color.GreenString("Finished processing %d revisions %d records in %v\n", stats.Revisions, stats.Records, time.Since(start)))
	return stats, rerr
}

func openWriters(cfg *config.Config, out io.Writer, log io.Writer) (output.Multi, error) {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	w, err := output.New(format, out)
	if err != nil {
		return nil, err
	}
	res := output.Multi{w}
	if cfg.DB != "" {
		db, err := output.OpenSQLite(cfg.DB)
		if err != nil {
			return nil, errors.Join(err, w.Close())
		}
		fmt.Fprintf(log, "storing records in %v run_id=%v\n", color.GreenString(cfg.DB), color.CyanString(db.RunID()))
		res = append(res, db)
	}
	return res, nil
}
