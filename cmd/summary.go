package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pinpt/ichurn/ichurn"
	"github.com/pinpt/ichurn/ichurn/cmd/cmdutils"
	"github.com/pinpt/ichurn/ichurn/config"
	"github.com/pinpt/ichurn/ichurn/summary"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <dir>",
	Short: "Print commit and line totals for the history of a revision",
	Long: `Print commit and line totals for the history of a revision, optionally restricted to one file.

With --affected the given revisions are processed like the churn command and the number of
deleted lines previously written by other authors is printed instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		repoDir := args[0]
		text, _ := cmd.Flags().GetBool("text")
		cfg, err := loadConfig(cmd)
		exitOnErr(err)

		affected, _ := cmd.Flags().GetString("affected")
		if affected != "" {
			res, err := runAffected(ctx, cfg, repoDir, affected)
			exitOnErr(err)
			if text {
				fmt.Printf("%v affected lines\n", res.AffectedLines)
				return
			}
			printJSON(res)
			return
		}

		rev, _ := cmd.Flags().GetString("revision")
		file, _ := cmd.Flags().GetString("file")
		res, err := summary.History(ctx, repoDir, summary.Opts{
			Revision:   rev,
			File:       file,
			GitCommand: cfg.GitCommand,
		})
		exitOnErr(err)
		if text {
			fmt.Println(res.String())
			return
		}
		printJSON(res)
	},
}

func runAffected(ctx context.Context, cfg *config.Config, repoDir string, loc string) (res summary.Affected, _ error) {
	f, err := openFile(loc)
	if err != nil {
		return res, err
	}
	revisions, err := ichurn.ReadRevisions(f)
	f.Close()
	if err != nil {
		return res, err
	}
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		return res, err
	}
	opts := cfg.IchurnOpts(repoDir)
	opts.Logger = log
	records, failed, err := ichurn.New(opts).RunAll(ctx, revisions)
	if err != nil {
		return res, err
	}
	if len(failed) != 0 {
		errs := make([]error, len(failed))
		for i, f := range failed {
			errs[i] = f
		}
		cmdutils.PrintErrs(os.Stderr, errs)
		fmt.Fprintln(os.Stderr, color.YellowString("Warning! %v units failed, not included in the total", len(failed)))
	}
	_, res = summary.Aggregate(records)
	return res, nil
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	exitOnErr(err)
	fmt.Println(string(b))
}

func registerSummary() {
	flags := summaryCmd.Flags()
	flags.String("revision", "HEAD", "revision whose history is summarized")
	flags.String("file", "", "only count commits touching this path")
	flags.String("affected", "", "file with one revision per line, - for stdin, prints affected lines instead")
	flags.Bool("text", false, "print a human readable line instead of json")
	addChurnFlags(flags)
	rootCmd.AddCommand(summaryCmd)
}
