package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/pinpt/ichurn/ichurn"
	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/cmd/cmdchurn"
	"github.com/pinpt/ichurn/ichurn/filefilter"
	"github.com/pinpt/ichurn/ichurn/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var churnCmd = &cobra.Command{
	Use:   "churn <dir>",
	Short: "Print a churn record for every file changed by the given revisions",
	Long: `Print a churn record for every file changed by the given revisions.

Revisions are read from --revisions, one per line, use - for stdin. When not set all
non-merge commits reachable from HEAD are processed, oldest first.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		exitOnErr(err)

		var revisions []string
		loc, _ := cmd.Flags().GetString("revisions")
		if loc != "" {
			f, err := openFile(loc)
			exitOnErr(err)
			revisions, err = ichurn.ReadRevisions(f)
			f.Close()
			exitOnErr(err)
		}

		_, err = cmdchurn.Run(context.Background(), cmdchurn.Opts{
			RepoDir:   args[0],
			Revisions: revisions,
			Config:    cfg,
			Out:       os.Stdout,
			Log:       os.Stderr,
		})
		exitOnErr(err)
	},
}

func registerChurn() {
	flags := churnCmd.Flags()
	flags.String("revisions", "", "file with one revision per line, - for stdin")
	addChurnFlags(flags)
	rootCmd.AddCommand(churnCmd)
}

func addChurnFlags(flags *pflag.FlagSet) {
	flags.StringSlice("extensions", filefilter.DefaultExtensions, "file suffixes to include")
	flags.StringSlice("globs", nil, "doublestar globs of paths to include, for example src/**/*.go")
	flags.StringSlice("languages", nil, "languages to include, as detected by enry, for example Go,Python")
	flags.Bool("skip-vendored", false, "skip vendored and generated dependency paths")
	flags.String("patch-mode", string(ichurn.PatchModeFile), "file runs git log per file, commit diffs each revision once")
	flags.String("author-match", string(churn.MatchSubstring), "substring or exact, how the commit author is compared to blame authors")
	flags.Duration("blame-timeout", 0, "timeout for each blame lookup, 0 to disable")
	flags.String("cache-file", "", "bolt database caching git output for full sha revisions")
	flags.String("format", string(output.FormatJSONL), "output format, one of "+strings.Join(formatNames(), ", "))
	flags.String("db", "", "also store records in this sqlite database")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address, for example :9090")
}

func formatNames() (res []string) {
	for _, f := range output.Formats {
		res = append(res, string(f))
	}
	return
}
