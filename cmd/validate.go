package cmd

import (
	"context"
	"os"

	"github.com/pinpt/ichurn/ichurn/cmd/cmdutils"
	"github.com/pinpt/ichurn/ichurn/cmd/cmdvalidate"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dirs...>",
	Short: "Check churn records against git numstat and blame for every repo found in dirs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		exitOnErr(err)
		log, err := cfg.Logger(os.Stderr)
		exitOnErr(err)
		maxCommits, _ := cmd.Flags().GetInt("max-commits")

		errs, err := cmdvalidate.Run(context.Background(), os.Stdout, args, cmdvalidate.Opts{
			GitCommand: cfg.GitCommand,
			Workers:    cfg.Workers,
			Logger:     log,
			MaxCommits: maxCommits,
		})
		exitOnErr(err)
		if len(errs) != 0 {
			runStopHooks()
			cmdutils.ExitWithErrs(errs)
		}
	},
}

func registerValidate() {
	validateCmd.Flags().Int("max-commits", 0, "only check this many of the most recent commits per repo, 0 checks all")
	rootCmd.AddCommand(validateCmd)
}
