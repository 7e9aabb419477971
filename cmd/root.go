package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pinpt/ichurn/ichurn/cmd/cmdutils"
	"github.com/pinpt/ichurn/ichurn/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "ichurn",
	Short:         "Interactive churn metrics for git repositories",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		p, _ := cmd.Flags().GetString("profile")
		if p != "" {
			onEnd, err := cmdutils.EnableProfiling(p)
			if err != nil {
				return err
			}
			stopHooks = append(stopHooks, onEnd)
		}
		if memLogs, _ := cmd.Flags().GetBool("mem-logs"); memLogs {
			stopHooks = append(stopHooks, cmdutils.StartMemLogs(time.Second))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runStopHooks()
	},
}

var stopHooks []func()

func runStopHooks() {
	for i := len(stopHooks) - 1; i >= 0; i-- {
		stopHooks[i]()
	}
	stopHooks = nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loc, _ := cmd.Flags().GetString("config")
	return config.Load(loc, cmd.Flags())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file, defaults to .ichurn.yaml in the current or home dir")
	flags.String("profile", "", "one of mem, mutex, cpu, block, trace or empty to disable")
	flags.Bool("mem-logs", false, "print memory utilization every second")
	flags.String("git-command", "git", "git binary to use")
	flags.Int("workers", 0, "number of files processed concurrently, defaults to the number of cpus")
	flags.String("log-level", "info", "one of debug, info, warn, error")
	flags.Bool("log-json", false, "log in json format")

	registerChurn()
	registerSummary()
	registerValidate()

	if err := rootCmd.Execute(); err != nil {
		runStopHooks()
		cmdutils.ExitWithErr(err)
	}
}

func exitOnErr(err error) {
	if err != nil {
		runStopHooks()
		cmdutils.ExitWithErr(err)
	}
}

func openFile(loc string) (*os.File, error) {
	if loc == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(loc)
	if err != nil {
		return nil, fmt.Errorf("can't open %v: %w", loc, err)
	}
	return f, nil
}
