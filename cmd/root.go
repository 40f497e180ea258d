package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/vigil/internal/log"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}
	var prof *profiler

	rootCmd := &cobra.Command{
		Use:   "vigil",
		Short: "GitHub repository watcher",
		Long: `Watches configured GitHub repositories and collects notifications
for new issues and pull requests, mentions of you, replies in review
threads you were pulled into, and activity on items assigned to you.
Notifications accumulate in a local store until acknowledged.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			log.Initialize(opts.Verbosity, os.Stderr)
			prof = newProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
			return prof.start()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			prof.stop()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add list flags to the root command so `vigil` and `vigil list`
	// work identically
	addListFlags(rootCmd, opts)

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	pf.StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	pf.StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	pf.StringVar(&opts.Trace, "trace", "", "Write execution trace to file")

	// Register subcommands
	rootCmd.AddCommand(NewCmdList(opts))
	rootCmd.AddCommand(NewCmdWatch(opts))
	rootCmd.AddCommand(NewCmdPoll(opts))
	rootCmd.AddCommand(NewCmdOpen())
	rootCmd.AddCommand(NewCmdRead())
	rootCmd.AddCommand(NewCmdStatus())
	rootCmd.AddCommand(NewCmdRateLimit())
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdAuth())
	rootCmd.AddCommand(NewCmdClear())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
