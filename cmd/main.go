package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/rostr/pkg/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the rostr command tree. Without a subcommand it serves
// the API.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rostr",
		Short: "rostr - fantasy baseball pitcher grading service",
		Long: `rostr grades starting pitchers from their season line, keeps user
rosters, evaluates trades and recommends pickups.

Configuration is read from defaults, then the YAML file named by
ROSTR_CONFIG, then ROSTR_* environment variables.

Run without arguments to start the HTTP API.`,
		SilenceUsage: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}
	serve := newServeCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve, newGradeCmd(), newImportCmd(), newLoadTestCmd())
	return root
}
