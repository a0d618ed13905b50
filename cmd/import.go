package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Import a pitcher season catalog into the configured database",
		Long: `Import upserts every pitcher season in the file. Rostered players keep
their stored grades; a running server re-grades them when it imports the
same seasons.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, store, err := setup(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			svc, _, err := newService(cfg, store)
			if err != nil {
				return err
			}
			res, err := svc.LoadCatalog(ctx, args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d pitcher seasons for %v\n", res.Rows, res.Seasons)
			return nil
		},
	}
}
