package main

import (
	"fmt"

	"github.com/franciscosanchezn/gin-pizzeria/internal/importer"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		file string
		opts importer.Options
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the pizza sales CSV",
		Long:  "Import the pizza sales CSV. Re-running the import on the same file creates nothing new.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := bootstrap()
			if err != nil {
				return err
			}
			if file == "" {
				file = conf.CSVPath
			}

			db, err := setupDatabase(conf)
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{"file": file, "dry_run": opts.DryRun, "clear": opts.Clear}).Info("Importing sales")
			result, err := importer.New(db, conf.Location()).ImportFile(cmd.Context(), file, opts)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "Dry run: all changes rolled back.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the CSV file (default $CSV_PATH)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "run the import and roll it back")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete all items, orders, variants and pizzas first")
	return cmd
}
