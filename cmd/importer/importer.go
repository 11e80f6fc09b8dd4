// Package importer implements the command importing movement data exports.
package importer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/importer"
	"github.com/ecoguard/ecoguard-go/internal/logging"
)

// Command creates the command that imports a CSV movement data export.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "import [movements.csv]",
		Short: "Import a movement data export",
		Long:  "Bulk-import collar movement records from a CSV export into the configured database.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no database backend enabled in settings")
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			count, err := importer.ImportCSV(store, args[0])
			if err != nil {
				return err
			}
			logging.Info("Import finished", "records", count, "file", args[0])
			return nil
		},
	}
}
