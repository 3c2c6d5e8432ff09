package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
	"github.com/kozaktomas/amiibo-sheets/internal/templates/postgres"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage templates stored in PostgreSQL",
	Long: `List, import, export and delete the templates the web server stores.
Requires DATABASE_URL.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesImportCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Import templates from an export file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesImport,
}

var templatesExportCmd = &cobra.Command{
	Use:   "export [file.json]",
	Short: "Export all stored templates",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesExport,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd, templatesImportCmd, templatesExportCmd, templatesDeleteCmd)
}

// requireDatabaseStore opens the PostgreSQL template store.
func requireDatabaseStore() (templates.Store, func(), error) {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}
	store, err := openTemplateStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	closePool := func() {
		if pool := postgres.GetGlobalPool(); pool != nil {
			pool.Close()
		}
	}
	return store, closePool, nil
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	store, closePool, err := requireDatabaseStore()
	if err != nil {
		return err
	}
	defer closePool()

	cs, err := store.List(context.Background())
	if err != nil {
		return err
	}
	for _, c := range cs {
		fmt.Printf("%s  %-28s %-5s %-7s %3d items  %s\n",
			c.ID, c.Name, c.TemplateType, c.PageSize, len(c.Items), c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("%d templates\n", len(cs))
	return nil
}

func runTemplatesImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	store, closePool, err := requireDatabaseStore()
	if err != nil {
		return err
	}
	defer closePool()

	res, err := templates.Import(context.Background(), store, data)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d templates, skipped %d\n", res.Imported, res.Skipped)
	return nil
}

func runTemplatesExport(cmd *cobra.Command, args []string) error {
	store, closePool, err := requireDatabaseStore()
	if err != nil {
		return err
	}
	defer closePool()

	data, err := templates.ExportAll(context.Background(), store)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}
	fmt.Printf("Exported templates to %s\n", args[0])
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	store, closePool, err := requireDatabaseStore()
	if err != nil {
		return err
	}
	defer closePool()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted template %s\n", args[0])
	return nil
}
