package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the amiibo catalog API",
}

var catalogHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the catalog API is reachable",
	RunE:  runCatalogHealth,
}

var catalogSeriesCmd = &cobra.Command{
	Use:   "series",
	Short: "List amiibo series",
	RunE:  runCatalogSeries,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search amiibo and optionally save the results as a template",
	Long: `Search the amiibo catalog. With --template, the results become the
items of a new template file that "generate" can render.`,
	RunE: runCatalogSearch,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogHealthCmd, catalogSeriesCmd, catalogSearchCmd)

	catalogSearchCmd.Flags().String("name", "", "Filter by amiibo name")
	catalogSearchCmd.Flags().String("series", "", "Filter by amiibo series")
	catalogSearchCmd.Flags().String("game-series", "", "Filter by game series")
	catalogSearchCmd.Flags().String("character", "", "Filter by character")
	catalogSearchCmd.Flags().String("kind", "", "Filter by figure type (Figure, Card, Yarn, Band)")
	catalogSearchCmd.Flags().Int("limit", 0, "Keep at most this many results (0 = all)")
	catalogSearchCmd.Flags().String("template", "", "Write the results as a template JSON file")
	catalogSearchCmd.Flags().String("template-name", "", "Name of the written template (default: the search)")
	catalogSearchCmd.Flags().String("type", string(layout.Coin), "Template type of the written template")
	catalogSearchCmd.Flags().String("page-size", layout.DefaultPageSizeKey, "Page size of the written template")
}

func newCatalogClient(cfg *config.Config) (*catalog.Client, error) {
	return catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.Timeout)
}

func runCatalogHealth(cmd *cobra.Command, args []string) error {
	client, err := newCatalogClient(config.Load())
	if err != nil {
		return err
	}
	status := client.Health(context.Background())
	if !status.Online {
		return fmt.Errorf("catalog API offline after %dms: %s", status.ResponseTime, status.Error)
	}
	fmt.Printf("Catalog API online (%dms)\n", status.ResponseTime)
	return nil
}

func runCatalogSeries(cmd *cobra.Command, args []string) error {
	client, err := newCatalogClient(config.Load())
	if err != nil {
		return err
	}
	series, err := client.AmiiboSeries(context.Background())
	if err != nil {
		return err
	}
	for _, s := range series {
		fmt.Printf("%-6s %s\n", s.Key, s.Name)
	}
	return nil
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	client, err := newCatalogClient(config.Load())
	if err != nil {
		return err
	}

	q := catalog.Query{
		Name:         mustGetString(cmd, "name"),
		AmiiboSeries: mustGetString(cmd, "series"),
		GameSeries:   mustGetString(cmd, "game-series"),
		Character:    mustGetString(cmd, "character"),
		Type:         mustGetString(cmd, "kind"),
	}
	if q == (catalog.Query{}) {
		return errors.New("at least one filter is required")
	}

	found, err := client.Search(context.Background(), q)
	if err != nil {
		return err
	}
	if limit := mustGetInt(cmd, "limit"); limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	list := catalog.List{Name: searchLabel(q)}
	for _, a := range found {
		if list.Add(a.ToListItem()) {
			fmt.Printf("%s  %-28s %s\n", a.Head+a.Tail, a.Name, a.AmiiboSeries)
		}
	}
	fmt.Printf("%d amiibo found\n", len(list.Items))

	out := mustGetString(cmd, "template")
	if out == "" {
		return nil
	}
	if len(list.Items) == 0 {
		return errors.New("no results to write")
	}

	tpl := templates.Defaults()
	tpl.ID = templates.NewID()
	tpl.Name = mustGetString(cmd, "template-name")
	if tpl.Name == "" {
		tpl.Name = list.Name
	}
	tpl.ListName = list.Name
	tpl.TemplateType = mustGetTemplateType(cmd, "type")
	tpl.PageSize = mustGetString(cmd, "page-size")
	tpl.Items = list.Items
	if err := tpl.Validate(); err != nil {
		return err
	}

	data, err := templates.Export([]templates.Config{tpl})
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	fmt.Printf("Wrote template %q to %s\n", tpl.Name, out)
	return nil
}

// searchLabel names a list after the most specific filter of a search.
func searchLabel(q catalog.Query) string {
	for _, s := range []string{q.Name, q.Character, q.AmiiboSeries, q.GameSeries, q.Type} {
		if s != "" {
			return s
		}
	}
	return "amiibo"
}
