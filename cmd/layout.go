package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/amiibo-sheets/internal/layout"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [template.json]",
	Short: "Show how many items fit on a page",
	Long: `Compute the page grid for a template without rendering anything.
Dimensions come from flags, or from a template file when one is given.
Every item needs two slots (front and back).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().String("type", string(layout.Coin), "Template type: coin or card")
	layoutCmd.Flags().String("page-size", layout.DefaultPageSizeKey, "Page size: a4, letter, a3, legal")
	layoutCmd.Flags().Float64("diameter", templates.DefaultDiameter, "Coin diameter in mm")
	layoutCmd.Flags().Float64("card-width", templates.DefaultCardWidth, "Card width in mm")
	layoutCmd.Flags().Float64("card-height", templates.DefaultCardHeight, "Card height in mm")
	layoutCmd.Flags().Float64("margin", templates.DefaultMargin, "Page margin in mm")
	layoutCmd.Flags().Float64("spacing", templates.DefaultSpacing, "Spacing between items in mm")
	layoutCmd.Flags().Int("items", 0, "Number of items to place (defaults to the template's items)")
	layoutCmd.Flags().String("id", "", "Template id (or name) when the file holds several")
	layoutCmd.Flags().Bool("list-sizes", false, "List the supported page sizes and exit")
}

func runLayout(cmd *cobra.Command, args []string) error {
	if mustGetBool(cmd, "list-sizes") {
		for _, ps := range layout.PageSizes() {
			fmt.Printf("%-8s %-24s %dx%d px\n", ps.Key, ps.Name, ps.WidthPx(), ps.HeightPx())
		}
		return nil
	}

	tpl := templates.Defaults()
	items := mustGetInt(cmd, "items")

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		cs, err := templates.Decode(data)
		if err != nil {
			return err
		}
		if tpl, err = selectTemplate(cs, mustGetString(cmd, "id")); err != nil {
			return err
		}
		if items == 0 {
			items = len(tpl.Items)
		}
	} else {
		tpl.TemplateType = mustGetTemplateType(cmd, "type")
		tpl.PageSize = mustGetString(cmd, "page-size")
		tpl.Diameter = mustGetFloat64(cmd, "diameter")
		tpl.CardWidth = mustGetFloat64(cmd, "card-width")
		tpl.CardHeight = mustGetFloat64(cmd, "card-height")
		tpl.Margin = mustGetFloat64(cmd, "margin")
		tpl.Spacing = mustGetFloat64(cmd, "spacing")
	}

	params, err := tpl.Params()
	if err != nil {
		return err
	}
	g, err := layout.Calculate(params)
	if err != nil {
		return err
	}

	fw, fh := params.Footprint()
	s := g.Summarize(items)
	fmt.Printf("Page:        %s (%dx%d px at %d DPI)\n", params.PageSize.Name, g.PageWidthPx, g.PageHeightPx, layout.DPI)
	fmt.Printf("Item:        %s %.1fx%.1f mm (%dx%d px)\n", params.Type, fw, fh, g.ItemWidthPx, g.ItemHeightPx)
	fmt.Printf("Grid:        %d per row x %d rows = %d per page\n", s.ItemsPerRow, s.RowsPerPage, s.ItemsPerPage)
	if items > 0 {
		fmt.Printf("Items:       %d (%d slots)\n", items, s.TotalSlots)
		fmt.Printf("Pages:       %d\n", s.PagesNeeded)
	}
	return nil
}
