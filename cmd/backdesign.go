package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/amiibo-sheets/internal/backdesign"
	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/export"
	"github.com/kozaktomas/amiibo-sheets/internal/sheets"
)

var backdesignCmd = &cobra.Command{
	Use:   "backdesign [design-id]",
	Short: "List back designs or write a preview PNG",
	Long: `Without arguments, list the available back designs.
With a design id, write a preview image of that design. Image designs need
ASSET_DIR or ASSET_BASE_URL to point at the static artwork.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackdesign,
}

func init() {
	rootCmd.AddCommand(backdesignCmd)

	backdesignCmd.Flags().String("shape", "coin", "Preview shape: coin or card")
	backdesignCmd.Flags().Int("size", backdesign.PrintSize, "Preview edge length in pixels")
	backdesignCmd.Flags().String("out", "", "Output PNG path (default <design-id>.png)")
}

func runBackdesign(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	gen := sheets.NewFromConfig(cfg, true)
	designs := gen.Designs()

	if len(args) == 0 {
		for _, d := range designs.All() {
			kind := "generated"
			if !d.Generated() {
				kind = "image " + d.Image
			}
			fmt.Printf("%-18s %-24s %s\n", d.ID, d.Name, kind)
		}
		return nil
	}

	id := args[0]
	if _, ok := designs.Lookup(id); !ok {
		return fmt.Errorf("unknown back design %q", id)
	}
	shape := mustGetString(cmd, "shape")
	if shape != "coin" && shape != "card" {
		return fmt.Errorf("invalid shape %q (expected coin or card)", shape)
	}
	size := mustGetInt(cmd, "size")
	if size < 1 {
		return errors.New("--size must be positive")
	}
	out := mustGetString(cmd, "out")
	if out == "" {
		out = id + ".png"
	}

	resolver := backdesign.NewResolver(designs, backdesign.ResolverOptions{
		Selections: map[string]string{id: id},
		Circle:     shape == "coin",
		Size:       size,
		AssetBase:  gen.AssetBase(),
	})

	var img image.Image
	src := resolver.Resolve(id)
	switch src.Kind {
	case backdesign.SourceGenerated:
		img = src.Image
	case backdesign.SourceAsset:
		loaded, err := gen.Loader().Load(context.Background(), src.Ref)
		if err != nil {
			return fmt.Errorf("failed to load design artwork %s: %w", src.Ref, err)
		}
		img = imaging.Fill(loaded, size, size, imaging.Center, imaging.Lanczos)
	default:
		return fmt.Errorf("back design %q has no image", id)
	}

	if err := writeFile(out, func(f *os.File) error { return export.EncodePNG(f, img) }); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", out, size, size)
	return nil
}
