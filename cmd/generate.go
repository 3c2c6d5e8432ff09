package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/export"
	"github.com/kozaktomas/amiibo-sheets/internal/sheets"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

var generateCmd = &cobra.Command{
	Use:   "generate [template.json]",
	Short: "Render a template to PNG pages or a PDF",
	Long: `Render every page of a template at 300 DPI.
The template is read from a JSON file (a single template or a template export)
or, with --id and DATABASE_URL set, from the template database.

Output goes to PNG files in --out, and additionally to --pdf and --zip when given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("id", "", "Template id (or name) to render")
	generateCmd.Flags().String("out", "sheets", "Directory for PNG pages (empty to skip)")
	generateCmd.Flags().String("pdf", "", "Write all pages to this PDF file")
	generateCmd.Flags().String("zip", "", "Write all PNG pages to this ZIP file")
	generateCmd.Flags().Bool("no-progress", false, "Do not draw a progress bar")
}

// loadTemplate reads the template to render from a file or the store.
func loadTemplate(ctx context.Context, cfg *config.Config, args []string, id string) (templates.Config, error) {
	if len(args) == 0 {
		if id == "" {
			return templates.Config{}, errors.New("a template file or --id is required")
		}
		if cfg.Database.URL == "" {
			return templates.Config{}, errors.New("DATABASE_URL environment variable is required to load templates by id")
		}
		store, err := openTemplateStore(cfg)
		if err != nil {
			return templates.Config{}, err
		}
		return store.Get(ctx, id)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return templates.Config{}, fmt.Errorf("failed to read template file: %w", err)
	}
	cs, err := templates.Decode(data)
	if err != nil {
		return templates.Config{}, err
	}
	return selectTemplate(cs, id)
}

// selectTemplate picks a template by id or name. Without a selector the
// file must hold exactly one template.
func selectTemplate(cs []templates.Config, id string) (templates.Config, error) {
	if id == "" {
		if len(cs) != 1 {
			return templates.Config{}, fmt.Errorf("file holds %d templates, choose one with --id", len(cs))
		}
		return cs[0], nil
	}
	for _, c := range cs {
		if c.ID == id || c.Name == id {
			return c, nil
		}
	}
	return templates.Config{}, fmt.Errorf("template %q: %w", id, templates.ErrNotFound)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	id := mustGetString(cmd, "id")
	outDir := mustGetString(cmd, "out")
	pdfPath := mustGetString(cmd, "pdf")
	zipPath := mustGetString(cmd, "zip")
	noProgress := mustGetBool(cmd, "no-progress")

	if outDir == "" && pdfPath == "" && zipPath == "" {
		return errors.New("nothing to write: set --out, --pdf or --zip")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tpl, err := loadTemplate(ctx, cfg, args, id)
	if err != nil {
		return err
	}

	fmt.Printf("Template: %s (%s, %s, %d items)\n", tpl.Name, tpl.TemplateType, tpl.PageSize, len(tpl.Items))

	gen := sheets.NewFromConfig(cfg, true)
	res, err := gen.Generate(ctx, tpl, sheets.Options{ShowProgress: !noProgress})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	fmt.Println()

	printGenerateReport(res)

	list := res.ListName()
	tt := string(res.Config.TemplateType)
	pages := res.Images()

	if outDir != "" {
		paths, err := export.WritePNGs(outDir, list, tt, pages)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("  wrote %s\n", p)
		}
	}
	if pdfPath != "" {
		if err := writeFile(pdfPath, func(f *os.File) error {
			return export.WritePDF(f, pages, res.Grid.Params.PageSize)
		}); err != nil {
			return err
		}
		fmt.Printf("  wrote %s\n", pdfPath)
	}
	if zipPath != "" {
		if err := writeFile(zipPath, func(f *os.File) error {
			return export.WriteZip(f, list, tt, pages)
		}); err != nil {
			return err
		}
		fmt.Printf("  wrote %s\n", zipPath)
	}
	return nil
}

func printGenerateReport(res *sheets.Result) {
	g := res.Grid
	fmt.Printf("Layout: %d x %d per page, %d pages\n", g.ItemsPerRow, g.RowsPerPage, len(res.Pages))
	for _, key := range res.SkippedAdjustments {
		fmt.Printf("  Warning: ignored adjustment with unknown key %q\n", key)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  Warning: page %d slot %d: %s %s: %s\n", w.Page+1, w.Slot+1, w.Item, w.Side, w.Reason)
	}
}

// writeFile creates path (and its directory) and passes it to write.
func writeFile(path string, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
