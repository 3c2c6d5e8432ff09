package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "amiibo-sheets",
	Short: "Print-ready amiibo coin and card sheets",
	Long: `Amiibo Sheets lays out amiibo artwork as round coins or rounded cards on
printable pages at 300 DPI. Each figure gets a front with its name banner and
a back that shows its series design. Pages are exported as PNG files or as a
single PDF, from the command line or through the web UI.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
