package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/amiibo-sheets/internal/layout"
)

// mustGetFlag reads a flag through get or panics if the flag doesn't exist.
// Flags are defined in init(), so an error here is a programming bug.
func mustGetFlag[T any](name string, get func(string) (T, error)) T {
	val, err := get(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	return mustGetFlag(name, cmd.Flags().GetBool)
}

func mustGetInt(cmd *cobra.Command, name string) int {
	return mustGetFlag(name, cmd.Flags().GetInt)
}

func mustGetString(cmd *cobra.Command, name string) string {
	return mustGetFlag(name, cmd.Flags().GetString)
}

// mustGetFloat64 reads a millimetre flag such as --diameter or --margin.
func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	return mustGetFlag(name, cmd.Flags().GetFloat64)
}

// mustGetTemplateType reads a --type flag. Unknown values pass through so
// layout validation reports them with the other config errors.
func mustGetTemplateType(cmd *cobra.Command, name string) layout.TemplateType {
	return layout.TemplateType(mustGetString(cmd, name))
}
