package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached check results",
	Long:  "Remove the result cache used by check --disk-cache.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(_ *cobra.Command, _ []string) error {
	cache, err := driver.OpenDiskCache("declcheck")
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", cache.Dir(), err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", cache.Dir())
	return nil
}
