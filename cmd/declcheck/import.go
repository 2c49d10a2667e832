package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/driver"
)

var importCmd = &cobra.Command{
	Use:   "import --db <file.db> <fixture.yaml>...",
	Short: "Bind fixtures and save the compilation into a symbol store",
	Long: `Bind module fixtures into one compilation and write it to a SQLite symbol
store. An existing store is replaced. The store can later be validated with
"declcheck check --db".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("db", "", "symbol store to write (required)")
	importCmd.Flags().String("assembly", "", "override the compilation's assembly name")
	importCmd.Flags().Bool("case-insensitive", false, "compare metadata names case-insensitively")
	_ = importCmd.MarkFlagRequired("db")
}

func runImport(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	db, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to get db flag: %w", err)
	}
	assembly, err := cmd.Flags().GetString("assembly")
	if err != nil {
		return fmt.Errorf("failed to get assembly flag: %w", err)
	}
	caseInsensitive, err := cmd.Flags().GetBool("case-insensitive")
	if err != nil {
		return fmt.Errorf("failed to get case-insensitive flag: %w", err)
	}

	sum, err := driver.Import(cmd.Context(), args, db, driver.Options{
		Assembly:             assembly,
		CaseInsensitiveNames: caseInsensitive,
	})
	if err != nil {
		flushTracer(cmd)
		return fmt.Errorf("import failed: %w", err)
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		path := db
		if wd, err := os.Getwd(); err == nil {
			path = relOrSelf(wd, db)
		}
		fmt.Fprintf(os.Stdout, "imported %s into %s: %d module(s), %d symbol(s), %d file(s), %d forward(s)\n",
			sum.Assembly, path, sum.Modules, sum.Symbols, sum.Files, sum.Forwards)
	}
	return nil
}
