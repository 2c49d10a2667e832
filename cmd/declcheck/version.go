package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/sema"
	"github.com/dotnet/roslyn-sub221/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build and the rules compiled into it",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("json", false, "emit one JSON object")
	versionCmd.Flags().Bool("rules", false, "list the validation passes and the code inventory")
}

// buildReport is what `declcheck version --json` prints. Build metadata
// fields stay empty unless they were stamped with -ldflags.
type buildReport struct {
	Version string    `json:"version"`
	Commit  string    `json:"commit,omitempty"`
	Message string    `json:"message,omitempty"`
	Date    string    `json:"date,omitempty"`
	Passes  []string  `json:"passes"`
	Codes   codeTally `json:"codes"`
}

type codeTally struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	rules, err := cmd.Flags().GetBool("rules")
	if err != nil {
		return err
	}
	rep := newBuildReport()
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Fprint(out, version.Long())
	if rules {
		writeRules(out, rep)
	}
	return nil
}

func newBuildReport() buildReport {
	rep := buildReport{
		Version: strings.TrimSpace(version.Version),
		Commit:  strings.TrimSpace(version.GitCommit),
		Message: strings.TrimSpace(version.GitMessage),
		Date:    strings.TrimSpace(version.BuildDate),
		Passes:  sema.AllPasses.Names(),
		Codes:   tallyCodes(diag.AllCodes()),
	}
	if rep.Version == "" {
		rep.Version = "dev"
	}
	return rep
}

func tallyCodes(codes []diag.Code) codeTally {
	t := codeTally{Total: len(codes)}
	for _, c := range codes {
		switch c.DefaultSeverity() {
		case diag.SevError:
			t.Errors++
		case diag.SevWarning:
			t.Warnings++
		}
	}
	return t
}

func writeRules(out io.Writer, rep buildReport) {
	fmt.Fprintf(out, "passes: %s\n", strings.Join(rep.Passes, " -> "))
	fmt.Fprintf(out, "codes: %d (%d errors, %d warnings)\n", rep.Codes.Total, rep.Codes.Errors, rep.Codes.Warnings)
}
