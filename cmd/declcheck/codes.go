package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/diag"
)

var codesCmd = &cobra.Command{
	Use:   "codes [CSxxxx...]",
	Short: "List the diagnostics declcheck can report",
	RunE:  runCodes,
}

func init() {
	codesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	codesCmd.Flags().Bool("templates", false, "show message templates")
}

type codeEntry struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Template string `json:"template,omitempty"`
}

func runCodes(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	templates, err := cmd.Flags().GetBool("templates")
	if err != nil {
		return fmt.Errorf("failed to get templates flag: %w", err)
	}

	codes := diag.AllCodes()
	if len(args) > 0 {
		codes = codes[:0:0]
		for _, a := range args {
			c, err := diag.ParseCode(a)
			if err != nil {
				return err
			}
			if !c.Known() {
				return fmt.Errorf("unknown diagnostic %s", c.ID())
			}
			codes = append(codes, c)
		}
	}

	entries := make([]codeEntry, 0, len(codes))
	for _, c := range codes {
		e := codeEntry{ID: c.ID(), Severity: c.DefaultSeverity().Label(), Title: c.Title()}
		if templates || len(args) > 0 {
			e.Template = c.Template()
		}
		entries = append(entries, e)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "pretty":
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		renderCodes(os.Stdout, entries, colored)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func renderCodes(out io.Writer, entries []codeEntry, colored bool) {
	idStyle := lipgloss.NewStyle().Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	render := func(s lipgloss.Style, text string) string {
		if !colored {
			return text
		}
		return s.Render(text)
	}

	for _, e := range entries {
		sev := fmt.Sprintf("%-7s", e.Severity)
		switch e.Severity {
		case "error":
			sev = render(errStyle, sev)
		case "warning":
			sev = render(warnStyle, sev)
		}
		fmt.Fprintf(out, "%s  %s  %s\n", render(idStyle, e.ID), sev, e.Title)
		if e.Template != "" {
			fmt.Fprintf(out, "        %s\n", render(dimStyle, strings.TrimSpace(e.Template)))
		}
	}
}
