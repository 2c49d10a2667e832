package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new declcheck project",
	Long: `Initialize a new declcheck project by creating a manifest (declcheck.toml)
and a sample module fixture (app.yaml). If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit creates declcheck.toml and app.yaml in the target directory and
// refuses to overwrite an existing manifest.
func runInit(_ *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) > 0 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	name := assemblyName(filepath.Base(target))
	cfg := project.Config{
		Assembly: project.AssemblyConfig{Name: name},
		Check:    project.CheckConfig{Passes: "all"},
		Modules:  []project.ModuleConfig{{Fixture: "app.yaml"}},
	}
	if err := project.WriteManifest(manifestPath, cfg); err != nil {
		return err
	}

	fixturePath := filepath.Join(target, "app.yaml")
	createdFixture := false
	if _, err := os.Stat(fixturePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(fixturePath, []byte(defaultFixture(name)), 0o600); err != nil {
			return fmt.Errorf("failed to write app.yaml: %w", err)
		}
		createdFixture = true
	}

	fmt.Fprintf(os.Stdout, "Initialized declcheck project in %s\n", relOrSelf(wd, target))
	fmt.Fprintf(os.Stdout, "  - %s\n", project.ManifestName)
	if createdFixture {
		fmt.Fprintf(os.Stdout, "  - app.yaml\n")
	} else {
		fmt.Fprintf(os.Stdout, "  - app.yaml (existing)\n")
	}
	return nil
}

// assemblyName turns a directory name into a dotted identifier; "App" when
// nothing usable is left.
func assemblyName(dir string) string {
	var b strings.Builder
	upper := true
	for _, r := range strings.TrimSpace(dir) {
		switch {
		case unicode.IsLetter(r) || (unicode.IsDigit(r) && b.Len() > 0):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		default:
			upper = true
		}
	}
	if b.Len() == 0 {
		return "App"
	}
	return b.String()
}

func defaultFixture(assembly string) string {
	return fmt.Sprintf(`# Module fixture: the C# source and the declarations bound from it.
assembly: %[1]s
module: %[1]s.dll
source: |
  namespace Sample {
    public interface IGreeter { string Greet(string name); }
    public class Greeter : IGreeter { public string Greet(string name) { return name; } }
  }
types:
  - kind: interface
    name: IGreeter
    namespace: Sample
    modifiers: [public]
    members:
      - {name: Greet, type: string, params: [{name: name, type: string}]}
  - kind: class
    name: Greeter
    namespace: Sample
    modifiers: [public]
    interfaces: [IGreeter]
    members:
      - name: Greet
        modifiers: [public]
        type: string
        params: [{name: name, type: string}]
`, assembly)
}
