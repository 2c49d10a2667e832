package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dotnet/roslyn-sub221/internal/diag"
)

var (
	// ErrNoManifest is returned when no declcheck.toml is found.
	ErrNoManifest = errors.New("no " + ManifestName + " found")
	// ErrInvalidManifest wraps every validation failure of a manifest.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Manifest is a loaded declcheck.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML layout:
//
//	[assembly]
//	name = "App"
//
//	[check]
//	max_diagnostics = 100
//	jobs = 4
//	passes = "all"
//	case_insensitive_metadata_names = false
//	warnings_as_errors = false
//	no_warn = ["CS0108"]
//
//	[[module]]
//	fixture = "app.yaml"
//
//	[[reference]]
//	identity = "Lib"
//	forwards = { "N.X" = "Other" }
type Config struct {
	Assembly   AssemblyConfig    `toml:"assembly"`
	Check      CheckConfig       `toml:"check"`
	Modules    []ModuleConfig    `toml:"module"`
	References []ReferenceConfig `toml:"reference"`
}

type AssemblyConfig struct {
	Name string `toml:"name"`
}

type CheckConfig struct {
	MaxDiagnostics               int      `toml:"max_diagnostics"`
	Jobs                         int      `toml:"jobs"`
	Passes                       string   `toml:"passes"`
	CaseInsensitiveMetadataNames bool     `toml:"case_insensitive_metadata_names"`
	WarningsAsErrors             bool     `toml:"warnings_as_errors"`
	NoWarnings                   bool     `toml:"no_warnings"`
	NoWarn                       []string `toml:"no_warn"`
	WarnAsError                  []string `toml:"warn_as_error"`
}

// ModuleConfig points at one module fixture. The first module is primary.
type ModuleConfig struct {
	Fixture string `toml:"fixture"`
}

// ReferenceConfig is a referenced assembly's forwarding table.
type ReferenceConfig struct {
	Identity string            `toml:"identity"`
	Forwards map[string]string `toml:"forwards"`
	Defines  []string          `toml:"defines"`
}

// LoadManifest finds declcheck.toml from startDir upwards and loads it.
func LoadManifest(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}
	return LoadManifestFile(path)
}

// LoadManifestFile loads and validates a manifest at path.
func LoadManifestFile(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalidManifest, abs, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("assembly", "name") || strings.TrimSpace(cfg.Assembly.Name) == "" {
		return nil, fmt.Errorf("%w: %s: missing [assembly].name", ErrInvalidManifest, abs)
	}
	if len(cfg.Modules) == 0 {
		return nil, fmt.Errorf("%w: %s: at least one [[module]] is required", ErrInvalidManifest, abs)
	}
	for i, m := range cfg.Modules {
		if strings.TrimSpace(m.Fixture) == "" {
			return nil, fmt.Errorf("%w: %s: [[module]] #%d has no fixture", ErrInvalidManifest, abs, i+1)
		}
	}
	for i, r := range cfg.References {
		if strings.TrimSpace(r.Identity) == "" {
			return nil, fmt.Errorf("%w: %s: [[reference]] #%d has no identity", ErrInvalidManifest, abs, i+1)
		}
	}
	if cfg.Check.MaxDiagnostics < 0 || cfg.Check.Jobs < 0 {
		return nil, fmt.Errorf("%w: %s: [check] limits must not be negative", ErrInvalidManifest, abs)
	}
	if _, err := parseCodes(cfg.Check.NoWarn); err != nil {
		return nil, fmt.Errorf("%w: %s: no_warn: %w", ErrInvalidManifest, abs, err)
	}
	if _, err := parseCodes(cfg.Check.WarnAsError); err != nil {
		return nil, fmt.Errorf("%w: %s: warn_as_error: %w", ErrInvalidManifest, abs, err)
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// Fixtures returns module fixture paths resolved against the manifest root,
// primary module first.
func (m *Manifest) Fixtures() []string {
	out := make([]string, len(m.Config.Modules))
	for i, mod := range m.Config.Modules {
		p := filepath.FromSlash(mod.Fixture)
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Root, p)
		}
		out[i] = p
	}
	return out
}

// Policy builds the severity policy from [check].
func (c CheckConfig) Policy() diag.Policy {
	// codes were validated on load
	noWarn, _ := parseCodes(c.NoWarn)
	warnAsErr, _ := parseCodes(c.WarnAsError)
	return diag.Policy{
		WarningsAsErrors: c.WarningsAsErrors,
		NoWarnings:       c.NoWarnings,
		NoWarn:           noWarn,
		WarnAsError:      warnAsErr,
	}
}

func parseCodes(list []string) (map[diag.Code]struct{}, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make(map[diag.Code]struct{}, len(list))
	for _, s := range list {
		c, err := diag.ParseCode(s)
		if err != nil {
			return nil, err
		}
		if !c.Known() {
			return nil, fmt.Errorf("unknown diagnostic code %s", c.ID())
		}
		out[c] = struct{}{}
	}
	return out, nil
}

// WriteManifest encodes cfg to path, keeping the mode of an existing file.
func WriteManifest(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("%s: failed to encode TOML: %w", path, err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
