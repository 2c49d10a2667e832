package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dotnet/roslyn-sub221/internal/diag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

const sampleManifest = `
[assembly]
name = "App"

[check]
max_diagnostics = 50
jobs = 2
no_warn = ["CS0108"]
warn_as_error = ["cs114"]

[[module]]
fixture = "app.yaml"

[[module]]
fixture = "extra/extra.yaml"

[[reference]]
identity = "Lib"
forwards = { "N.X" = "Other" }
defines = ["N.Y"]
`

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), sampleManifest)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(nested)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Config.Assembly.Name != "App" || m.Config.Check.MaxDiagnostics != 50 || m.Config.Check.Jobs != 2 {
		t.Fatalf("unexpected config: %+v", m.Config)
	}
	fixtures := m.Fixtures()
	want := []string{filepath.Join(root, "app.yaml"), filepath.Join(root, "extra", "extra.yaml")}
	if len(fixtures) != 2 || fixtures[0] != want[0] || fixtures[1] != want[1] {
		t.Fatalf("fixtures = %v, want %v", fixtures, want)
	}
	if got := m.Config.References[0].Forwards["N.X"]; got != "Other" {
		t.Fatalf("forward target = %q", got)
	}

	pol := m.Config.Check.Policy()
	if _, ok := pol.NoWarn[diag.WrnNewRequired]; !ok {
		t.Errorf("CS0108 not muted: %+v", pol.NoWarn)
	}
	if _, ok := pol.WarnAsError[diag.WrnNewOrOverrideExpected]; !ok {
		t.Errorf("CS0114 not promoted: %+v", pol.WarnAsError)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	cases := map[string]string{
		"missing assembly": "[[module]]\nfixture = \"a.yaml\"\n",
		"no modules":       "[assembly]\nname = \"App\"\n",
		"unknown key":      "[assembly]\nname = \"App\"\nflavor = \"x\"\n[[module]]\nfixture = \"a.yaml\"\n",
		"bad code":         "[assembly]\nname = \"App\"\n[check]\nno_warn = [\"CS9999\"]\n[[module]]\nfixture = \"a.yaml\"\n",
		"negative jobs":    "[assembly]\nname = \"App\"\n[check]\njobs = -1\n[[module]]\nfixture = \"a.yaml\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, content)
			_, err := LoadManifestFile(path)
			if !errors.Is(err, ErrInvalidManifest) {
				t.Fatalf("err = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestLoadManifestNotFound(t *testing.T) {
	dir := t.TempDir()
	if _, ok, err := FindManifest(dir); err != nil || ok {
		// a declcheck.toml above the temp dir would make this test meaningless
		t.Skipf("manifest found above %s", dir)
	}
	if _, err := LoadManifest(dir); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("err = %v, want ErrNoManifest", err)
	}
}

func TestWriteManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	cfg := Config{
		Assembly: AssemblyConfig{Name: "Demo"},
		Modules:  []ModuleConfig{{Fixture: "demo.yaml"}},
	}
	if err := WriteManifest(path, cfg); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifestFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m.Config.Assembly.Name != "Demo" || len(m.Config.Modules) != 1 {
		t.Fatalf("unexpected config: %+v", m.Config)
	}
}

func TestDigest(t *testing.T) {
	a := HashBytes([]byte("a"))
	b := HashBytes([]byte("b"))
	if a == b {
		t.Fatal("different content, same digest")
	}
	if Combine(a, b) == Combine(b, a) {
		t.Fatal("Combine must depend on order")
	}
	if len(a.String()) != 64 || len(a.Short()) != 12 {
		t.Fatalf("unexpected hex lengths: %q %q", a.String(), a.Short())
	}
	path := filepath.Join(t.TempDir(), "f")
	writeFile(t, path, "a")
	got, err := HashFile(path)
	if err != nil || got != a {
		t.Fatalf("HashFile = %v, %v", got, err)
	}
}
