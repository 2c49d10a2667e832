package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/driver"
	"github.com/dotnet/roslyn-sub221/internal/project"
)

func TestAssemblyName(t *testing.T) {
	tests := map[string]string{
		"my-app":    "MyApp",
		"orders_v2": "OrdersV2",
		"9lives":    "Lives",
		"---":       "App",
		"Contoso":   "Contoso",
	}
	for in, want := range tests {
		if got := assemblyName(in); got != want {
			t.Errorf("assemblyName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInitProjectChecksClean(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sample-app")
	if err := runInit(nil, []string{dir}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := runInit(nil, []string{dir}); err == nil {
		t.Fatal("second init must refuse an existing manifest")
	}

	m, err := project.LoadManifest(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Config.Assembly.Name != "SampleApp" {
		t.Fatalf("assembly = %q", m.Config.Assembly.Name)
	}
	res, err := driver.CheckManifest(context.Background(), m, driver.Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("sample fixture reports errors: %+v", res.Bag.Items())
	}
	if _, err := os.Stat(filepath.Join(dir, "app.yaml")); err != nil {
		t.Fatal(err)
	}
}

func TestBuildReportInventory(t *testing.T) {
	rep := newBuildReport()
	if rep.Version == "" {
		t.Fatal("empty version")
	}
	if want := []string{"conflicts", "overrides", "constraints", "modifiers"}; !slices.Equal(rep.Passes, want) {
		t.Fatalf("passes = %v, want %v", rep.Passes, want)
	}
	if rep.Codes.Total != len(diag.AllCodes()) {
		t.Fatalf("codes = %d, registry has %d", rep.Codes.Total, len(diag.AllCodes()))
	}
	if rep.Codes.Errors == 0 || rep.Codes.Errors+rep.Codes.Warnings > rep.Codes.Total {
		t.Fatalf("tally %+v", rep.Codes)
	}
}

func TestProgressView(t *testing.T) {
	tests := []struct {
		flag, format string
		want         bool
	}{
		{"on", "pretty", true},
		{" ON ", "pretty", true},
		{"on", "json", false},
		{"off", "pretty", false},
	}
	for _, tt := range tests {
		got, err := progressView(tt.flag, tt.format)
		if err != nil {
			t.Fatalf("progressView(%q, %q): %v", tt.flag, tt.format, err)
		}
		if got != tt.want {
			t.Errorf("progressView(%q, %q) = %v, want %v", tt.flag, tt.format, got, tt.want)
		}
	}
	if _, err := progressView("sometimes", "pretty"); err == nil {
		t.Fatal("unknown --ui value accepted")
	}
}
