package driver

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dotnet/roslyn-sub221/internal/project"
	"github.com/dotnet/roslyn-sub221/internal/sema"
	"github.com/dotnet/roslyn-sub221/internal/source"
)

// optionsDigest hashes every option that changes what validation reports.
// The severity policy and the diagnostic cap are applied after the cache.
func optionsDigest(opts *Options) project.Digest {
	var b strings.Builder
	fmt.Fprintf(&b, "schema=%d\n", diskCacheSchemaVersion)
	fmt.Fprintf(&b, "assembly=%s\n", opts.Assembly)
	fmt.Fprintf(&b, "passes=%s\n", effectivePasses(opts.Passes))
	fmt.Fprintf(&b, "ci=%t\n", opts.CaseInsensitiveNames)
	for _, r := range opts.References {
		fmt.Fprintf(&b, "ref=%s\n", r.Identity)
		for _, name := range slices.Sorted(maps.Keys(r.Forwards)) {
			fmt.Fprintf(&b, "  forward %s=%s\n", name, r.Forwards[name])
		}
		for _, name := range slices.Sorted(maps.Keys(r.Defines)) {
			fmt.Fprintf(&b, "  define %s\n", name)
		}
	}
	return project.HashBytes([]byte(b.String()))
}

func effectivePasses(p sema.Pass) sema.Pass {
	if p == 0 {
		return sema.AllPasses
	}
	return p
}

// inputKey: H(options || fixture1 || fixture2 ... || source1 ...). Порядок
// фикстур задан пользователем, порядок исходников - FileID.
func inputKey(opts *Options, fixtures []project.Digest, files *source.FileSet) project.Digest {
	parts := make([]project.Digest, 0, 1+len(fixtures)+files.Len())
	parts = append(parts, optionsDigest(opts))
	parts = append(parts, fixtures...)
	for _, f := range files.All() {
		parts = append(parts, project.Digest(f.Hash))
	}
	return project.Combine(parts...)
}
