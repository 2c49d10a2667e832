package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags. The
// returned cleanup is safe to call multiple times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	for name, dst := range map[string]*string{
		"cpu-profile":   &cfg.CPU,
		"mem-profile":   &cfg.Mem,
		"runtime-trace": &cfg.Trace,
	} {
		v, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
	}

	session, err := prof.Start(cfg)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
		}
	}, nil
}
