package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotnet/roslyn-sub221/internal/fixture"
	"github.com/dotnet/roslyn-sub221/internal/project"
	"github.com/dotnet/roslyn-sub221/internal/trace"
)

// readFixtures reads and parses fixture files concurrently. Results keep
// the order of paths: the first fixture is the primary module.
func readFixtures(ctx context.Context, paths []string, opts *Options) ([]fixture.Input, []project.Digest, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	inputs := make([]fixture.Input, len(paths))
	digests := make([]project.Digest, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(paths), 1)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeModule, "fixture", parent).WithExtra("path", path)
			start := time.Now()
			emit(opts.Progress, Event{Item: path, Stage: StageLoad, Status: StatusWorking})

			in, sum, err := readFixture(path, opts.Fixtures)
			if err != nil {
				span.End("error")
				emit(opts.Progress, Event{Item: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return err
			}
			inputs[i], digests[i] = in, sum
			span.End("")
			emit(opts.Progress, Event{Item: path, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return inputs, digests, nil
}

func readFixture(path string, cache *FixtureCache) (fixture.Input, project.Digest, error) {
	// #nosec G304 -- fixture paths come from the manifest or the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture.Input{}, project.Digest{}, fmt.Errorf("failed to read fixture: %w", err)
	}
	sum := project.HashBytes(data)
	if f, ok := cache.Get(path, sum); ok {
		return fixture.Input{Path: path, File: f}, sum, nil
	}
	f, err := fixture.Parse(data)
	if err != nil {
		return fixture.Input{}, project.Digest{}, fmt.Errorf("%s: %w", path, err)
	}
	cache.Put(path, sum, f)
	return fixture.Input{Path: path, File: f}, sum, nil
}
