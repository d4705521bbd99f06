package app

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"uvbump/internal/core"
	"uvbump/internal/ports"
	"uvbump/internal/types"
)

type lookupResult struct {
	key    string
	name   string
	newest string
	err    error
}

// prefetchNewest queries the index for every pinned package on a bounded
// pool of workers. Per-package failures leave the package unavailable and
// are logged; only cancellation of ctx is returned as an error.
func prefetchNewest(ctx context.Context, index ports.IndexPort, pins types.Pins, workerCount int) (core.NewestMap, []string, error) {
	keys := make([]string, 0, len(pins))
	for key := range pins {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	newest := core.NewestMap{}
	if len(keys) == 0 {
		return newest, nil, nil
	}
	if workerCount <= 0 {
		workerCount = DefaultWorkers
	}
	if len(keys) < workerCount {
		workerCount = len(keys)
	}

	var mu sync.Mutex
	var unavailable []string
	record := func(result lookupResult) {
		mu.Lock()
		defer mu.Unlock()
		if result.err != nil || strings.TrimSpace(result.newest) == "" {
			unavailable = append(unavailable, result.name)
			logLookupFailure(result)
			return
		}
		newest[result.key] = result.newest
	}

	tasks := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range tasks {
				name := pins[key].Name
				if ctx.Err() != nil {
					record(lookupResult{key: key, name: name, err: ctx.Err()})
					continue
				}
				found, err := index.Lookup(ctx, name)
				record(lookupResult{key: key, name: name, newest: found.Newest, err: err})
			}
		}()
	}
feed:
	for _, key := range keys {
		select {
		case tasks <- key:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	if ctx.Err() != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("index queries canceled").
			WithCause(ctx.Err())
	}
	sort.Strings(unavailable)
	return newest, unavailable, nil
}

func logLookupFailure(result lookupResult) {
	switch {
	case result.err == nil:
		log.Warn().Str("package", result.name).Msg("index reported no usable version")
	case errbuilder.CodeOf(result.err) == errbuilder.CodeNotFound:
		log.Warn().Str("package", result.name).Msg("package not found in index")
	default:
		log.Warn().Err(result.err).Str("package", result.name).Msg("index query failed")
	}
}
