package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/apiclient"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/source"
	"github.com/theirongolddev/fburn/internal/store"
)

// ErrNoData is returned when no source could provide a snapshot.
var ErrNoData = errors.New("pipeline: no snapshot available (configure a data dir or API, or run sync)")

// SnapshotFetcher fetches a fresh snapshot from a remote source.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*apiclient.FetchResult, error)
}

// LoadOptions selects where a snapshot comes from.
type LoadOptions struct {
	DataDir  string
	Cache    *store.Cache
	Fetcher  SnapshotFetcher
	Refresh  bool
	Progress ProgressFunc

	// Thresholds applied to budgets that do not set their own.
	WarningThreshold  decimal.Decimal
	CriticalThreshold decimal.Decimal
}

// LoadSnapshot resolves a snapshot from, in order of preference: export
// files in DataDir, the API (when refreshing or nothing is cached), and the
// cache. An API failure falls back to the cached snapshot with a warning.
func LoadSnapshot(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	res, err := loadSnapshot(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Snapshot.Budgets = ApplyThresholdDefaults(res.Snapshot.Budgets, opts.WarningThreshold, opts.CriticalThreshold)
	return res, nil
}

func loadSnapshot(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	if opts.DataDir != "" {
		files, err := source.ScanDir(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", opts.DataDir, err)
		}
		if len(files) > 0 {
			if opts.Cache == nil {
				return parseFiles(files, opts.Progress), nil
			}
			return loadFilesWithCache(files, opts.Cache, opts.Progress)
		}
	}

	hasCache := false
	if opts.Cache != nil {
		_, err := opts.Cache.LoadMeta()
		hasCache = err == nil
	}

	if opts.Fetcher != nil && (opts.Refresh || !hasCache) {
		fetched, err := opts.Fetcher.FetchSnapshot(ctx)
		if err == nil {
			res := &LoadResult{Snapshot: fetched.Snapshot, Source: SourceAPI, Skipped: fetched.Skipped}
			if opts.Cache != nil {
				if err := opts.Cache.SaveSnapshot(fetched.Snapshot, SourceAPI, nil); err != nil {
					res.Warnings = append(res.Warnings, fmt.Sprintf("caching snapshot: %v", err))
				}
			}
			return res, nil
		}
		if !hasCache {
			return nil, fmt.Errorf("fetching snapshot: %w", err)
		}
		res, cerr := loadFromCache(opts.Cache)
		if cerr != nil {
			return nil, cerr
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("API fetch failed, using cached snapshot: %v", err))
		return res, nil
	}

	if hasCache {
		return loadFromCache(opts.Cache)
	}
	return nil, ErrNoData
}

func loadFromCache(cache *store.Cache) (*LoadResult, error) {
	snap, meta, err := cache.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading cached snapshot: %w", err)
	}
	return &LoadResult{Snapshot: snap, Source: SourceCache + ":" + meta.Source}, nil
}

// loadFilesWithCache reuses the cached snapshot when every export file is
// unchanged since it was built, and reparses and re-caches otherwise.
func loadFilesWithCache(files []source.DiscoveredFile, cache *store.Cache, progressFn ProgressFunc) (*LoadResult, error) {
	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	current := make(map[string]store.FileInfo, len(files))
	unchanged := len(tracked) == len(files)
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			unchanged = false
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		current[f.Path] = fi
		if cached, ok := tracked[f.Path]; !ok || cached != fi {
			unchanged = false
		}
	}

	if unchanged {
		snap, _, err := cache.LoadSnapshot()
		if err == nil {
			if progressFn != nil {
				progressFn(len(files), len(files))
			}
			return &LoadResult{
				Snapshot:    snap,
				Source:      SourceCache + ":" + SourceFiles,
				TotalFiles:  len(files),
				ParsedFiles: len(files),
			}, nil
		}
	}

	res := parseFiles(files, progressFn)
	if res.FileErrors == 0 {
		if err := cache.SaveSnapshot(res.Snapshot, SourceFiles, current); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("caching snapshot: %v", err))
		}
	}
	return res, nil
}

// ApplyThresholdDefaults returns a copy of budgets with unset thresholds
// replaced by the given defaults. Zero defaults leave budgets untouched.
func ApplyThresholdDefaults(budgets []model.Budget, warning, critical decimal.Decimal) []model.Budget {
	if budgets == nil {
		return nil
	}
	out := make([]model.Budget, len(budgets))
	copy(out, budgets)
	for i := range out {
		if out[i].WarningThreshold.IsZero() && warning.IsPositive() {
			out[i].WarningThreshold = warning
		}
		if out[i].CriticalThreshold.IsZero() && critical.IsPositive() {
			out[i].CriticalThreshold = critical
		}
	}
	return out
}
