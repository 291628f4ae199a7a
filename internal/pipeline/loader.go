package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/source"
)

// Snapshot origins reported in LoadResult.Source.
const (
	SourceFiles = "files"
	SourceAPI   = "api"
	SourceCache = "cache"
)

// LoadResult holds the output of the snapshot loading pipeline.
type LoadResult struct {
	Snapshot    model.Snapshot
	Source      string
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
	Skipped     int
	Warnings    []string
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// LoadFiles discovers and parses every export file in dir.
// It uses a bounded worker pool for parallel parsing.
func LoadFiles(dir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return parseFiles(files, progressFn), nil
}

func parseFiles(files []source.DiscoveredFile, progressFn ProgressFunc) *LoadResult {
	result := &LoadResult{
		Source:     SourceFiles,
		TotalFiles: len(files),
	}
	result.Snapshot.FetchedAt = time.Now()

	if len(files) == 0 {
		return result
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	// Merge in file order so the snapshot is deterministic. A record that
	// appears in several files keeps the position of its first occurrence
	// and the content of its last.
	var m merger
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", pr.File.Path, pr.Err))
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		m.add(pr)
	}
	m.into(&result.Snapshot)
	return result
}

type merger struct {
	accounts     keyed[model.AccountID, model.Account]
	transactions keyed[model.TransactionID, model.Transaction]
	budgets      keyed[model.BudgetID, model.Budget]
	goals        keyed[model.GoalID, model.Goal]
}

func (m *merger) add(pr source.ParseResult) {
	for _, a := range pr.Accounts {
		m.accounts.put(a.ID, a)
	}
	for _, t := range pr.Transactions {
		m.transactions.put(t.ID, t)
	}
	for _, b := range pr.Budgets {
		m.budgets.put(b.ID, b)
	}
	for _, g := range pr.Goals {
		m.goals.put(g.ID, g)
	}
}

func (m *merger) into(s *model.Snapshot) {
	s.Accounts = m.accounts.items
	s.Transactions = m.transactions.items
	s.Budgets = m.budgets.items
	s.Goals = m.goals.items
}

// keyed is an insertion-ordered collection with last-write-wins updates.
type keyed[K comparable, V any] struct {
	index map[K]int
	items []V
}

func (k *keyed[K, V]) put(key K, v V) {
	if k.index == nil {
		k.index = make(map[K]int)
	}
	if i, ok := k.index[key]; ok {
		k.items[i] = v
		return
	}
	k.index[key] = len(k.items)
	k.items = append(k.items, v)
}
