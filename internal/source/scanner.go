package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks an export directory and discovers entity JSON files.
// A file belongs to a collection when its name starts with the collection
// name, e.g. "transactions-2026-05.json". Other files are ignored.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}

		kind, ok := kindOf(d.Name())
		if !ok {
			return nil
		}
		files = append(files, DiscoveredFile{Path: path, Kind: kind})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func kindOf(name string) (Kind, bool) {
	lower := strings.ToLower(name)
	for _, k := range Kinds {
		if strings.HasPrefix(lower, string(k)) {
			return k, true
		}
	}
	return "", false
}

// CountByKind returns the number of discovered files per collection.
func CountByKind(files []DiscoveredFile) map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, f := range files {
		counts[f.Kind]++
	}
	return counts
}
