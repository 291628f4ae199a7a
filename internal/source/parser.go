// Package source discovers and parses JSON export files of finance entities.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/fburn/internal/model"
)

// ErrNotArray is returned for export files whose top level is not a JSON array.
var ErrNotArray = errors.New("source: export file is not a JSON array")

// ParseResult holds the output of parsing a single export file.
// Exactly one of the entity slices is populated, matching the file's Kind.
type ParseResult struct {
	File         DiscoveredFile
	Accounts     []model.Account
	Transactions []model.Transaction
	Budgets      []model.Budget
	Goals        []model.Goal
	ParseErrors  int
	Err          error
}

// Records returns the number of entities parsed.
func (r ParseResult) Records() int {
	return len(r.Accounts) + len(r.Transactions) + len(r.Budgets) + len(r.Goals)
}

// ParseFile reads an export file and converts its records to domain entities.
// Records that fail to decode or convert are counted in ParseErrors and
// skipped; only file-level failures set Err.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	res := Parse(f, df.Kind)
	res.File = df
	return res
}

// Parse decodes a JSON array of kind records from r.
func Parse(r io.Reader, kind Kind) ParseResult {
	data, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return ParseResult{Err: ErrNotArray}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return ParseResult{Err: fmt.Errorf("decoding %s: %w", kind, err)}
	}

	var res ParseResult
	for _, item := range items {
		if err := res.add(kind, item); err != nil {
			res.ParseErrors++
		}
	}
	return res
}

func (res *ParseResult) add(kind Kind, item json.RawMessage) error {
	switch kind {
	case KindAccounts:
		var raw RawAccount
		if err := json.Unmarshal(item, &raw); err != nil {
			return err
		}
		a, err := raw.Model()
		if err != nil {
			return err
		}
		res.Accounts = append(res.Accounts, a)
	case KindTransactions:
		var raw RawTransaction
		if err := json.Unmarshal(item, &raw); err != nil {
			return err
		}
		t, err := raw.Model()
		if err != nil {
			return err
		}
		res.Transactions = append(res.Transactions, t)
	case KindBudgets:
		var raw RawBudget
		if err := json.Unmarshal(item, &raw); err != nil {
			return err
		}
		b, err := raw.Model()
		if err != nil {
			return err
		}
		res.Budgets = append(res.Budgets, b)
	case KindGoals:
		var raw RawGoal
		if err := json.Unmarshal(item, &raw); err != nil {
			return err
		}
		g, err := raw.Model()
		if err != nil {
			return err
		}
		res.Goals = append(res.Goals, g)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}
