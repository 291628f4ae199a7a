package model

import (
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// Snapshot is an immutable set of entities as delivered by a data source.
type Snapshot struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Budgets      []Budget      `json:"budgets"`
	Goals        []Goal        `json:"goals"`
	FetchedAt    time.Time     `json:"fetched_at" hash:"ignore"`
}

// Empty reports whether the snapshot holds no entities at all.
func (s Snapshot) Empty() bool {
	return len(s.Accounts) == 0 && len(s.Transactions) == 0 &&
		len(s.Budgets) == 0 && len(s.Goals) == 0
}

// Fingerprint returns a content hash of the snapshot. FetchedAt is excluded,
// so two fetches of unchanged data share a fingerprint.
func (s Snapshot) Fingerprint() (uint64, error) {
	h, err := hashstructure.Hash(s, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("hashing snapshot: %w", err)
	}
	return h, nil
}
