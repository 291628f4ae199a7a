package apiclient

import (
	"encoding/json"

	"github.com/theirongolddev/fburn/internal/model"
)

// transactionPage is the paginated envelope of GET /transactions/.
type transactionPage struct {
	Data       []json.RawMessage `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// FetchResult is a snapshot fetched from the API.
// Skipped counts records that could not be converted to domain entities.
type FetchResult struct {
	Snapshot model.Snapshot
	Skipped  int
}
