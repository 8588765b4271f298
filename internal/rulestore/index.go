package rulestore

import (
	"encoding/json"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
)

// indexEntry mirrors ruleset.ActiveVersions without importing the ruleset
// package; the loader parses the raw bytes itself.
type indexEntry struct {
	FederalID       string `json:"federal_id"`
	StateID         string `json:"state_id"`
	LocalSalesTaxID string `json:"local_sales_tax_id,omitempty"`
}

func marshalIndex(years map[string]indexEntry, active *indexEntry) ([]byte, error) {
	out := struct {
		Years  map[string]indexEntry `json:"years,omitempty"`
		Active *indexEntry           `json:"active,omitempty"`
	}{Years: years, Active: active}

	data, err := json.Marshal(&out)
	if err != nil {
		return nil, errors.Internal("marshal ruleset index", err)
	}
	return data, nil
}
