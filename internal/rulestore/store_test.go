package rulestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
)

func TestFSStoreDocumentAndList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "us-federal-2025-v1.json"), []byte(`{"id":"us-federal-2025-v1"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nd-state-2025-v1.json"), []byte(`{"id":"nd-state-2025-v1"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte(`{"active":{"federal_id":"us-federal-2025-v1","state_id":"nd-state-2025-v1"}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a ruleset"), 0644))

	store := NewFSStore(dir)

	body, err := store.Document("us-federal-2025-v1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"us-federal-2025-v1"}`, string(body))

	// index.json and non-JSON files are not ruleset documents
	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"nd-state-2025-v1", "us-federal-2025-v1"}, ids)

	index, err := store.Index()
	require.NoError(t, err)
	assert.Contains(t, string(index), "us-federal-2025-v1")
}

func TestFSStoreMissingDocument(t *testing.T) {
	store := NewFSStore(t.TempDir())

	_, err := store.Document("no-such-id")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeRulesetNotFound))

	_, err = store.Index()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeRulesetNotFound))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rulesets.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	body := []byte(`{"id":"us-federal-2025-v1","jurisdiction":"federal","tax_year":2025}`)
	require.NoError(t, store.Put("us-federal-2025-v1", "federal", 2025, body))
	require.NoError(t, store.Put("nd-state-2025-v1", "ND", 2025, []byte(`{"id":"nd-state-2025-v1"}`)))

	got, err := store.Document("us-federal-2025-v1")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"nd-state-2025-v1", "us-federal-2025-v1"}, ids)

	_, err = store.Document("missing")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeRulesetNotFound))
}

func TestSQLiteStoreRejectsOverwrite(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rulesets.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Put("us-federal-2025-v1", "federal", 2025, []byte(`{"v":1}`)))

	// Documents are immutable; a changed document needs a new id
	err = store.Put("us-federal-2025-v1", "federal", 2025, []byte(`{"v":2}`))
	require.Error(t, err)

	got, err := store.Document("us-federal-2025-v1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":1}`), got, "stored document was mutated")
}

func TestSQLiteStoreIndex(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rulesets.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.SetActive(2025, "us-federal-2025-v1", "nd-state-2025-v1", ""))
	require.NoError(t, store.SetActive(0, "us-federal-2024-v9", "nd-state-2024-v9", "nd-local-2024-v1"))

	raw, err := store.Index()
	require.NoError(t, err)

	var index struct {
		Years map[string]struct {
			FederalID string `json:"federal_id"`
			StateID   string `json:"state_id"`
		} `json:"years"`
		Active *struct {
			FederalID       string `json:"federal_id"`
			LocalSalesTaxID string `json:"local_sales_tax_id"`
		} `json:"active"`
	}
	require.NoError(t, json.Unmarshal(raw, &index))

	require.Contains(t, index.Years, "2025")
	assert.Equal(t, "us-federal-2025-v1", index.Years["2025"].FederalID)
	require.NotNil(t, index.Active)
	assert.Equal(t, "us-federal-2024-v9", index.Active.FederalID)
	assert.Equal(t, "nd-local-2024-v1", index.Active.LocalSalesTaxID)

	// SetActive on an existing year replaces the entry
	require.NoError(t, store.SetActive(2025, "us-federal-2025-v2", "nd-state-2025-v1", ""))
	raw, err = store.Index()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &index))
	assert.Equal(t, "us-federal-2025-v2", index.Years["2025"].FederalID)
}
