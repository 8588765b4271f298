package ruleset

import (
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
)

// Source provides raw ruleset documents and the version-resolution index.
// Implementations live in internal/rulestore.
type Source interface {
	// Document returns the raw bytes for a ruleset id.
	// Returns a RULESET_NOT_FOUND error when the id does not exist.
	Document(id string) ([]byte, error)

	// Index returns the raw version-resolution index
	Index() ([]byte, error)

	// List returns all stored ruleset ids
	List() ([]string, error)
}

// Loader reads, verifies and resolves ruleset documents. Loads are
// idempotent: the same version always yields the same verified content, and
// signatures are re-verified on every load.
type Loader struct {
	source Source
	signer *Signer
}

// NewLoader creates a loader over a source and signer
func NewLoader(source Source, signer *Signer) *Loader {
	return &Loader{source: source, signer: signer}
}

// LoadFederal loads and verifies a federal ruleset by id
func (l *Loader) LoadFederal(id string) (*FederalRuleset, error) {
	data, err := l.source.Document(id)
	if err != nil {
		return nil, err
	}

	var doc FederalRuleset
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Validation("parse federal ruleset "+id, err)
	}
	// Signature first. A tampered document must always surface as a
	// signature rejection, even when the tampering also broke its structure.
	if err := l.signer.VerifyFederal(&doc); err != nil {
		logging.Error("federal ruleset signature rejected", zap.String("ruleset_id", id))
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	logging.Debug("federal ruleset loaded",
		zap.String("ruleset_id", doc.ID),
		zap.Int("tax_year", doc.TaxYear))
	return &doc, nil
}

// LoadState loads and verifies a state ruleset by id
func (l *Loader) LoadState(id string) (*StateRuleset, error) {
	data, err := l.source.Document(id)
	if err != nil {
		return nil, err
	}

	var doc StateRuleset
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Validation("parse state ruleset "+id, err)
	}
	if err := l.signer.VerifyState(&doc); err != nil {
		logging.Error("state ruleset signature rejected", zap.String("ruleset_id", id))
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	logging.Debug("state ruleset loaded",
		zap.String("ruleset_id", doc.ID),
		zap.Int("tax_year", doc.TaxYear))
	return &doc, nil
}

// List returns all stored ruleset ids
func (l *Loader) List() ([]string, error) {
	return l.source.List()
}

// Peek reads only the envelope of a stored document, without validating or
// verifying it. Used to route a document to the right typed loader.
func (l *Loader) Peek(id string) (*Envelope, error) {
	data, err := l.source.Document(id)
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Validation("parse ruleset envelope "+id, err)
	}
	return &env, nil
}

// ResolveActive resolves the active ruleset versions for a tax year.
// A per-tax-year entry wins; otherwise the global active pointer applies.
func (l *Loader) ResolveActive(taxYear int) (ActiveVersions, error) {
	data, err := l.source.Index()
	if err != nil {
		return ActiveVersions{}, err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return ActiveVersions{}, errors.Validation("parse ruleset index", err)
	}

	if versions, ok := index.Years[strconv.Itoa(taxYear)]; ok {
		return versions, nil
	}
	if index.Active != nil {
		return *index.Active, nil
	}
	return ActiveVersions{}, errors.RulesetNotFound("active versions for tax year " + strconv.Itoa(taxYear))
}
