package ruleset

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
)

// Signer computes and verifies detached HMAC-SHA-256 signatures over
// ruleset documents, keyed by a deployment secret.
//
// The signed payload is the canonical JSON encoding of the parsed document
// with the signature field blanked. The signature therefore binds the
// document's content, not its stored byte form: re-encodings that parse to
// the same document (whitespace, key order, unknown fields) still verify,
// while any change to a field the parser reads invalidates the signature.
// Comparison is constant time.
type Signer struct {
	key []byte
}

// NewSigner creates a signer with the given key
func NewSigner(key []byte) *Signer {
	return &Signer{key: key}
}

// SignPayload computes the hex signature over a canonical payload
func (s *Signer) SignPayload(payload []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyPayload checks a hex signature against a canonical payload in
// constant time.
func (s *Signer) verifyPayload(payload []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

// SignFederal fills the signature field of a federal document
func (s *Signer) SignFederal(doc *FederalRuleset) error {
	payload, err := canonicalFederalPayload(doc)
	if err != nil {
		return errors.Internal("canonicalize federal ruleset", err)
	}
	doc.Signature = s.SignPayload(payload)
	return nil
}

// SignState fills the signature field of a state document
func (s *Signer) SignState(doc *StateRuleset) error {
	payload, err := canonicalStatePayload(doc)
	if err != nil {
		return errors.Internal("canonicalize state ruleset", err)
	}
	doc.Signature = s.SignPayload(payload)
	return nil
}

// VerifyFederal verifies a federal document's signature. A mismatch is
// fatal: the document must never be used for computation.
func (s *Signer) VerifyFederal(doc *FederalRuleset) error {
	payload, err := canonicalFederalPayload(doc)
	if err != nil {
		return errors.Internal("canonicalize federal ruleset", err)
	}
	if !s.verifyPayload(payload, doc.Signature) {
		return errors.RulesetSignatureInvalid(doc.ID)
	}
	return nil
}

// VerifyState verifies a state document's signature
func (s *Signer) VerifyState(doc *StateRuleset) error {
	payload, err := canonicalStatePayload(doc)
	if err != nil {
		return errors.Internal("canonicalize state ruleset", err)
	}
	if !s.verifyPayload(payload, doc.Signature) {
		return errors.RulesetSignatureInvalid(doc.ID)
	}
	return nil
}

// canonicalFederalPayload encodes the document minus its signature field.
// Struct field order makes the encoding deterministic.
func canonicalFederalPayload(doc *FederalRuleset) ([]byte, error) {
	unsigned := *doc
	unsigned.Signature = ""
	return json.Marshal(&unsigned)
}

func canonicalStatePayload(doc *StateRuleset) ([]byte, error) {
	unsigned := *doc
	unsigned.Signature = ""
	return json.Marshal(&unsigned)
}
