package explain

import (
	"crypto/sha256"
	"encoding/hex"
)

// IDGenerator generates stable node ids. Identical namespaces and parts
// always yield identical ids, which keeps computation output byte-for-byte
// reproducible across runs.
type IDGenerator struct {
	namespace string
}

// NewIDGenerator creates an ID generator with a namespace
func NewIDGenerator(namespace string) *IDGenerator {
	return &IDGenerator{namespace: namespace}
}

// Generate creates a stable ID from inputs
func (g *IDGenerator) Generate(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(g.namespace))
	h.Write([]byte{0}) // Separator
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0}) // Separator
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
