// Package document defines the persisted document shape and how one is built
// from a source file.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// PreviewWords is how many leading words go into the metadata preview.
const PreviewWords = 10

// Document is the record persisted for one unique source text. The id is a
// content hash of the full text, so identical text never produces two stored
// records. Documents are immutable once stored; there is no update path.
type Document struct {
	ID        string    `bson:"_id" json:"id"`
	Text      string    `bson:"text" json:"text"`
	Embedding []float32 `bson:"embedding" json:"embedding"`
	Metadata  *Metadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Metadata carries informational fields derived from the source file. It is
// never used for identity or lookup; consumers must not depend on it.
type Metadata struct {
	Filename    string    `bson:"filename" json:"filename"`
	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`
	TextLength  int       `bson:"text_length" json:"text_length"`
	Preview     string    `bson:"preview" json:"preview"`
}

// Hash returns the SHA-256 digest of the text's UTF-8 bytes as 64 lowercase
// hex characters.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Preview returns the first n whitespace-separated words of text.
func Preview(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
