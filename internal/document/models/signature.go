package models

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strconv"
	"time"

	id "accredis/pkg/domain"
)

// Signature records who published a document, when, and a SHA-256
// fingerprint of what they published. The three fields only ever exist
// together.
type Signature struct {
	Hash     string    `json:"hash"`
	SignedBy id.UserID `json:"signed_by"`
	SignedAt time.Time `json:"signed_at"`
}

// Sign fingerprints the document's identity, version, title and content
// together with the signer and time. Fields are length-prefixed. The time
// is kept at microsecond precision to survive a PostgreSQL round trip.
func Sign(d *Document, signer id.UserID, at time.Time) Signature {
	at = at.UTC().Truncate(time.Microsecond)
	return Signature{
		Hash:     fingerprint(d, signer, at),
		SignedBy: signer,
		SignedAt: at,
	}
}

// Matches reports whether the document still carries the exact content
// that was signed.
func (s Signature) Matches(d *Document) bool {
	return s.Hash == fingerprint(d, s.SignedBy, s.SignedAt)
}

func fingerprint(d *Document, signer id.UserID, at time.Time) string {
	h := sha256.New()
	writeField(h, d.ID.String())
	writeField(h, strconv.Itoa(d.Version))
	writeField(h, d.Title)
	writeField(h, d.Content)
	writeField(h, signer.String())
	writeField(h, at.UTC().Format(time.RFC3339Nano))
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, v string) {
	h.Write([]byte(strconv.Itoa(len(v))))
	h.Write([]byte{':'})
	h.Write([]byte(v))
}
