// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity derives stable occupant identifiers from a record's
// name and survey context, and tracks which records produced each
// identifier so that collisions can be reported.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pdiddy/governance-engine/pkg/types"
)

const (
	// Prefix marks identifiers issued by this engine.
	Prefix = "JK-"

	// Unset stands in for an empty field so that an empty village cannot
	// be confused with a village literally named "".
	Unset = "UNSET"

	hexDigits = 16
)

// Generate returns the identifier for a name in a village as surveyed by a
// device. Fields are trimmed and upper-cased before hashing, so the result
// depends only on their content. It is total and deterministic.
func Generate(name, village, device string) string {
	sum := sha256.Sum256([]byte(canonical(name) + "|" + canonical(village) + "|" + canonical(device)))
	return Prefix + strings.ToUpper(hex.EncodeToString(sum[:]))[:hexDigits]
}

// ForRecord returns the identifier of rec, derived from its phonetic
// name key. Variants that differ only in vowels, aspiration or doubled
// letters share an identifier. A changed consonant does not: "Kumar" and
// "Kunar", or "Singh" and "Sinh", yield distinct identifiers, and only the
// identity rule's edit distance links such records.
func ForRecord(rec types.LandRecord) string {
	return Generate(rec.OwnerPhonetic, rec.Village, rec.Device)
}

// Fingerprint summarizes the inputs that distinguish one occupant record
// from another with the same identifier.
func Fingerprint(rec types.LandRecord) string {
	h := sha256.New()
	for _, f := range []string{rec.Parcel.Khasra, rec.OwnerName, rec.Village, rec.Device} {
		h.Write([]byte(canonical(f)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func canonical(field string) string {
	field = strings.ToUpper(strings.TrimSpace(field))
	if field == "" {
		return Unset
	}
	return strings.ReplaceAll(field, "|", "/")
}
