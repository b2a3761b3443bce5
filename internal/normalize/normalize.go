// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw register rows into LandRecords with closed
// land-category and possession enums, folded owner names and optional
// coordinates. It performs no I/O.
package normalize

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/governance-engine/internal/fuzzy"
	"github.com/pdiddy/governance-engine/pkg/types"
)

// minFuzzySimilarity keeps short labels from matching unrelated aliases
// that happen to be within the edit budget.
const minFuzzySimilarity = 0.75

// Normalizer converts RawRecords to LandRecords. It is safe for
// concurrent use.
type Normalizer struct {
	matcher  fuzzy.Matcher
	maxEdits int
	defaults types.ContextDefaults
}

// New returns a Normalizer using m for fuzzy vocabulary lookup. A nil m
// selects fuzzy.Levenshtein.
func New(cfg types.EngineConfig, m fuzzy.Matcher) *Normalizer {
	if m == nil {
		m = fuzzy.Levenshtein{}
	}
	return &Normalizer{matcher: m, maxEdits: cfg.FuzzyMaxEdits, defaults: cfg.Context}
}

// Normalize builds a LandRecord from raw. It returns a *NormalizationError
// naming the offending field when a required or categorical field cannot
// be resolved. Malformed coordinates are dropped, not reported.
func (n *Normalizer) Normalize(raw types.RawRecord) (types.LandRecord, error) {
	reject := func(field, value string, err error) (types.LandRecord, error) {
		return types.LandRecord{}, &NormalizationError{Row: raw.Row, Field: field, Value: value, Err: err}
	}

	owner := raw.Get(types.ColOwner)
	ownerKey := fuzzy.FoldName(owner)
	if ownerKey == "" {
		return reject(types.ColOwner, owner, ErrMissingOwner)
	}

	khasra := raw.Get(types.ColKhasra)
	if khasra == "" {
		return reject(types.ColKhasra, "", ErrMissingParcel)
	}

	landType := raw.Get(types.ColLandType)
	category, err := n.LandCategory(landType)
	if err != nil {
		return reject(types.ColLandType, landType, err)
	}

	possession, field, value, err := n.possession(raw)
	if err != nil {
		return reject(field, value, err)
	}

	rec := types.LandRecord{
		Row: raw.Row,
		Parcel: types.ParcelRef{
			Khasra: khasra,
			Khevat: raw.Get(types.ColKhevat),
			Khata:  raw.Get(types.ColKhata),
		},
		OwnerName:     fuzzy.DisplayName(owner),
		OwnerKey:      ownerKey,
		OwnerPhonetic: fuzzy.PhoneticKey(ownerKey),
		KnownNames:    knownNames(raw),
		Category:      category,
		Possession:    possession,
		Claimed:       parseCoordinate(raw.Get(types.ColClaimedLat), raw.Get(types.ColClaimedLon)),
		Official:      parseCoordinate(raw.Get(types.ColOfficialLat), raw.Get(types.ColOfficialLon)),
		Village:       firstNonEmpty(raw.Get(types.ColVillage), n.defaults.Village),
		Device:        firstNonEmpty(raw.Get(types.ColDevice), n.defaults.Device),
		Remarks:       raw.Get(types.ColRemarks),
		Raw:           copyFields(raw.Fields),
	}
	return rec, nil
}

// LandCategory resolves a free-text land-type label. It tries an exact
// alias, then the closest alias within the edit budget, then the alias
// phrases contained in the label. Negated labels, text that resolves to
// nothing, and text naming two categories are errors; it never falls back
// to CategoryOther.
func (n *Normalizer) LandCategory(text string) (types.LandCategory, error) {
	folded := fuzzy.FoldTerm(text)
	if folded == "" {
		return "", ErrUnrecognizedLandCategory
	}
	if c, ok := landTypeAliases[folded]; ok {
		return c, nil
	}
	if negated(folded) {
		return "", ErrUnrecognizedLandCategory
	}
	c, err := fuzzyLookup(n.matcher, n.maxEdits, folded, landTypeAliases, ErrUnrecognizedLandCategory, ErrAmbiguousLandCategory)
	if !errors.Is(err, ErrUnrecognizedLandCategory) {
		return c, err
	}
	if c, ok, err := containedAlias(folded); ok || err != nil {
		return c, err
	}
	return "", ErrUnrecognizedLandCategory
}

// Possession resolves an explicit possession-status label.
func (n *Normalizer) Possession(text string) (types.PossessionStatus, error) {
	folded := fuzzy.FoldTerm(text)
	if folded == "" {
		return "", ErrUnrecognizedPossession
	}
	if p, ok := possessionAliases[folded]; ok {
		return p, nil
	}
	return fuzzyLookup(n.matcher, n.maxEdits, folded, possessionAliases, ErrUnrecognizedPossession, ErrUnrecognizedPossession)
}

// possession reads the explicit column when present and otherwise derives
// the status from remarks, mutation and cultivator fields. Remarks that
// match several statuses resolve in channel order: a pending inheritance
// first, then custodian occupation, then a dispute. It returns the field to
// blame on failure.
func (n *Normalizer) possession(raw types.RawRecord) (types.PossessionStatus, string, string, error) {
	if explicit := raw.Get(types.ColPossession); explicit != "" {
		p, err := n.Possession(explicit)
		return p, types.ColPossession, explicit, err
	}

	remarks := fuzzy.FoldTerm(raw.Get(types.ColRemarks))
	mutation := fuzzy.FoldTerm(raw.Get(types.ColMutation))
	cultivator := fuzzy.FoldTerm(raw.Get(types.ColCultivator))

	switch {
	case containsAny(remarks, inheritKeywords) && (mutationPending[mutation] || n.hasPendingMarker(remarks)):
		return types.PossessionInherited, "", "", nil
	case containsAny(remarks, custodianKeywords):
		return types.PossessionCustodian, "", "", nil
	case containsAny(remarks, disputeKeywords):
		return types.PossessionDisputed, "", "", nil
	case containsAny(cultivator, selfKeywords), hasDigit(remarks), mutationDone[mutation]:
		return types.PossessionSelfCultivated, "", "", nil
	}
	return "", types.ColPossession, "", ErrMissingPossession
}

// hasPendingMarker reports whether remarks say the mutation is pending,
// tolerating OCR damage such as "pnding" or "VarasatPending".
func (n *Normalizer) hasPendingMarker(remarks string) bool {
	if strings.Contains(remarks, pendingMarker) {
		return true
	}
	for _, tok := range strings.Fields(remarks) {
		if cmp := n.matcher.Compare(tok, pendingMarker); cmp.Distance <= n.maxEdits && cmp.Similarity >= minFuzzySimilarity {
			return true
		}
	}
	return false
}

// containedAlias resolves a label by the alias phrases it contains. Only
// phrases not covered by a longer contained phrase count, so the generic
// "gair mumkin" prefix of "gair mumkin makan abadi deh" is ignored. The
// label is ambiguous when those phrases name more than one category.
func containedAlias(folded string) (types.LandCategory, bool, error) {
	padded := " " + folded + " "
	var found []string
	for alias := range landTypeAliases {
		if strings.Contains(padded, " "+alias+" ") {
			found = append(found, alias)
		}
	}
	if len(found) == 0 {
		return "", false, nil
	}

	var (
		category types.LandCategory
		matched  bool
	)
	for _, alias := range found {
		if coveredByLonger(alias, found) {
			continue
		}
		c := landTypeAliases[alias]
		if matched && c != category {
			return "", true, ErrAmbiguousLandCategory
		}
		category, matched = c, true
	}
	return category, true, nil
}

func coveredByLonger(alias string, found []string) bool {
	for _, other := range found {
		if len(other) > len(alias) && strings.Contains(" "+other+" ", " "+alias+" ") {
			return true
		}
	}
	return false
}

// negated reports whether a folded label negates what it names, as in
// "non agricultural".
func negated(folded string) bool {
	for _, tok := range strings.Fields(folded) {
		if negationWords[tok] {
			return true
		}
	}
	return false
}

// fuzzyLookup returns the value of the unique closest alias within the
// edit budget. Aliases are visited in sorted order so ties are detected
// deterministically.
func fuzzyLookup[V comparable](m fuzzy.Matcher, maxEdits int, folded string, aliases map[string]V, notFound, ambiguous error) (V, error) {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		zero     V
		best     V
		bestDist = math.MaxInt
		tie      bool
	)
	for _, k := range keys {
		cmp := m.Compare(folded, k)
		if cmp.Distance > maxEdits || cmp.Similarity < minFuzzySimilarity {
			continue
		}
		switch {
		case cmp.Distance < bestDist:
			best, bestDist, tie = aliases[k], cmp.Distance, false
		case cmp.Distance == bestDist && aliases[k] != best:
			tie = true
		}
	}
	if bestDist == math.MaxInt {
		return zero, notFound
	}
	if tie {
		return zero, ambiguous
	}
	return best, nil
}

// knownNames collects prior-seen name variants for the parcel: the
// volunteer-verified name and any ';' or '|' separated prior names.
func knownNames(raw types.RawRecord) []string {
	candidates := []string{raw.Get(types.ColVerifiedName)}
	candidates = append(candidates, strings.FieldsFunc(raw.Get(types.ColPriorNames), func(r rune) bool {
		return r == ';' || r == '|'
	})...)

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		folded := fuzzy.FoldName(c)
		if folded == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, folded)
	}
	return out
}

// parseCoordinate returns nil unless both values parse to finite numbers
// within WGS84 bounds.
func parseCoordinate(lat, lon string) *types.Coordinate {
	if lat == "" || lon == "" {
		return nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil
	}
	if math.IsNaN(la) || math.IsNaN(lo) || math.Abs(la) > 90 || math.Abs(lo) > 180 {
		return nil
	}
	return &types.Coordinate{Lat: la, Lon: lo}
}

func containsAny(s string, words []string) bool {
	if s == "" {
		return false
	}
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
