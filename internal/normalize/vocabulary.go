// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "github.com/pdiddy/governance-engine/pkg/types"

// landTypeAliases maps folded land-type labels, as they appear in
// transliterated Jamabandi registers, to the closed category set.
var landTypeAliases = map[string]types.LandCategory{
	"agricultural":   types.CategoryAgricultural,
	"agriculture":    types.CategoryAgricultural,
	"agri":           types.CategoryAgricultural,
	"nahri":          types.CategoryAgricultural,
	"barani":         types.CategoryAgricultural,
	"chahi":          types.CategoryAgricultural,
	"abi":            types.CategoryAgricultural,
	"warhal":         types.CategoryAgricultural,
	"kashmiri nahri": types.CategoryAgricultural,

	"gair mumkin makan":   types.CategoryGairMumkinMakan,
	"gair mumakin makan":  types.CategoryGairMumkinMakan,
	"gair mumkin abadi":   types.CategoryGairMumkinMakan,
	"gair mumkin makanat": types.CategoryGairMumkinMakan,
	"abadi":               types.CategoryGairMumkinMakan,
	"abadi deh":           types.CategoryGairMumkinMakan,
	"makan":               types.CategoryGairMumkinMakan,

	"gair mumkin sarak":  types.CategoryGairMumkinSarak,
	"gair mumakin sarak": types.CategoryGairMumkinSarak,
	"gair mumkin rasta":  types.CategoryGairMumkinSarak,
	"gair mumkin nallah": types.CategoryGairMumkinSarak,
	"gair mumkin darya":  types.CategoryGairMumkinSarak,
	"gair mumkin kuhl":   types.CategoryGairMumkinSarak,
	"sarak":              types.CategoryGairMumkinSarak,
	"road":               types.CategoryGairMumkinSarak,
	"nallah":             types.CategoryGairMumkinSarak,
	"darya":              types.CategoryGairMumkinSarak,

	"custodian":         types.CategoryCustodian,
	"custodian land":    types.CategoryCustodian,
	"custodian evacuee": types.CategoryCustodian,
	"evacuee":           types.CategoryCustodian,
	"evacuee property":  types.CategoryCustodian,
	"muhajireen":        types.CategoryCustodian,
	"auqaf":             types.CategoryCustodian,

	"gair mumkin":   types.CategoryOther,
	"gair mumakin":  types.CategoryOther,
	"banjar":        types.CategoryOther,
	"banjar qadeem": types.CategoryOther,
	"banjar jadeed": types.CategoryOther,
	"shamilat":      types.CategoryOther,
	"other":         types.CategoryOther,
}

// possessionAliases maps folded possession labels to the closed status set.
var possessionAliases = map[string]types.PossessionStatus{
	"self cultivated":  types.PossessionSelfCultivated,
	"self cultivation": types.PossessionSelfCultivated,
	"owner cultivated": types.PossessionSelfCultivated,
	"khudkasht":        types.PossessionSelfCultivated,
	"khud kasht":       types.PossessionSelfCultivated,
	"maqboza khud":     types.PossessionSelfCultivated,

	"inherited pending mutation": types.PossessionInherited,
	"inherited":                  types.PossessionInherited,
	"varasat":                    types.PossessionInherited,
	"varasat pending":            types.PossessionInherited,
	"warasat":                    types.PossessionInherited,

	"custodian occupant": types.PossessionCustodian,
	"custodian":          types.PossessionCustodian,
	"evacuee occupant":   types.PossessionCustodian,
	"evacuee":            types.PossessionCustodian,

	"disputed":   types.PossessionDisputed,
	"dispute":    types.PossessionDisputed,
	"court stay": types.PossessionDisputed,
	"litigation": types.PossessionDisputed,
}

// negationWords invert a land-type label. "Gair" is not among them: it is
// part of the category names themselves.
var negationWords = map[string]bool{"non": true, "not": true, "no": true}

// Remarks keywords used to derive possession when the column is absent.
var (
	custodianKeywords = []string{"custodian", "evacuee", "muhajireen", "auqaf", "state land"}
	disputeKeywords   = []string{"stay", "court", "dispute", "litigation"}
	inheritKeywords   = []string{"varasat", "warasat", "inheritance"}
	selfKeywords      = []string{"khudkasht", "khud kasht", "maqboza", "sarkar"}
)

// pendingMarker is matched fuzzily because OCR often drops a letter.
const pendingMarker = "pending"

// mutation column values.
var (
	mutationPending = map[string]bool{"pending": true, "no": true, "n": true}
	mutationDone    = map[string]bool{"active": true, "done": true, "yes": true, "y": true, "complete": true, "completed": true}
)
