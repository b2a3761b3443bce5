// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// LandCategory is the closed classification of a parcel's land type.
type LandCategory string

const (
	CategoryAgricultural    LandCategory = "agricultural"
	CategoryGairMumkinMakan LandCategory = "gair-mumkin-makan"
	CategoryGairMumkinSarak LandCategory = "gair-mumkin-sarak"
	CategoryCustodian       LandCategory = "custodian-evacuee"
	CategoryOther           LandCategory = "other"
)

// LandCategories lists every accepted LandCategory.
var LandCategories = []LandCategory{
	CategoryAgricultural,
	CategoryGairMumkinMakan,
	CategoryGairMumkinSarak,
	CategoryCustodian,
	CategoryOther,
}

// Valid reports whether c is a member of the closed enumeration.
func (c LandCategory) Valid() bool {
	for _, v := range LandCategories {
		if c == v {
			return true
		}
	}
	return false
}

// PossessionStatus describes how the occupant holds the parcel.
type PossessionStatus string

const (
	PossessionSelfCultivated PossessionStatus = "self-cultivated"
	PossessionInherited      PossessionStatus = "inherited-pending-mutation"
	PossessionCustodian      PossessionStatus = "custodian-occupant"
	PossessionDisputed       PossessionStatus = "disputed"
)

// PossessionStatuses lists every accepted PossessionStatus.
var PossessionStatuses = []PossessionStatus{
	PossessionSelfCultivated,
	PossessionInherited,
	PossessionCustodian,
	PossessionDisputed,
}

// Valid reports whether p is a member of the closed enumeration.
func (p PossessionStatus) Valid() bool {
	for _, v := range PossessionStatuses {
		if p == v {
			return true
		}
	}
	return false
}

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// ParcelRef holds the legacy parcel and ownership-block identifiers.
type ParcelRef struct {
	// Khasra is the plot number and the parcel's primary identifier.
	Khasra string `json:"khasra" yaml:"khasra"`

	// Khevat is the ownership-block number.
	Khevat string `json:"khevat,omitempty" yaml:"khevat,omitempty"`

	// Khata is the holding (account) number.
	Khata string `json:"khata,omitempty" yaml:"khata,omitempty"`
}

// RawRecord is one input row keyed by canonical column name, before
// normalization. Row is the 1-based data row number in the source.
type RawRecord struct {
	Row    int               `json:"row" yaml:"row"`
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Get returns the trimmed value of a column, or "" when absent.
func (r RawRecord) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// LandRecord is one parcel-occupant pairing after normalization. It is
// built once by the normalizer and never mutated afterwards.
type LandRecord struct {
	Row    int       `json:"row" yaml:"row"`
	Parcel ParcelRef `json:"parcel" yaml:"parcel"`

	// OwnerName is the display form: trimmed, whitespace collapsed, title case.
	OwnerName string `json:"owner_name" yaml:"owner_name"`

	// OwnerKey is the folded comparison form used for identity matching.
	OwnerKey string `json:"owner_key" yaml:"owner_key"`

	// OwnerPhonetic is the phonetic skeleton of OwnerKey used to derive
	// the occupant identifier.
	OwnerPhonetic string `json:"owner_phonetic" yaml:"owner_phonetic"`

	// KnownNames are prior-seen variants of the owner name for this
	// parcel, in folded form.
	KnownNames []string `json:"known_names,omitempty" yaml:"known_names,omitempty"`

	Category   LandCategory     `json:"category" yaml:"category"`
	Possession PossessionStatus `json:"possession" yaml:"possession"`

	// Claimed is the coordinate recorded by the field survey, if any.
	Claimed *Coordinate `json:"claimed,omitempty" yaml:"claimed,omitempty"`

	// Official is the plot coordinate from the cadastral map, if any.
	Official *Coordinate `json:"official,omitempty" yaml:"official,omitempty"`

	Village string `json:"village" yaml:"village"`
	Device  string `json:"device" yaml:"device"`

	Remarks string `json:"remarks,omitempty" yaml:"remarks,omitempty"`

	// Raw carries the original input fields through to export.
	Raw map[string]string `json:"-" yaml:"-"`
}

// HasCoordinates reports whether both the claimed and official points are present.
func (r LandRecord) HasCoordinates() bool {
	return r.Claimed != nil && r.Official != nil
}
