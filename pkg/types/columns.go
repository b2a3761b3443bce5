// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Input column names. Headers are matched case-insensitively; columns not
// listed here are ignored.
const (
	ColKhevat       = "Khevat_No"
	ColKhata        = "Khata_No"
	ColKhasra       = "Khasra_No"
	ColOwner        = "Owner_Name"
	ColCultivator   = "Cultivator_Name"
	ColVerifiedName = "VDV_Verified_Name"
	ColPriorNames   = "Prior_Names"
	ColLandType     = "Land_Type"
	ColPossession   = "Possession_Status"
	ColMutation     = "Revenue_Mutation"
	ColRemarks      = "Remarks_Kaifiyat"
	ColClaimedLat   = "Claimed_Lat"
	ColClaimedLon   = "Claimed_Lon"
	ColOfficialLat  = "Official_Lat"
	ColOfficialLon  = "Official_Lon"
	ColVillage      = "Village_Code"
	ColDevice       = "Device_ID"
	ColAreaKanal    = "Area_Kanal"
	ColAreaMarla    = "Area_Marla"
)

// InputColumns lists the recognized input columns in canonical order.
var InputColumns = []string{
	ColKhevat, ColKhata, ColKhasra, ColOwner, ColCultivator, ColVerifiedName,
	ColPriorNames, ColLandType, ColPossession, ColMutation, ColRemarks,
	ColClaimedLat, ColClaimedLon, ColOfficialLat, ColOfficialLon,
	ColVillage, ColDevice, ColAreaKanal, ColAreaMarla,
}

// Result columns appended to each exported row.
const (
	ColIdentifier = "AgriStack_FID"
	ColScore      = "Trust_Score"
	ColChannel    = "Governance_Channel"
	ColDriver     = "Primary_Driver"
	ColAction     = "Action_Taken"
	ColTrace      = "Audit_Trace"
)

// ResultColumns lists the columns the engine adds to each output row.
var ResultColumns = []string{ColIdentifier, ColScore, ColChannel, ColDriver, ColAction, ColTrace}
