package model

import "fmt"

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexUnknown:
		return true
	}
	return false
}

func ParseSex(s string) (Sex, error) {
	if s == "" {
		return SexUnknown, nil
	}
	if v := Sex(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("invalid sex %q", s)
}

type PregnancyStatus string

const (
	PregnancyStatusPregnant    PregnancyStatus = "pregnant"
	PregnancyStatusNotPregnant PregnancyStatus = "not_pregnant"
	PregnancyStatusUnknown     PregnancyStatus = "unknown"
)

func (p PregnancyStatus) Valid() bool {
	switch p {
	case PregnancyStatusPregnant, PregnancyStatusNotPregnant, PregnancyStatusUnknown:
		return true
	}
	return false
}

func ParsePregnancyStatus(s string) (PregnancyStatus, error) {
	if s == "" {
		return PregnancyStatusUnknown, nil
	}
	if v := PregnancyStatus(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("invalid pregnancy status %q", s)
}

// ItemType tags the kind of clinical datum an EncounterItem holds.
type ItemType string

const (
	ItemTypeVitals     ItemType = "VITALS"
	ItemTypeNote       ItemType = "NOTE"
	ItemTypePMH        ItemType = "PMH"
	ItemTypeMedication ItemType = "MEDICATION"
	ItemTypeDiagnosis  ItemType = "DIAGNOSIS"
	ItemTypePlan       ItemType = "PLAN"
	ItemTypeOutcome    ItemType = "OUTCOME"
)

// ItemTypes lists every item type in sheet tab order.
func ItemTypes() []ItemType {
	return []ItemType{
		ItemTypeVitals,
		ItemTypeNote,
		ItemTypePMH,
		ItemTypeMedication,
		ItemTypeDiagnosis,
		ItemTypePlan,
		ItemTypeOutcome,
	}
}

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeVitals, ItemTypeNote, ItemTypePMH, ItemTypeMedication,
		ItemTypeDiagnosis, ItemTypePlan, ItemTypeOutcome:
		return true
	}
	return false
}

// ParseItemType is case sensitive: "vitals" is not a valid item type.
func ParseItemType(s string) (ItemType, error) {
	if v := ItemType(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("invalid item_type %q", s)
}
