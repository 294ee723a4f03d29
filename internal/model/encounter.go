package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxWeightKg is the largest weight a decimal(5,2) column can hold.
var MaxWeightKg = decimal.RequireFromString("999.99")

type Encounter struct {
	ID                int64            `db:"id" json:"id"`
	PatientID         int64            `db:"patient_id" json:"patient_id"`
	EncounterDatetime time.Time        `db:"encounter_datetime" json:"encounter_datetime"`
	PregnancyStatus   PregnancyStatus  `db:"pregnancy_status" json:"pregnancy_status"`
	ChiefComplaint    *string          `db:"chief_complaint" json:"chief_complaint,omitempty"`
	ClinicalSummary   *string          `db:"clinical_summary" json:"clinical_summary,omitempty"`
	WeightKg          *decimal.Decimal `db:"weight_kg" json:"weight_kg,omitempty"`
	SpecialtyCode     *string          `db:"specialty_code" json:"specialty_code,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"-"`
	UpdatedAt         time.Time        `db:"updated_at" json:"-"`
}

type NewEncounter struct {
	PatientID         int64
	EncounterDatetime *time.Time
	PregnancyStatus   PregnancyStatus
	ChiefComplaint    *string
	ClinicalSummary   *string
	WeightKg          *decimal.Decimal
	SpecialtyCode     *string
}

type CreateEncounterRequest struct {
	EncounterDatetime *Datetime        `json:"encounter_datetime"`
	PregnancyStatus   PregnancyStatus  `json:"pregnancy_status" binding:"omitempty,enum"`
	ChiefComplaint    *string          `json:"chief_complaint"`
	ClinicalSummary   *string          `json:"clinical_summary"`
	WeightKg          *decimal.Decimal `json:"weight_kg"`
	SpecialtyCode     *string          `json:"specialty_code" binding:"omitempty,max=50"`
}

func (r *CreateEncounterRequest) ToNewEncounter(patientID int64) NewEncounter {
	status := r.PregnancyStatus
	if status == "" {
		status = PregnancyStatusUnknown
	}
	var at *time.Time
	if r.EncounterDatetime != nil && !r.EncounterDatetime.IsZero() {
		t := r.EncounterDatetime.UTC()
		at = &t
	}
	return NewEncounter{
		PatientID:         patientID,
		EncounterDatetime: at,
		PregnancyStatus:   status,
		ChiefComplaint:    r.ChiefComplaint,
		ClinicalSummary:   r.ClinicalSummary,
		WeightKg:          r.WeightKg,
		SpecialtyCode:     r.SpecialtyCode,
	}
}

// EncounterSheet is an encounter with the latest payload of every item type recorded on it.
type EncounterSheet struct {
	Encounter *Encounter           `json:"encounter"`
	Items     map[ItemType]Payload `json:"items"`
}
