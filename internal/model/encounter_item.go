package model

import "time"

type EncounterItem struct {
	ID          int64     `db:"id" json:"id"`
	EncounterID int64     `db:"encounter_id" json:"encounter_id"`
	ItemType    ItemType  `db:"item_type" json:"item_type"`
	SummaryText *string   `db:"summary_text" json:"summary_text"`
	PayloadJSON Payload   `db:"payload_json" json:"payload_json"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type UpsertItemRequest struct {
	PayloadJSON Payload `json:"payload_json"`
	SummaryText *string `json:"summary_text" binding:"omitempty,max=255"`
}

// ExportBundle is a snapshot of a patient and everything beneath it.
type ExportBundle struct {
	Patient     *Patient
	Identifiers []*PatientIdentifier
	// Encounters are ordered by encounter datetime, newest first.
	Encounters []*Encounter
	Items      map[int64][]*EncounterItem
}
