package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fajrglobal/clinic-api/internal/model"
	"github.com/fajrglobal/clinic-api/internal/repository"
)

const encounterColumns = `id, patient_id, encounter_datetime, pregnancy_status, chief_complaint,
	clinical_summary, weight_kg, specialty_code, created_at, updated_at`

type encounterRepository struct {
	BaseRepository
}

func NewEncounterRepository(base BaseRepository) repository.EncounterRepository {
	return &encounterRepository{base}
}

// Create inserts an encounter. A nil EncounterDatetime means "now".
func (r *encounterRepository) Create(ctx context.Context, in model.NewEncounter) (*model.Encounter, error) {
	start := time.Now()
	ts := now()

	encounterAt := ts
	if in.EncounterDatetime != nil {
		encounterAt = in.EncounterDatetime.UTC().Truncate(time.Microsecond)
	}

	encounter := &model.Encounter{
		PatientID:         in.PatientID,
		EncounterDatetime: encounterAt,
		PregnancyStatus:   in.PregnancyStatus,
		ChiefComplaint:    in.ChiefComplaint,
		ClinicalSummary:   in.ClinicalSummary,
		WeightKg:          in.WeightKg,
		SpecialtyCode:     in.SpecialtyCode,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}

	query := r.db.Rebind(`
		INSERT INTO encounters (
			patient_id, encounter_datetime, pregnancy_status, chief_complaint,
			clinical_summary, weight_kg, specialty_code, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		encounter.PatientID,
		encounter.EncounterDatetime,
		encounter.PregnancyStatus,
		encounter.ChiefComplaint,
		encounter.ClinicalSummary,
		encounter.WeightKg,
		encounter.SpecialtyCode,
		encounter.CreatedAt,
		encounter.UpdatedAt,
	).Scan(&encounter.ID)
	if err = r.observe("encounter.create", start, err); err != nil {
		return nil, fmt.Errorf("failed to create encounter: %w", err)
	}
	return encounter, nil
}

func (r *encounterRepository) Get(ctx context.Context, id int64) (*model.Encounter, error) {
	start := time.Now()
	query := r.db.Rebind(`SELECT ` + encounterColumns + ` FROM encounters WHERE id = ?`)

	var encounter model.Encounter
	err := r.db.GetContext(ctx, &encounter, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		r.metrics.ObserveDB("encounter.get", start, nil)
		return nil, nil
	}
	if err = r.observe("encounter.get", start, err); err != nil {
		return nil, fmt.Errorf("failed to get encounter: %w", err)
	}
	return &encounter, nil
}

// listEncounters returns the patient's encounters, newest first.
func listEncounters(ctx context.Context, q queryer, patientID int64) ([]*model.Encounter, error) {
	query := q.Rebind(`
		SELECT ` + encounterColumns + ` FROM encounters
		WHERE patient_id = ?
		ORDER BY encounter_datetime DESC, id DESC
	`)
	encounters := []*model.Encounter{}
	if err := sqlx.SelectContext(ctx, q, &encounters, query, patientID); err != nil {
		return nil, err
	}
	return encounters, nil
}
