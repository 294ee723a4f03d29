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

const patientColumns = `id, full_name, date_of_birth, sex, no_known_allergies, created_at, updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, in model.NewPatient) (*model.Patient, error) {
	start := time.Now()
	ts := now()
	patient := &model.Patient{
		FullName:         in.FullName,
		DateOfBirth:      in.DateOfBirth,
		Sex:              in.Sex,
		NoKnownAllergies: in.NoKnownAllergies,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO patients (full_name, date_of_birth, sex, no_known_allergies, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		if err := tx.QueryRowxContext(ctx, query,
			patient.FullName,
			patient.DateOfBirth,
			patient.Sex,
			patient.NoKnownAllergies,
			patient.CreatedAt,
			patient.UpdatedAt,
		).Scan(&patient.ID); err != nil {
			return fmt.Errorf("failed to create patient: %w", err)
		}

		if in.NationalID == nil {
			return nil
		}

		query = tx.Rebind(`
			INSERT INTO patient_identifiers (patient_id, id_type, id_value, created_at)
			VALUES (?, ?, ?, ?)
		`)
		if _, err := tx.ExecContext(ctx, query, patient.ID, model.IDTypeNationalID, *in.NationalID, ts); err != nil {
			if isUniqueViolation(err) {
				return &repository.DuplicateIdentifierError{
					IDType:  model.IDTypeNationalID,
					IDValue: *in.NationalID,
					Err:     err,
				}
			}
			return fmt.Errorf("failed to create patient identifier: %w", err)
		}
		return nil
	})
	if err = r.observe("patient.create", start, err); err != nil {
		return nil, err
	}
	return patient, nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	start := time.Now()
	query := r.db.Rebind(`SELECT ` + patientColumns + ` FROM patients WHERE id = ?`)

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		r.metrics.ObserveDB("patient.get", start, nil)
		return nil, nil
	}
	if err = r.observe("patient.get", start, err); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Search(ctx context.Context, q string) ([]*model.Patient, error) {
	start := time.Now()
	pattern := likePattern(q)

	var byName []*model.Patient
	query := r.db.Rebind(`
		SELECT ` + patientColumns + ` FROM patients
		WHERE full_name LIKE ? ESCAPE '\'
		ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &byName, query, pattern); err != nil {
		return nil, fmt.Errorf("failed to search patients by name: %w", r.observe("patient.search", start, err))
	}

	var byIdentifier []*model.Patient
	query = r.db.Rebind(`
		SELECT ` + patientColumns + ` FROM patients
		WHERE id IN (
			SELECT patient_id FROM patient_identifiers WHERE id_value LIKE ? ESCAPE '\'
		)
		ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &byIdentifier, query, pattern); err != nil {
		return nil, fmt.Errorf("failed to search patients by identifier: %w", r.observe("patient.search", start, err))
	}
	r.metrics.ObserveDB("patient.search", start, nil)

	seen := make(map[int64]struct{}, len(byName))
	patients := make([]*model.Patient, 0, len(byName)+len(byIdentifier))
	for _, group := range [][]*model.Patient{byName, byIdentifier} {
		for _, p := range group {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			patients = append(patients, p)
		}
	}
	return patients, nil
}

func listIdentifiers(ctx context.Context, q queryer, patientID int64) ([]*model.PatientIdentifier, error) {
	query := q.Rebind(`
		SELECT id, patient_id, id_type, id_value, created_at
		FROM patient_identifiers
		WHERE patient_id = ?
		ORDER BY id
	`)
	identifiers := []*model.PatientIdentifier{}
	if err := sqlx.SelectContext(ctx, q, &identifiers, query, patientID); err != nil {
		return nil, err
	}
	return identifiers, nil
}
