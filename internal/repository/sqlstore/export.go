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

type exportRepository struct {
	BaseRepository
}

func NewExportRepository(base BaseRepository) repository.ExportRepository {
	return &exportRepository{base}
}

// GetPatientExportBundle reads the patient, identifiers, encounters and items
// from one snapshot. It returns nil when the patient does not exist.
func (r *exportRepository) GetPatientExportBundle(ctx context.Context, patientID int64) (*model.ExportBundle, error) {
	start := time.Now()
	var bundle *model.ExportBundle

	err := r.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		var patient model.Patient
		query := tx.Rebind(`SELECT ` + patientColumns + ` FROM patients WHERE id = ?`)
		if err := tx.GetContext(ctx, &patient, query, patientID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to get patient: %w", err)
		}

		identifiers, err := listIdentifiers(ctx, tx, patientID)
		if err != nil {
			return fmt.Errorf("failed to list identifiers: %w", err)
		}

		encounters, err := listEncounters(ctx, tx, patientID)
		if err != nil {
			return fmt.Errorf("failed to list encounters: %w", err)
		}

		items, err := listItemsByPatient(ctx, tx, patientID)
		if err != nil {
			return fmt.Errorf("failed to list encounter items: %w", err)
		}

		bundle = &model.ExportBundle{
			Patient:     &patient,
			Identifiers: identifiers,
			Encounters:  encounters,
			Items:       items,
		}
		return nil
	})
	if err = r.observe("export.bundle", start, err); err != nil {
		return nil, err
	}
	return bundle, nil
}
