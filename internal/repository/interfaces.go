package repository

import (
	"context"

	"github.com/fajrglobal/clinic-api/internal/model"
)

// All repository interfaces in one file.
// Point lookups return (nil, nil) when the row does not exist.
type (
	PatientRepository interface {
		// Create inserts the patient and, when a national ID is given, its
		// national_id identifier in the same transaction.
		Create(ctx context.Context, in model.NewPatient) (*model.Patient, error)
		Get(ctx context.Context, id int64) (*model.Patient, error)
		// Search returns name matches first, then identifier matches not
		// already returned, each group in id order.
		Search(ctx context.Context, q string) ([]*model.Patient, error)
	}

	EncounterRepository interface {
		Create(ctx context.Context, in model.NewEncounter) (*model.Encounter, error)
		Get(ctx context.Context, id int64) (*model.Encounter, error)
	}

	EncounterItemRepository interface {
		// Upsert keeps exactly one row per (encounter, item type). An existing
		// row keeps its id and created_at; payload and summary are replaced.
		Upsert(ctx context.Context, encounterID int64, itemType model.ItemType, payload model.Payload, summary *string) (*model.EncounterItem, error)
		ListByEncounter(ctx context.Context, encounterID int64) ([]*model.EncounterItem, error)
		SheetItems(ctx context.Context, encounterID int64) (map[model.ItemType]model.Payload, error)
	}

	ExportRepository interface {
		GetPatientExportBundle(ctx context.Context, patientID int64) (*model.ExportBundle, error)
	}
)
