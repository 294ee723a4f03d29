// Package repotest provides function-field fakes of the repository
// interfaces for service tests.
package repotest

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/fajrglobal/clinic-api/internal/model"
	"github.com/fajrglobal/clinic-api/internal/repository"
)

var errNotImplemented = errors.New("not implemented in mock")

var _ repository.PatientRepository = (*MockPatientRepository)(nil)

type MockPatientRepository struct {
	CreateFunc func(ctx context.Context, in model.NewPatient) (*model.Patient, error)
	GetFunc    func(ctx context.Context, id int64) (*model.Patient, error)
	SearchFunc func(ctx context.Context, q string) ([]*model.Patient, error)

	CreateCallCount int32
}

func (m *MockPatientRepository) Create(ctx context.Context, in model.NewPatient) (*model.Patient, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errNotImplemented
}

func (m *MockPatientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *MockPatientRepository) Search(ctx context.Context, q string) ([]*model.Patient, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return nil, errNotImplemented
}

var _ repository.EncounterRepository = (*MockEncounterRepository)(nil)

type MockEncounterRepository struct {
	CreateFunc func(ctx context.Context, in model.NewEncounter) (*model.Encounter, error)
	GetFunc    func(ctx context.Context, id int64) (*model.Encounter, error)

	CreateCallCount int32
}

func (m *MockEncounterRepository) Create(ctx context.Context, in model.NewEncounter) (*model.Encounter, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errNotImplemented
}

func (m *MockEncounterRepository) Get(ctx context.Context, id int64) (*model.Encounter, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errNotImplemented
}

var _ repository.EncounterItemRepository = (*MockEncounterItemRepository)(nil)

type MockEncounterItemRepository struct {
	UpsertFunc          func(ctx context.Context, encounterID int64, itemType model.ItemType, payload model.Payload, summary *string) (*model.EncounterItem, error)
	ListByEncounterFunc func(ctx context.Context, encounterID int64) ([]*model.EncounterItem, error)
	SheetItemsFunc      func(ctx context.Context, encounterID int64) (map[model.ItemType]model.Payload, error)

	UpsertCallCount int32
}

func (m *MockEncounterItemRepository) Upsert(ctx context.Context, encounterID int64, itemType model.ItemType, payload model.Payload, summary *string) (*model.EncounterItem, error) {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, encounterID, itemType, payload, summary)
	}
	return nil, errNotImplemented
}

func (m *MockEncounterItemRepository) ListByEncounter(ctx context.Context, encounterID int64) ([]*model.EncounterItem, error) {
	if m.ListByEncounterFunc != nil {
		return m.ListByEncounterFunc(ctx, encounterID)
	}
	return nil, errNotImplemented
}

func (m *MockEncounterItemRepository) SheetItems(ctx context.Context, encounterID int64) (map[model.ItemType]model.Payload, error) {
	if m.SheetItemsFunc != nil {
		return m.SheetItemsFunc(ctx, encounterID)
	}
	return nil, errNotImplemented
}

var _ repository.ExportRepository = (*MockExportRepository)(nil)

type MockExportRepository struct {
	GetPatientExportBundleFunc func(ctx context.Context, patientID int64) (*model.ExportBundle, error)
}

func (m *MockExportRepository) GetPatientExportBundle(ctx context.Context, patientID int64) (*model.ExportBundle, error) {
	if m.GetPatientExportBundleFunc != nil {
		return m.GetPatientExportBundleFunc(ctx, patientID)
	}
	return nil, errNotImplemented
}
