package encounter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fajrglobal/clinic-api/internal/model"
	"github.com/fajrglobal/clinic-api/internal/repository"
	"github.com/fajrglobal/clinic-api/internal/service"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
	"github.com/fajrglobal/clinic-api/pkg/metrics"
)

type EncounterServicer interface {
	CreateEncounter(ctx context.Context, patientID int64, req *model.CreateEncounterRequest) (*model.Encounter, error)
	GetEncounter(ctx context.Context, id int64) (*model.Encounter, error)
	GetSheet(ctx context.Context, encounterID int64) (*model.EncounterSheet, error)
	UpsertItem(ctx context.Context, encounterID int64, itemType string, req *model.UpsertItemRequest) (*model.EncounterItem, error)
}

type Service struct {
	patients   repository.PatientRepository
	encounters repository.EncounterRepository
	items      repository.EncounterItemRepository
	metrics    *metrics.Metrics
}

func NewService(
	patients repository.PatientRepository,
	encounters repository.EncounterRepository,
	items repository.EncounterItemRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		patients:   patients,
		encounters: encounters,
		items:      items,
		metrics:    m,
	}
}

func (s *Service) CreateEncounter(ctx context.Context, patientID int64, req *model.CreateEncounterRequest) (*model.Encounter, error) {
	in := req.ToNewEncounter(patientID)
	if err := s.validateEncounter(&in); err != nil {
		return nil, apperrors.NewBadRequest(err.Error(), err)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, service.StoreFailure(err)
	}
	if patient == nil {
		return nil, apperrors.NewNotFound("Patient", nil)
	}

	encounter, err := s.encounters.Create(ctx, in)
	if err != nil {
		return nil, service.StoreFailure(err)
	}

	log.Ctx(ctx).Info().
		Int64("encounter_id", encounter.ID).
		Int64("patient_id", patientID).
		Msg("encounter created")

	return encounter, nil
}

func (s *Service) GetEncounter(ctx context.Context, id int64) (*model.Encounter, error) {
	encounter, err := s.encounters.Get(ctx, id)
	if err != nil {
		return nil, service.StoreFailure(err)
	}
	if encounter == nil {
		return nil, apperrors.NewNotFound("Encounter", nil)
	}
	return encounter, nil
}

// GetSheet returns the encounter with the current payload of each item type.
func (s *Service) GetSheet(ctx context.Context, encounterID int64) (*model.EncounterSheet, error) {
	encounter, err := s.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.SheetItems(ctx, encounterID)
	if err != nil {
		return nil, service.StoreFailure(err)
	}

	return &model.EncounterSheet{Encounter: encounter, Items: items}, nil
}

// UpsertItem replaces the item of the given type on the encounter, creating
// it on first write.
func (s *Service) UpsertItem(ctx context.Context, encounterID int64, itemType string, req *model.UpsertItemRequest) (*model.EncounterItem, error) {
	t, err := model.ParseItemType(itemType)
	if err != nil {
		return nil, apperrors.NewBadRequest("Invalid item_type", err)
	}

	if _, err := s.GetEncounter(ctx, encounterID); err != nil {
		return nil, err
	}

	payload := req.PayloadJSON
	if len(payload) == 0 {
		payload = model.Payload("{}")
	}

	item, err := s.items.Upsert(ctx, encounterID, t, payload, req.SummaryText)
	if err != nil {
		return nil, service.StoreFailure(err)
	}

	s.metrics.ObserveItemUpsert(string(t))
	log.Ctx(ctx).Debug().
		Int64("encounter_id", encounterID).
		Str("item_type", string(t)).
		Msg("encounter item saved")

	return item, nil
}

func (s *Service) validateEncounter(in *model.NewEncounter) error {
	if !in.PregnancyStatus.Valid() {
		return fmt.Errorf("invalid pregnancy_status %q", in.PregnancyStatus)
	}
	if in.WeightKg != nil {
		w := in.WeightKg.Round(2)
		if w.IsNegative() || w.GreaterThan(model.MaxWeightKg) {
			return fmt.Errorf("weight_kg must be between 0 and %s", model.MaxWeightKg.StringFixed(2))
		}
		in.WeightKg = &w
	}
	return nil
}
