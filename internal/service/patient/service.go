package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fajrglobal/clinic-api/internal/model"
	"github.com/fajrglobal/clinic-api/internal/repository"
	"github.com/fajrglobal/clinic-api/internal/service"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
)

type PatientServicer interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	SearchPatients(ctx context.Context, query string) ([]*model.Patient, error)
}

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	in := req.ToNewPatient()
	if err := s.validatePatient(in); err != nil {
		return nil, apperrors.NewBadRequest(err.Error(), err)
	}

	patient, err := s.repo.Create(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentifier) {
			return nil, apperrors.NewConflict("Identifier already exists", err)
		}
		return nil, service.StoreFailure(err)
	}

	log.Ctx(ctx).Info().
		Int64("patient_id", patient.ID).
		Bool("with_identifier", in.NationalID != nil).
		Msg("patient created")

	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StoreFailure(err)
	}
	if patient == nil {
		return nil, apperrors.NewNotFound("Patient", nil)
	}
	return patient, nil
}

// SearchPatients returns name matches followed by identifier matches. An
// empty query matches every patient.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]*model.Patient, error) {
	patients, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, service.StoreFailure(err)
	}
	return patients, nil
}

func (s *Service) validatePatient(in model.NewPatient) error {
	if strings.TrimSpace(in.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if !in.Sex.Valid() {
		return fmt.Errorf("invalid sex %q", in.Sex)
	}
	if in.NationalID != nil && strings.TrimSpace(*in.NationalID) == "" {
		return fmt.Errorf("national_id must not be blank")
	}
	return nil
}
