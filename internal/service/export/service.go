package export

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/fajrglobal/clinic-api/internal/export"
	"github.com/fajrglobal/clinic-api/internal/repository"
	"github.com/fajrglobal/clinic-api/internal/service"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
	"github.com/fajrglobal/clinic-api/pkg/metrics"
)

type ExportServicer interface {
	PatientSheets(ctx context.Context, patientID int64) ([]export.Sheet, error)
	WritePatientWorkbook(ctx context.Context, patientID int64, w io.Writer) error
}

type Service struct {
	repo    repository.ExportRepository
	metrics *metrics.Metrics
}

func NewService(repo repository.ExportRepository, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		metrics: m,
	}
}

// PatientSheets assembles the export tables for one patient.
func (s *Service) PatientSheets(ctx context.Context, patientID int64) ([]export.Sheet, error) {
	bundle, err := s.repo.GetPatientExportBundle(ctx, patientID)
	if err != nil {
		return nil, service.StoreFailure(err)
	}
	if bundle == nil {
		return nil, apperrors.NewNotFound("Patient", nil)
	}

	sheets, err := export.Assemble(bundle)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return sheets, nil
}

// WritePatientWorkbook encodes the patient's export as .xlsx into w. Nothing
// is written to w when the patient does not exist.
func (s *Service) WritePatientWorkbook(ctx context.Context, patientID int64, w io.Writer) error {
	sheets, err := s.PatientSheets(ctx, patientID)
	if err != nil {
		return err
	}

	if err := export.WriteXLSX(w, sheets); err != nil {
		return apperrors.NewInternal(err)
	}

	s.metrics.ObserveExport()
	log.Ctx(ctx).Info().Int64("patient_id", patientID).Msg("patient export written")
	return nil
}
