package encounter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fajrglobal/clinic-api/internal/model"
	"github.com/fajrglobal/clinic-api/internal/repository/repotest"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
	"github.com/fajrglobal/clinic-api/pkg/metrics"
)

type fixture struct {
	patients   *repotest.MockPatientRepository
	encounters *repotest.MockEncounterRepository
	items      *repotest.MockEncounterItemRepository
	metrics    *metrics.Metrics
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		patients: &repotest.MockPatientRepository{
			GetFunc: func(ctx context.Context, id int64) (*model.Patient, error) {
				if id == 1 {
					return &model.Patient{ID: 1}, nil
				}
				return nil, nil
			},
		},
		encounters: &repotest.MockEncounterRepository{
			GetFunc: func(ctx context.Context, id int64) (*model.Encounter, error) {
				if id == 10 {
					return &model.Encounter{ID: 10, PatientID: 1}, nil
				}
				return nil, nil
			},
		},
		items:   &repotest.MockEncounterItemRepository{},
		metrics: metrics.NewMetrics("test", prometheus.NewRegistry()),
	}
	f.svc = NewService(f.patients, f.encounters, f.items, f.metrics)
	return f
}

func appErrCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected *AppError, got %T", err)
	return appErr.Code
}

func TestCreateEncounter(t *testing.T) {
	f := newFixture()
	var got model.NewEncounter
	f.encounters.CreateFunc = func(ctx context.Context, in model.NewEncounter) (*model.Encounter, error) {
		got = in
		return &model.Encounter{ID: 10, PatientID: in.PatientID, PregnancyStatus: in.PregnancyStatus}, nil
	}

	weight := decimal.RequireFromString("70.256")
	e, err := f.svc.CreateEncounter(context.Background(), 1, &model.CreateEncounterRequest{WeightKg: &weight})
	require.NoError(t, err)
	assert.Equal(t, int64(10), e.ID)
	assert.Equal(t, int64(1), got.PatientID)
	assert.Equal(t, model.PregnancyStatusUnknown, got.PregnancyStatus)
	assert.Nil(t, got.EncounterDatetime)
	require.NotNil(t, got.WeightKg)
	assert.Equal(t, "70.26", got.WeightKg.StringFixed(2))
}

func TestCreateEncounter_PassesDatetime(t *testing.T) {
	f := newFixture()
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	f.encounters.CreateFunc = func(ctx context.Context, in model.NewEncounter) (*model.Encounter, error) {
		require.NotNil(t, in.EncounterDatetime)
		assert.True(t, at.Equal(*in.EncounterDatetime))
		return &model.Encounter{ID: 11}, nil
	}

	_, err := f.svc.CreateEncounter(context.Background(), 1, &model.CreateEncounterRequest{
		EncounterDatetime: &model.Datetime{Time: at},
		PregnancyStatus:   model.PregnancyStatusPregnant,
	})
	require.NoError(t, err)
}

func TestCreateEncounter_PatientMissing(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateEncounter(context.Background(), 2, &model.CreateEncounterRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, appErrCode(t, err))
	assert.Zero(t, f.encounters.CreateCallCount)
}

func TestCreateEncounter_Validation(t *testing.T) {
	tooHeavy := decimal.RequireFromString("1000")
	negative := decimal.RequireFromString("-1")

	tests := []struct {
		name string
		req  model.CreateEncounterRequest
	}{
		{"invalid pregnancy status", model.CreateEncounterRequest{PregnancyStatus: "maybe"}},
		{"weight above range", model.CreateEncounterRequest{WeightKg: &tooHeavy}},
		{"negative weight", model.CreateEncounterRequest{WeightKg: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.CreateEncounter(context.Background(), 1, &tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrBadRequest, appErrCode(t, err))
			assert.Zero(t, f.encounters.CreateCallCount)
		})
	}
}

func TestGetSheet(t *testing.T) {
	f := newFixture()
	f.items.SheetItemsFunc = func(ctx context.Context, encounterID int64) (map[model.ItemType]model.Payload, error) {
		return map[model.ItemType]model.Payload{
			model.ItemTypeVitals: model.Payload(`{"hr":82}`),
		}, nil
	}

	sheet, err := f.svc.GetSheet(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), sheet.Encounter.ID)
	assert.Equal(t, `{"hr":82}`, string(sheet.Items[model.ItemTypeVitals]))

	_, err = f.svc.GetSheet(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, appErrCode(t, err))
	assert.Equal(t, "Encounter not found", err.Error())
}

func TestUpsertItem(t *testing.T) {
	f := newFixture()
	f.items.UpsertFunc = func(ctx context.Context, encounterID int64, itemType model.ItemType, payload model.Payload, summary *string) (*model.EncounterItem, error) {
		return &model.EncounterItem{
			ID:          5,
			EncounterID: encounterID,
			ItemType:    itemType,
			PayloadJSON: payload,
			SummaryText: summary,
		}, nil
	}

	summary := "HR 80"
	item, err := f.svc.UpsertItem(context.Background(), 10, "VITALS", &model.UpsertItemRequest{
		PayloadJSON: model.Payload(`{"hr":80}`),
		SummaryText: &summary,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemTypeVitals, item.ItemType)
	assert.Equal(t, "HR 80", *item.SummaryText)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ItemUpserts.WithLabelValues("VITALS")))
}

func TestUpsertItem_EmptyPayloadBecomesObject(t *testing.T) {
	f := newFixture()
	f.items.UpsertFunc = func(ctx context.Context, encounterID int64, itemType model.ItemType, payload model.Payload, summary *string) (*model.EncounterItem, error) {
		assert.Equal(t, "{}", string(payload))
		return &model.EncounterItem{ID: 1, PayloadJSON: payload}, nil
	}

	_, err := f.svc.UpsertItem(context.Background(), 10, "NOTE", &model.UpsertItemRequest{})
	require.NoError(t, err)
}

func TestUpsertItem_InvalidType(t *testing.T) {
	for _, itemType := range []string{"vitals", "LAB", ""} {
		t.Run(itemType, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.UpsertItem(context.Background(), 10, itemType, &model.UpsertItemRequest{})
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrBadRequest, appErrCode(t, err))
			assert.Equal(t, "Invalid item_type", err.(*apperrors.AppError).Message)
			assert.Zero(t, f.items.UpsertCallCount)
		})
	}
}

func TestUpsertItem_EncounterMissing(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpsertItem(context.Background(), 99, "VITALS", &model.UpsertItemRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, appErrCode(t, err))
	assert.Zero(t, f.items.UpsertCallCount)
}
