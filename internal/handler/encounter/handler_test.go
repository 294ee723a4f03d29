package encounter

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fajrglobal/clinic-api/internal/middleware"
	"github.com/fajrglobal/clinic-api/internal/model"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
)

type MockEncounterService struct {
	mock.Mock
}

func (m *MockEncounterService) CreateEncounter(ctx context.Context, patientID int64, req *model.CreateEncounterRequest) (*model.Encounter, error) {
	args := m.Called(ctx, patientID, req)
	if e, ok := args.Get(0).(*model.Encounter); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEncounterService) GetEncounter(ctx context.Context, id int64) (*model.Encounter, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*model.Encounter); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEncounterService) GetSheet(ctx context.Context, encounterID int64) (*model.EncounterSheet, error) {
	args := m.Called(ctx, encounterID)
	if s, ok := args.Get(0).(*model.EncounterSheet); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEncounterService) UpsertItem(ctx context.Context, encounterID int64, itemType string, req *model.UpsertItemRequest) (*model.EncounterItem, error) {
	args := m.Called(ctx, encounterID, itemType, req)
	if i, ok := args.Get(0).(*model.EncounterItem); ok {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

func setupRouter(t *testing.T, svc *MockEncounterService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidation())

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateEncounter(t *testing.T) {
	svc := new(MockEncounterService)
	svc.On("CreateEncounter", mock.Anything, int64(1), mock.MatchedBy(func(req *model.CreateEncounterRequest) bool {
		return req.PregnancyStatus == model.PregnancyStatusNotPregnant && req.WeightKg != nil && req.WeightKg.String() == "70.5"
	})).Return(&model.Encounter{ID: 5, PatientID: 1, PregnancyStatus: model.PregnancyStatusNotPregnant}, nil)

	r := setupRouter(t, svc)
	w := serve(r, http.MethodPost, "/api/patients/1/encounters", `{"pregnancy_status":"not_pregnant","weight_kg":70.5}`)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id":5`)
	svc.AssertExpectations(t)
}

func TestCreateEncounter_InvalidStatus(t *testing.T) {
	svc := new(MockEncounterService)
	r := setupRouter(t, svc)

	w := serve(r, http.MethodPost, "/api/patients/1/encounters", `{"pregnancy_status":"maybe"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"pregnancy_status has invalid value \"maybe\"","code":400}`, w.Body.String())
	svc.AssertNotCalled(t, "CreateEncounter", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateEncounter_DatetimeWithoutOffset(t *testing.T) {
	svc := new(MockEncounterService)
	svc.On("CreateEncounter", mock.Anything, int64(1), mock.MatchedBy(func(req *model.CreateEncounterRequest) bool {
		return req.EncounterDatetime != nil && req.EncounterDatetime.Equal(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	})).Return(&model.Encounter{ID: 5, PatientID: 1}, nil)

	r := setupRouter(t, svc)
	w := serve(r, http.MethodPost, "/api/patients/1/encounters", `{"encounter_datetime":"2024-06-01T08:00:00"}`)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCreateEncounter_EmptyBody(t *testing.T) {
	svc := new(MockEncounterService)
	r := setupRouter(t, svc)

	w := serve(r, http.MethodPost, "/api/patients/1/encounters", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"request body is required","code":400}`, w.Body.String())
	svc.AssertNotCalled(t, "CreateEncounter", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSheet(t *testing.T) {
	svc := new(MockEncounterService)
	svc.On("GetSheet", mock.Anything, int64(5)).Return(&model.EncounterSheet{
		Encounter: &model.Encounter{ID: 5, PatientID: 1, PregnancyStatus: model.PregnancyStatusUnknown},
		Items:     map[model.ItemType]model.Payload{model.ItemTypeNote: model.Payload(`{"text":"ok"}`)},
	}, nil)
	svc.On("GetSheet", mock.Anything, int64(6)).Return(nil, apperrors.NewNotFound("Encounter", nil))

	r := setupRouter(t, svc)

	w := serve(r, http.MethodGet, "/api/encounters/5/sheet", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":{"NOTE":{"text":"ok"}}`)

	w = serve(r, http.MethodGet, "/api/encounters/6/sheet", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Encounter not found","code":404}`, w.Body.String())
}

func TestUpsertItem(t *testing.T) {
	svc := new(MockEncounterService)
	svc.On("UpsertItem", mock.Anything, int64(5), "VITALS", mock.MatchedBy(func(req *model.UpsertItemRequest) bool {
		return string(req.PayloadJSON) == `{"hr":80,"bp":"120/80"}` && req.SummaryText == nil
	})).Return(&model.EncounterItem{ID: 9, EncounterID: 5, ItemType: model.ItemTypeVitals, PayloadJSON: model.Payload(`{"hr":80,"bp":"120/80"}`)}, nil)
	svc.On("UpsertItem", mock.Anything, int64(5), "LAB", mock.Anything).
		Return(nil, apperrors.NewBadRequest("Invalid item_type", nil))

	r := setupRouter(t, svc)

	w := serve(r, http.MethodPut, "/api/encounters/5/items/VITALS", `{"payload_json": {"hr": 80, "bp": "120/80"}}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"payload_json":{"hr":80,"bp":"120/80"}`)

	w = serve(r, http.MethodPut, "/api/encounters/5/items/LAB", `{"payload_json":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid item_type","code":400}`, w.Body.String())

	svc.AssertExpectations(t)
}

func TestUpsertItem_PayloadMustBeObject(t *testing.T) {
	svc := new(MockEncounterService)
	r := setupRouter(t, svc)

	w := serve(r, http.MethodPut, "/api/encounters/5/items/NOTE", `{"payload_json":"text"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UpsertItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
