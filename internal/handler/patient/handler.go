package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/fajrglobal/clinic-api/internal/handler"
	"github.com/fajrglobal/clinic-api/internal/model"
	patientService "github.com/fajrglobal/clinic-api/internal/service/patient"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
	"github.com/fajrglobal/clinic-api/pkg/httputil"
	"github.com/fajrglobal/clinic-api/pkg/validator"
)

type Handler struct {
	service patientService.PatientServicer
}

func NewHandler(service patientService.PatientServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("/search", h.SearchPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequest(validator.Message(err), err))
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) SearchPatients(c *gin.Context) {
	patients, err := h.service.SearchPatients(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}
