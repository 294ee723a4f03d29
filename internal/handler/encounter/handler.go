package encounter

import (
	"github.com/gin-gonic/gin"

	"github.com/fajrglobal/clinic-api/internal/handler"
	"github.com/fajrglobal/clinic-api/internal/model"
	encounterService "github.com/fajrglobal/clinic-api/internal/service/encounter"
	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
	"github.com/fajrglobal/clinic-api/pkg/httputil"
	"github.com/fajrglobal/clinic-api/pkg/validator"
)

type Handler struct {
	service encounterService.EncounterServicer
}

func NewHandler(service encounterService.EncounterServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:id/encounters", h.CreateEncounter)

	encounters := r.Group("/encounters")
	{
		encounters.GET("/:id/sheet", h.GetSheet)
		encounters.PUT("/:id/items/:item_type", h.UpsertItem)
	}
}

func (h *Handler) CreateEncounter(c *gin.Context) {
	patientID, err := handler.IDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.CreateEncounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequest(validator.Message(err), err))
		return
	}

	encounter, err := h.service.CreateEncounter(c.Request.Context(), patientID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, encounter)
}

func (h *Handler) GetSheet(c *gin.Context) {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	sheet, err := h.service.GetSheet(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, sheet)
}

// UpsertItem replaces the encounter's item of the given type, creating it on first write.
func (h *Handler) UpsertItem(c *gin.Context) {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequest(validator.Message(err), err))
		return
	}

	item, err := h.service.UpsertItem(c.Request.Context(), id, c.Param("item_type"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, item)
}
