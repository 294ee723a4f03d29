package export

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	workbook "github.com/fajrglobal/clinic-api/internal/export"
	"github.com/fajrglobal/clinic-api/internal/handler"
	exportService "github.com/fajrglobal/clinic-api/internal/service/export"
)

type Handler struct {
	service exportService.ExportServicer
}

func NewHandler(service exportService.ExportServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients/:id/export.xlsx", h.ExportPatient)
}

// ExportPatient streams the patient's workbook. The workbook is built in
// memory first so a failure still produces a JSON error response.
func (h *Handler) ExportPatient(c *gin.Context) {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.WritePatientWorkbook(c.Request.Context(), id, &buf); err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="patient_%d_export.xlsx"`, id))
	c.Data(http.StatusOK, workbook.ContentType, buf.Bytes())
}
