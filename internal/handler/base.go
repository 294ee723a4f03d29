package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
)

// IDParam parses an integer route parameter.
func IDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequest("invalid "+name+": "+strconv.Quote(raw), err)
	}
	return id, nil
}
