package analytics

import (
	"net/http"

	"resellops/pkg/errutil"

	"github.com/gin-gonic/gin"
)

func (s *Service) daily(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	rows, err := s.Daily(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Service) listerMatrix(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	rows, err := s.ListerMatrix(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Service) stockLedger(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	rows, err := s.StockLedger(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func bindFilter(c *gin.Context) (Filter, bool) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid query parameters", errutil.WithErr(err)))
		return f, false
	}
	return f, true
}
