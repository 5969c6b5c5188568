package task

import (
	"net/http"

	"resellops/pkg/auth"
	"resellops/pkg/db/pagination"
	"resellops/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Service) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", errutil.WithErr(err)))
		return
	}

	principal, ok := auth.FromContext(c.Request.Context())
	if !ok {
		_ = c.Error(errutil.Unauthorized("no authenticated principal"))
		return
	}
	in.CreatedBy = principal.ID

	record, err := s.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) list(c *gin.Context) {
	var f ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid query parameters", errutil.WithErr(err)))
		return
	}
	if err := c.ShouldBindQuery(&f.Page); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid paging parameters", errutil.WithErr(err)))
		return
	}

	records, total, err := s.List(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if f.Page.Paged() {
		c.JSON(http.StatusOK, pagination.NewEnvelope(records, total, f.Page))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	record, err := s.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", errutil.WithErr(err)))
		return
	}
	record, err := s.Update(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) remove(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, errutil.ValidationFailed("invalid id", errutil.WithErr(err))
	}
	return id, nil
}
