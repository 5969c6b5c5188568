package catalog

import (
	"net/http"

	"resellops/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Service) createPlatform(c *gin.Context) {
	var in CreatePlatformInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", errutil.WithErr(err)))
		return
	}
	record, err := s.CreatePlatform(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) listPlatforms(c *gin.Context) {
	records, err := s.ListPlatforms(c.Request.Context(), PlatformKind(c.Query("kind")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) deletePlatform(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.DeletePlatform(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) createStore(c *gin.Context) {
	var in CreateStoreInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", errutil.WithErr(err)))
		return
	}
	record, err := s.CreateStore(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) listStores(c *gin.Context) {
	platformID, _ := snowflake.ParseString(c.Query("platformId"))
	records, err := s.ListStores(c.Request.Context(), platformID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) deleteStore(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.DeleteStore(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) createCategory(c *gin.Context) {
	var in CreateCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", errutil.WithErr(err)))
		return
	}
	record, err := s.CreateCategory(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) listCategories(c *gin.Context) {
	records, err := s.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) deleteCategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.DeleteCategory(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) createSubcategory(c *gin.Context) {
	var in CreateSubcategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", errutil.WithErr(err)))
		return
	}
	record, err := s.CreateSubcategory(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) listSubcategories(c *gin.Context) {
	categoryID, _ := snowflake.ParseString(c.Query("categoryId"))
	records, err := s.ListSubcategories(c.Request.Context(), categoryID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) deleteSubcategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.DeleteSubcategory(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) createRange(c *gin.Context) {
	var in CreateRangeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid request body", errutil.WithErr(err)))
		return
	}
	record, err := s.CreateRange(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Service) listRanges(c *gin.Context) {
	categoryID, _ := snowflake.ParseString(c.Query("categoryId"))
	records, err := s.ListRanges(c.Request.Context(), categoryID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Service) deleteRange(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.DeleteRange(c.Request.Context(), id); err != nil {
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
