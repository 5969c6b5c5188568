package completion

import (
	"net/http"

	"resellops/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type listHandler struct {
	repo Repository
}

// list exposes the derived snapshots read-only. They are never written
// through the API.
func (h *listHandler) list(c *gin.Context) {
	taskID, _ := snowflake.ParseString(c.Query("taskId"))
	listerID, _ := snowflake.ParseString(c.Query("listerId"))

	records, err := h.repo.List(c.Request.Context(), ListFilter{
		TaskID:   taskID,
		ListerID: listerID,
	})
	if err != nil {
		_ = c.Error(errutil.Internal("failed to list listing completions", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusOK, records)
}
