package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge-api/internal/dto"
	apierrors "github.com/taskforge/taskforge-api/internal/errors"
	"github.com/taskforge/taskforge-api/internal/services"
	"github.com/taskforge/taskforge-api/internal/utils"
)

// ActivityHandler exposes the audit trail (admin only, enforced by the route).
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// ListActivity returns audit entries newest first
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	entries, total, err := h.activityService.ListEntries(params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityListResponse(entries, params.Page, params.Limit, total))
}
