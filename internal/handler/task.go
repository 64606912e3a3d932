package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"EstateLink/internal/model"
	"EstateLink/internal/service"
	"EstateLink/pkg/response"
)

// ListTasks returns tasks filtered by status and type.
// GET /v1/tasks
func ListTasks(ctx context.Context, c *app.RequestContext) {
	var query model.TaskQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	items, err := service.Task().List(ctx, query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{
		"count": len(items),
	})
}

// GetTask returns one task with payload and result.
// GET /v1/tasks/:task_code
func GetTask(ctx context.Context, c *app.RequestContext) {
	code, ok := parseTaskCode(ctx, c)
	if !ok {
		return
	}

	detail, err := service.Task().Get(ctx, code)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, detail)
}

// CreateTask creates a manually authored task.
// POST /v1/tasks
func CreateTask(ctx context.Context, c *app.RequestContext) {
	var req model.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		response.BindError(ctx, c, err)
		return
	}

	detail, err := service.Task().Create(ctx, req, scheduledAt)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, detail)
}

// CancelTask cancels a pending task.
// POST /v1/tasks/:task_code/cancel
func CancelTask(ctx context.Context, c *app.RequestContext) {
	code, ok := parseTaskCode(ctx, c)
	if !ok {
		return
	}

	detail, err := service.Task().Cancel(ctx, code)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, detail)
}

// GetTaskStats returns per-status and per-type counts.
// GET /v1/tasks/stats
func GetTaskStats(ctx context.Context, c *app.RequestContext) {
	stats, err := service.Task().Stats(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, stats)
}

func parseTaskCode(ctx context.Context, c *app.RequestContext) (int64, bool) {
	raw := c.Param("task_code")
	code, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BindError(ctx, c, err)
		return 0, false
	}
	return code, true
}
