package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"EstateLink/internal/model"
	"EstateLink/internal/service"
	"EstateLink/pkg/response"
)

// TriggerScan runs the contract scan on demand.
// POST /v1/jobs/scan
func TriggerScan(ctx context.Context, c *app.RequestContext) {
	var req model.JobRequest
	if len(c.Request.Body()) > 0 {
		if err := c.Bind(&req); err != nil {
			response.BindError(ctx, c, err)
			return
		}
	}

	report, err := service.Job().RunScan(ctx, req.DryRun)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, report)
}

// TriggerDispatch runs the due-task dispatch on demand.
// POST /v1/jobs/dispatch
func TriggerDispatch(ctx context.Context, c *app.RequestContext) {
	var req model.JobRequest
	if len(c.Request.Body()) > 0 {
		if err := c.Bind(&req); err != nil {
			response.BindError(ctx, c, err)
			return
		}
	}

	report, err := service.Job().RunDispatch(ctx, req.DryRun, req.Limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, report)
}
