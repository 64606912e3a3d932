package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"EstateLink/internal/model"
	"EstateLink/internal/service"
	"EstateLink/pkg/response"
)

// Login exchanges the admin API key for a JWT pair.
// POST /v1/auth/login
func Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	pair, err := service.Auth().Login(ctx, req.AdminID, req.APIKey)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, pair)
}

// RefreshToken issues a new token pair from a refresh token.
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req model.RefreshRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	pair, err := service.Auth().Refresh(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, pair)
}
