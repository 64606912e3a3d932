package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"EstateLink/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
)

var (
	authMiddleware *jwt.HertzJWTMiddleware
)

func initAuthMiddleware() error {
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	// Reuse the shared generator settings and add the HTTP-facing pieces.
	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "EstateLink Admin API",
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		MaxRefresh:  sharedGenerator.MaxRefresh,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			aid, ok := claims[IdentityKey].(string)
			if !ok {
				if aidFloat, ok := claims[IdentityKey].(float64); ok {
					aid = fmt.Sprintf("%.0f", aidFloat)
				} else {
					return nil
				}
			}
			return aid
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "UNAUTHORIZED",
					"message": message,
				},
			})
		},

		TokenLookup:   "header: Authorization",
		TokenHeadName: "Bearer",
	})
	if err != nil {
		return fmt.Errorf("failed to build auth middleware: %w", err)
	}

	authMiddleware = mw
	return nil
}

func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// GetAdminID returns the authenticated admin ID from the request context.
func GetAdminID(ctx context.Context, c *app.RequestContext) (string, bool) {
	adminID, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := adminID.(string)
	if !ok {
		return "", false
	}

	return id, true
}
