package testutil

import (
	"context"
	"net/http"
	"time"

	"bloodlink/internal/platform/middleware"
	"bloodlink/pkg/requestcontext"
)

// At returns a background context whose request clock reads now.
func At(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}

// WithOperator marks req as authenticated for operator, as RequireOperator
// would.
func WithOperator(req *http.Request, operator string) *http.Request {
	return req.WithContext(middleware.WithOperator(req.Context(), operator))
}
