package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	jwttoken "bloodlink/internal/jwt_token"
)

// OperatorValidator validates operator bearer tokens.
type OperatorValidator interface {
	ValidateToken(tokenString string) (*jwttoken.OperatorClaims, error)
}

type contextKeyOperator struct{}

// GetOperator returns the authenticated operator, or "".
func GetOperator(ctx context.Context) string {
	operator, ok := ctx.Value(contextKeyOperator{}).(string)
	if !ok {
		return ""
	}
	return operator
}

// WithOperator injects an operator into ctx.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, contextKeyOperator{}, operator)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireOperator rejects requests without a valid operator bearer token.
func RequireOperator(validator OperatorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized admin access - missing token",
					"request_id", requestID,
					"client_ip", GetClientIP(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized admin access - invalid token",
					"error", err,
					"request_id", requestID,
					"client_ip", GetClientIP(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOperator(ctx, claims.Operator)))
		})
	}
}
