package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/hotelops-backend/api/validators"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
)

type contextKey string

const (
	ctxOperator contextKey = "operator"

	operatorHeader    = "X-Operator"
	maxOperatorLength = 64
)

// OperatorFromContext returns the front-desk or housekeeping operator that
// issued the request, or "" when the caller did not identify itself.
func OperatorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperator).(string); ok {
		return v
	}
	return ""
}

// WithOperator injects the operator name into the context.
func WithOperator(ctx context.Context, operator string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOperator, operator)
}

// Operator copies the X-Operator header into the request context and the
// log fields. The header is informational; there is no login.
func Operator(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator := validators.SanitizeString(r.Header.Get(operatorHeader), maxOperatorLength)
			if operator == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithOperator(r.Context(), operator)
			if logg != nil {
				ctx = logg.WithOperator(ctx, operator)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
