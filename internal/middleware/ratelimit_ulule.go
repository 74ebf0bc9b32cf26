package middleware

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"

	"github.com/benvon/smart-connections/internal/request"
)

// rateLimitKey buckets authenticated requests per user and anonymous ones per client IP
func rateLimitKey(r *http.Request) string {
	if user := request.UserFromContext(r); user != nil {
		return "user:" + user.ID.String()
	}
	return "ip:" + request.ClientIP(r)
}

func newLimiterHandler(instance *limiter.Limiter, next http.Handler) http.Handler {
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(rateLimitKey))
	return mw.Handler(next)
}
