package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/models"
)

// CorsConfigSource loads the persisted CORS settings. A nil config means none is stored.
type CorsConfigSource interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// corsPolicy is the effective policy; a reload that yields an equal policy keeps the current handler.
type corsPolicy struct {
	origins          []string
	allowCredentials bool
	maxAge           int
}

func (p corsPolicy) equal(o corsPolicy) bool {
	return p.allowCredentials == o.allowCredentials && p.maxAge == o.maxAge && slices.Equal(p.origins, o.origins)
}

type corsState struct {
	policy  corsPolicy
	handler http.Handler
}

// CORSReloader serves requests through rs/cors, rebuilding the policy when the stored config changes.
type CORSReloader struct {
	next     http.Handler
	repo     CorsConfigSource
	fallback corsPolicy
	log      *zap.Logger
	interval time.Duration
	state    atomic.Pointer[corsState]
}

// NewCORSReloader creates the middleware. frontendURL is used whenever no stored config can be read.
func NewCORSReloader(repo CorsConfigSource, frontendURL string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &CORSReloader{
		repo:     repo,
		fallback: corsPolicy{origins: FallbackOrigins(strings.TrimSpace(frontendURL)), allowCredentials: true, maxAge: defaultCORSMaxAge},
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware wraps next and loads the initial policy
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.load(context.Background())
		return r
	}
}

// Start reloads the policy every interval until ctx is done. Call after Middleware.
func (r *CORSReloader) Start(ctx context.Context) {
	runEvery(ctx, r.interval, r.load)
}

func (r *CORSReloader) policy(ctx context.Context) corsPolicy {
	cfg, err := r.repo.Get(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
		return r.fallback
	}
	if cfg == nil {
		return r.fallback
	}
	return corsPolicy{origins: cfg.Origins(), allowCredentials: cfg.AllowCredentials, maxAge: cfg.MaxAge}
}

func (r *CORSReloader) load(ctx context.Context) {
	if r.next == nil {
		return
	}
	p := r.policy(ctx)
	if cur := r.state.Load(); cur != nil && cur.policy.equal(p) {
		return
	}

	h := cors.New(corsOptions(p.origins, p.allowCredentials, p.maxAge)).Handler(r.next)
	if r.state.Swap(&corsState{policy: p, handler: h}) != nil {
		r.log.Info("cors_config_reloaded", zap.Strings("origins", p.origins), zap.Bool("allow_credentials", p.allowCredentials))
	}
}

// ServeHTTP implements http.Handler.
func (r *CORSReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if s := r.state.Load(); s != nil {
		s.handler.ServeHTTP(w, req)
		return
	}
	if r.next != nil {
		r.next.ServeHTTP(w, req)
	}
}
