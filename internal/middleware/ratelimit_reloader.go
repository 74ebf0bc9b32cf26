package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/models"
)

// RatelimitConfigStore loads and seeds the persisted rate
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

type activeLimit struct {
	rate    string
	limiter *limiter.Limiter
}

// RateLimitReloader applies the stored rate, re-reading it every interval.
// Routers guarded by the same reloader share counters.
type RateLimitReloader struct {
	store       limiter.Store
	repo        RatelimitConfigStore
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	active      atomic.Pointer[activeLimit]
}

// NewRateLimitReloader creates a Redis-backed reloader and loads the current rate
func NewRateLimitReloader(redisClient *redis.Client, repo RatelimitConfigStore, defaultRate string, log *zap.Logger, reloadInterval time.Duration) (*RateLimitReloader, error) {
	store, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "ratelimit"})
	if err != nil {
		return nil, err
	}
	return newRateLimitReloader(store, repo, defaultRate, log, reloadInterval), nil
}

func newRateLimitReloader(store limiter.Store, repo RatelimitConfigStore, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = models.DefaultRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
	r.load(context.Background())
	return r
}

// Middleware limits next with whichever rate is active when each request arrives
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			a := r.active.Load()
			if a == nil {
				next.ServeHTTP(w, req)
				return
			}
			newLimiterHandler(a.limiter, next).ServeHTTP(w, req)
		})
	}
}

// Start reloads the rate every interval until ctx is done
func (r *RateLimitReloader) Start(ctx context.Context) {
	runEvery(ctx, r.interval, r.load)
}

// Rate returns the active rate in limiter notation, e.g. "5-S"
func (r *RateLimitReloader) Rate() string {
	if a := r.active.Load(); a != nil {
		return a.rate
	}
	return ""
}

// storedRate returns the configured rate, seeding the default when none is stored
func (r *RateLimitReloader) storedRate(ctx context.Context) string {
	cfg, err := r.repo.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
	case cfg != nil && cfg.Rate != "":
		return cfg.Rate
	default:
		if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
			r.log.Error("failed_to_save_default_ratelimit_config", zap.Error(err), zap.String("default_rate", r.defaultRate))
		}
	}
	return r.defaultRate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	formatted := r.storedRate(ctx)
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", formatted),
			zap.String("default_rate", r.defaultRate),
		)
		formatted = r.defaultRate
		if rate, err = limiter.NewRateFromFormatted(formatted); err != nil {
			r.log.Error("failed_to_parse_default_rate_limit", zap.Error(err), zap.String("default_rate", r.defaultRate))
			return
		}
	}

	if cur := r.active.Load(); cur != nil && cur.rate == formatted {
		return
	}
	// counters live in the shared store and survive a rate change
	prev := r.active.Swap(&activeLimit{rate: formatted, limiter: limiter.New(r.store, rate)})
	if prev != nil {
		r.log.Info("ratelimit_config_reloaded", zap.String("from", prev.rate), zap.String("to", formatted))
	}
}
