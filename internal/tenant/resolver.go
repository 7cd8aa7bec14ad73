package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

type childLister interface {
	ListChildIDs(ctx context.Context, companyID string) ([]string, error)
}

type cacheObserver interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// Resolver computes the tenant scope for a principal: the principal's own
// company plus its direct children. The hierarchy check is deliberately a
// single level; grandchildren are excluded.
type Resolver struct {
	companies childLister
	cache     *redis.Client
	ttl       time.Duration
	logger    *zap.Logger
	metrics   cacheObserver
}

// NewResolver constructs a Resolver. The cache client is optional; when nil
// every resolution hits the database.
func NewResolver(companies childLister, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{companies: companies, cache: cache, ttl: ttl, logger: logger}
}

// SetMetrics attaches an optional cache instrumentation sink.
func (r *Resolver) SetMetrics(m cacheObserver) {
	r.metrics = m
}

// Resolve returns the scope for the given principal. Super-admins get the
// unbounded scope; guests get the empty scope.
func (r *Resolver) Resolve(ctx context.Context, p models.Principal) (Scope, error) {
	if p.Role == models.RoleSuperAdmin {
		return AllCompanies(), nil
	}
	if p.IsGuest() || p.CompanyID == "" {
		return Companies(), nil
	}

	if children, ok := r.cachedChildren(ctx, p.CompanyID); ok {
		return Companies(append(children, p.CompanyID)...), nil
	}

	children, err := r.companies.ListChildIDs(ctx, p.CompanyID)
	if err != nil {
		return Scope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve tenant scope")
	}

	r.storeChildren(ctx, p.CompanyID, children)

	return Companies(append(children, p.CompanyID)...), nil
}

// Invalidate drops the cached child set for a company. Called by the company
// service whenever the hierarchy changes.
func (r *Resolver) Invalidate(ctx context.Context, companyID string) {
	if r.cache == nil || companyID == "" {
		return
	}
	if err := r.cache.Del(ctx, childrenKey(companyID)).Err(); err != nil {
		r.logger.Warn("tenant scope cache invalidation failed", zap.String("company_id", companyID), zap.Error(err))
	}
}

func (r *Resolver) cachedChildren(ctx context.Context, companyID string) ([]string, bool) {
	if r.cache == nil {
		return nil, false
	}
	start := time.Now()
	raw, err := r.cache.Get(ctx, childrenKey(companyID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("tenant scope cache read failed", zap.String("company_id", companyID), zap.Error(err))
		}
		r.observe(false, start)
		return nil, false
	}
	var children []string
	if err := json.Unmarshal(raw, &children); err != nil {
		r.logger.Warn("tenant scope cache entry corrupt", zap.String("company_id", companyID), zap.Error(err))
		r.observe(false, start)
		return nil, false
	}
	r.observe(true, start)
	return children, true
}

func (r *Resolver) observe(hit bool, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordCacheOperation(hit, time.Since(start))
	}
}

func (r *Resolver) storeChildren(ctx context.Context, companyID string, children []string) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(children)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, childrenKey(companyID), raw, r.ttl).Err(); err != nil {
		r.logger.Warn("tenant scope cache write failed", zap.String("company_id", companyID), zap.Error(err))
	}
}

func childrenKey(companyID string) string {
	return fmt.Sprintf("tenant:children:%s", companyID)
}
