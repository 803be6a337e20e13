package access

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/metrics"
)

// Decision is the usage collaborator's answer for one request.
type Decision struct {
	Allowed   bool
	Remaining int
}

// QuotaChecker is consulted before every evaluation.
type QuotaChecker interface {
	Check(ctx context.Context, s Subject) Decision
}

// AllowAll never denies.
type AllowAll struct{}

// Check implements QuotaChecker.
func (AllowAll) Check(context.Context, Subject) Decision {
	return Decision{Allowed: true, Remaining: -1}
}

// TierLimits maps a tier to its per-minute allowance. The "default" entry
// applies to unknown tiers; a missing or non-positive allowance means unlimited.
type TierLimits map[string]int

func (l TierLimits) perMinute(tier string) int {
	if n, ok := l[tier]; ok {
		return n
	}
	return l[DefaultTier]
}

// TokenBucket keeps one limiter per subject. Idle limiters expire so the map
// does not grow without bound.
type TokenBucket struct {
	limits   TierLimits
	limiters *gocache.Cache
	audit    *logger.AuditLogger
	now      func() time.Time
}

// NewTokenBucket creates a per-subject token bucket checker.
func NewTokenBucket(limits TierLimits, idle time.Duration, log *logrus.Logger) *TokenBucket {
	if log == nil {
		log = logger.Discard()
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &TokenBucket{
		limits:   limits,
		limiters: gocache.New(idle, 2*idle),
		audit:    logger.NewAuditLogger(log),
		now:      time.Now,
	}
}

// Check implements QuotaChecker. Anonymous subjects share one bucket.
func (tb *TokenBucket) Check(_ context.Context, s Subject) Decision {
	perMinute := tb.limits.perMinute(s.Tier)
	if perMinute <= 0 {
		return Decision{Allowed: true, Remaining: -1}
	}

	lim := tb.limiter(s, perMinute)
	now := tb.now()
	if !lim.AllowN(now, 1) {
		metrics.RecordQuotaDenial()
		tb.audit.LogQuotaDenied(s.ID, s.Tier, 0)
		return Decision{Allowed: false, Remaining: 0}
	}

	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining}
}

func (tb *TokenBucket) limiter(s Subject, perMinute int) *rate.Limiter {
	key := s.Tier + "|" + s.ID
	if v, ok := tb.limiters.Get(key); ok {
		tb.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	if err := tb.limiters.Add(key, lim, gocache.DefaultExpiration); err != nil {
		// lost a race with a concurrent request for the same subject
		if v, ok := tb.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}
