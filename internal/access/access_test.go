package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-evaluator/internal/logger"
)

func TestSubjectRoundTrip(t *testing.T) {
	ctx := WithSubject(context.Background(), Subject{ID: "u-1", Tier: " PRO "})

	s, ok := SubjectFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", s.ID)
	assert.Equal(t, "pro", s.Tier)
}

func TestSubjectDefaultsTier(t *testing.T) {
	s, ok := SubjectFrom(WithSubject(context.Background(), Subject{ID: "u-1"}))
	require.True(t, ok)
	assert.Equal(t, DefaultTier, s.Tier)

	_, ok = SubjectFrom(context.Background())
	assert.False(t, ok)
}

func TestAllowAll(t *testing.T) {
	d := AllowAll{}.Check(context.Background(), Subject{})
	assert.True(t, d.Allowed)
}

func TestTokenBucketDeniesOverQuota(t *testing.T) {
	tb := NewTokenBucket(TierLimits{"default": 2, "pro": 5}, time.Minute, logger.Discard())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tb.now = func() time.Time { return fixed }

	free := Subject{ID: "u-1", Tier: DefaultTier}
	first := tb.Check(context.Background(), free)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	assert.True(t, tb.Check(context.Background(), free).Allowed)

	denied := tb.Check(context.Background(), free)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 0, denied.Remaining)

	// buckets are per subject
	assert.True(t, tb.Check(context.Background(), Subject{ID: "u-2", Tier: DefaultTier}).Allowed)
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(TierLimits{"default": 1}, time.Minute, logger.Discard())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tb.now = func() time.Time { return now }

	s := Subject{ID: "u-1", Tier: DefaultTier}
	assert.True(t, tb.Check(context.Background(), s).Allowed)
	assert.False(t, tb.Check(context.Background(), s).Allowed)

	now = now.Add(61 * time.Second)
	assert.True(t, tb.Check(context.Background(), s).Allowed)
}

func TestTokenBucketUnknownTierUsesDefault(t *testing.T) {
	tb := NewTokenBucket(TierLimits{"default": 1}, time.Minute, logger.Discard())
	s := Subject{ID: "u-1", Tier: "gold"}
	assert.True(t, tb.Check(context.Background(), s).Allowed)
	assert.False(t, tb.Check(context.Background(), s).Allowed)
}

func TestTokenBucketUnlimitedTier(t *testing.T) {
	tb := NewTokenBucket(TierLimits{"default": 1, "internal": 0}, time.Minute, logger.Discard())
	s := Subject{ID: "svc", Tier: "internal"}
	for i := 0; i < 10; i++ {
		assert.True(t, tb.Check(context.Background(), s).Allowed)
	}
}
