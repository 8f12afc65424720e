package segment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/config"
	"github.com/ecg-pomodoro/backend/pkg/logger"
	"github.com/ecg-pomodoro/backend/pkg/redis"
)

type countingProcessor struct{ calls int }

func (p *countingProcessor) Process(_ context.Context, seg *contracts.RawSegment) (*contracts.SegmentFeature, error) {
	p.calls++
	return &contracts.SegmentFeature{SegmentID: seg.SegmentID}, nil
}

func TestCachedProcessor_DisabledDelegates(t *testing.T) {
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)

	next := &countingProcessor{}
	p := NewCachedProcessor(next, redis.NewCache(client, "ecg"), redis.TTLMedium, logger.Nop())

	seg := newSegment("c", 10, flat)
	for i := 0; i < 2; i++ {
		f, err := p.Process(context.Background(), seg)
		require.NoError(t, err)
		assert.Equal(t, "c", f.SegmentID)
	}
	assert.Equal(t, 2, next.calls)
}

func TestDigest(t *testing.T) {
	a := newSegment("d", 50, flat)
	b := newSegment("d", 50, flat)
	assert.Equal(t, Digest(a), Digest(b))
	assert.Len(t, Digest(a), 64)

	b.Samples[10][0] = 0.2
	assert.NotEqual(t, Digest(a), Digest(b))

	c := newSegment("d", 50, flat)
	c.SamplingRateHz = 500
	assert.NotEqual(t, Digest(a), Digest(c))
}
