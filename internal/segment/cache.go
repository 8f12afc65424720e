package segment

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/logger"
	"github.com/ecg-pomodoro/backend/pkg/redis"
)

// CachedProcessor memoizes segment features in Redis.
// Cache errors are logged and never fail the request.
type CachedProcessor struct {
	next   contracts.SegmentProcessor
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProcessor wraps next with a feature cache
func NewCachedProcessor(next contracts.SegmentProcessor, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProcessor {
	return &CachedProcessor{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithModule("feature-cache"),
	}
}

// Process returns a cached feature when the same samples were seen before
func (p *CachedProcessor) Process(ctx context.Context, seg *contracts.RawSegment) (*contracts.SegmentFeature, error) {
	if seg == nil || !p.cache.Enabled() {
		return p.next.Process(ctx, seg)
	}

	key := redis.FeatureKey(seg.SegmentID, Digest(seg))

	var cached contracts.SegmentFeature
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Feature cache read failed")
	}
	if found {
		p.logger.WithField("segment_id", seg.SegmentID).Debug("Feature cache hit")
		return &cached, nil
	}

	feature, err := p.next.Process(ctx, seg)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, feature, p.ttl); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Feature cache write failed")
	}
	return feature, nil
}

// Digest is a sha256 over sampling rate, shape and sample bits
func Digest(seg *contracts.RawSegment) string {
	h := sha256.New()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(seg.SamplingRateHz))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(len(seg.Samples)))
	h.Write(buf[:])

	for _, row := range seg.Samples {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(row)))
		h.Write(buf[:])
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
