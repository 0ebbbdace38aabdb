package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/cache"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/tracing"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/youtube"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

const archiveTimeout = 10 * time.Second

// Archive is a durable copy of fetched transcripts, keyed by video id
type Archive interface {
	Get(ctx context.Context, videoID string) (*models.Transcript, bool, error)
	Put(ctx context.Context, videoID string, t *models.Transcript) error
}

// Service returns transcripts from the cache, fetching on a miss
type Service struct {
	store       cache.Store
	cacheType   string
	fetcher     Fetcher
	archive     Archive
	readThrough bool
	logger      *logging.Logger
	group       singleflight.Group
}

// Option configures a Service
type Option func(*Service)

// WithArchive copies every fetched transcript to a. With readThrough, a
// cache miss is served from the archive before calling the provider.
func WithArchive(a Archive, readThrough bool) Option {
	return func(s *Service) {
		s.archive = a
		s.readThrough = readThrough
	}
}

// WithLogger sets the service logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithCacheType labels cache metrics
func WithCacheType(name string) Option {
	return func(s *Service) {
		s.cacheType = name
	}
}

// NewService creates a transcript service
func NewService(store cache.Store, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		cacheType: "memory",
		fetcher:   fetcher,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTranscript returns the transcript for the video. Within the cache
// lifetime repeated calls with the same identity never reach the provider.
// Concurrent misses for the same identity share one provider call.
func (s *Service) GetTranscript(ctx context.Context, videoID, sessionID string) (*models.Transcript, error) {
	span, ctx := tracing.StartSpan(ctx, "transcript.get")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "video_id", videoID)

	key := youtube.StorageKey(videoID, sessionID)

	if t, ok := s.lookup(ctx, key); ok {
		tracing.SetTag(span, "cache_hit", true)
		return t, nil
	}
	tracing.SetTag(span, "cache_hit", false)

	// The shared load must not inherit the cancellation of whichever caller
	// started it; the fetcher's own timeout bounds it.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		// A caller that lost the race may find the entry already stored
		if t, ok := s.lookup(loadCtx, key); ok {
			return t, nil
		}
		return s.load(loadCtx, key, videoID)
	})

	select {
	case <-ctx.Done():
		tracing.LogError(span, ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			tracing.LogError(span, res.Err)
			return nil, res.Err
		}
		return res.Val.(*models.Transcript), nil
	}
}

func (s *Service) lookup(ctx context.Context, key string) (*models.Transcript, bool) {
	t, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.WithField("cache_key", key).ErrorWithErr("Transcript cache read failed", err)
		metrics.RecordError("transcript", "cache_read")
		return nil, false
	}
	s.logger.LogCacheAccess(key, ok)
	metrics.RecordCacheAccess(s.cacheType, ok)
	return t, ok
}

func (s *Service) load(ctx context.Context, key, videoID string) (*models.Transcript, error) {
	if s.archive != nil && s.readThrough {
		t, ok, err := s.archive.Get(ctx, videoID)
		switch {
		case err != nil:
			s.logger.WithVideoID(videoID).ErrorWithErr("Transcript archive read failed", err)
		case ok:
			metrics.RecordCacheAccess("archive", true)
			s.cacheStore(ctx, key, t)
			return t, nil
		default:
			metrics.RecordCacheAccess("archive", false)
		}
	}

	start := time.Now()
	raw, err := s.fetcher.Fetch(ctx, videoID)
	if err != nil {
		err = classify(err)
		metrics.RecordTranscriptFetch(fetchStatus(err), time.Since(start).Seconds())
		s.logger.WithVideoID(videoID).ErrorWithErr("Transcript fetch failed", err)
		return nil, err
	}
	metrics.RecordTranscriptFetch("success", time.Since(start).Seconds())

	t := &models.Transcript{
		Transcript: youtube.SanitizeText(raw.Transcript),
		Title:      youtube.SanitizeText(raw.Title),
		Duration:   raw.Duration,
	}
	if t.Title == "" {
		t.Title = youtube.DefaultTitle(videoID)
	}
	if t.Duration < 0 {
		t.Duration = 0
	}

	s.cacheStore(ctx, key, t)

	if s.archive != nil {
		go s.archiveCopy(context.WithoutCancel(ctx), videoID, t)
	}

	return t, nil
}

func (s *Service) cacheStore(ctx context.Context, key string, t *models.Transcript) {
	if err := s.store.Set(ctx, key, t); err != nil {
		s.logger.WithField("cache_key", key).ErrorWithErr("Transcript cache write failed", err)
		metrics.RecordError("transcript", "cache_write")
	}
}

func (s *Service) archiveCopy(ctx context.Context, videoID string, t *models.Transcript) {
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	if err := s.archive.Put(ctx, videoID, t); err != nil {
		s.logger.WithVideoID(videoID).ErrorWithErr("Transcript archive write failed", err)
	}
}

// classify maps any fetch error onto the provider taxonomy
func classify(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrFetchFailed, err)
}

func fetchStatus(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuthFailed):
		return "auth_failed"
	default:
		return "error"
	}
}
