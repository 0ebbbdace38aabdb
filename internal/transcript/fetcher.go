// Package transcript fetches video transcripts from the upstream provider
// and serves them through the transcript cache.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/youtube"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

var (
	// ErrNotFound means the provider has no transcript for the video
	ErrNotFound = errors.New("transcript not found")
	// ErrAuthFailed means the provider rejected our credentials
	ErrAuthFailed = errors.New("transcript provider authentication failed")
	// ErrFetchFailed covers every other provider failure
	ErrFetchFailed = errors.New("failed to fetch transcript")
)

// Fetcher retrieves a transcript for a video id
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (*models.Transcript, error)
}

type rapidAPIParams struct {
	URL      string `url:"url"`
	FlatText bool   `url:"flat_text"`
	Lang     string `url:"lang"`
}

type rapidAPIResponse struct {
	Transcript string  `json:"transcript"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
}

// RapidAPIFetcher calls the youtube-transcript3 RapidAPI endpoint
type RapidAPIFetcher struct {
	client   *http.Client
	endpoint string
	host     string
	apiKey   string
	lang     string
}

// NewRapidAPIFetcher creates a fetcher from configuration
func NewRapidAPIFetcher(cfg config.TranscriptConfig) *RapidAPIFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}

	return &RapidAPIFetcher{
		client:   &http.Client{Timeout: timeout},
		endpoint: cfg.APIURL,
		host:     cfg.APIHost,
		apiKey:   cfg.APIKey,
		lang:     lang,
	}
}

// Fetch requests the flat-text transcript of the video
func (f *RapidAPIFetcher) Fetch(ctx context.Context, videoID string) (*models.Transcript, error) {
	params, err := query.Values(rapidAPIParams{
		URL:      youtube.WatchURL(videoID),
		FlatText: true,
		Lang:     f.lang,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("X-RapidAPI-Key", f.apiKey)
	req.Header.Set("X-RapidAPI-Host", f.host)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuthFailed
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, body)
	}

	var payload rapidAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrFetchFailed, err)
	}
	if payload.Transcript == "" {
		return nil, fmt.Errorf("%w: invalid transcript data format", ErrFetchFailed)
	}

	return &models.Transcript{
		Transcript: payload.Transcript,
		Title:      payload.Title,
		Duration:   payload.Duration,
	}, nil
}
