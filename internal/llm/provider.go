// Package llm generates notes, mindmaps and flashcards from transcripts
// through interchangeable chat-completion backends.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/tracing"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/youtube"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

var (
	// ErrGenerationFailed means the backend never produced a reply
	ErrGenerationFailed = errors.New("content generation failed")
	// ErrInvalidOutput means the reply could not be parsed into the expected shape
	ErrInvalidOutput = errors.New("invalid structured output")
)

// Provider is a content generation backend
type Provider interface {
	Name() string
	Info() models.ProviderInfo
	GenerateNotes(ctx context.Context, transcript string) (string, error)
	GenerateMindmap(ctx context.Context, transcript string) (*models.Mindmap, error)
	GenerateFlashcards(ctx context.Context, transcript string) ([]models.Flashcard, error)
	GenerateSample(ctx context.Context) (string, error)
}

// Completer sends one prompt to a model and returns its reply text
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ChatProvider implements Provider on top of a Completer
type ChatProvider struct {
	info      models.ProviderInfo
	completer Completer
	retry     RetryPolicy
	logger    *logging.Logger
}

// NewChatProvider wraps completer with prompts, retries and output parsing
func NewChatProvider(info models.ProviderInfo, completer Completer, retry RetryPolicy, logger *logging.Logger) *ChatProvider {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ChatProvider{
		info:      info,
		completer: completer,
		retry:     retry,
		logger:    logger,
	}
}

func (p *ChatProvider) Name() string {
	return p.info.Name
}

func (p *ChatProvider) Info() models.ProviderInfo {
	return p.info
}

func (p *ChatProvider) GenerateNotes(ctx context.Context, transcript string) (string, error) {
	return p.call(ctx, "notes", notesSystemPrompt, notesPrompt+youtube.SanitizeText(transcript))
}

func (p *ChatProvider) GenerateMindmap(ctx context.Context, transcript string) (*models.Mindmap, error) {
	reply, err := p.call(ctx, "mindmap", jsonSystemPrompt, mindmapPrompt+youtube.SanitizeText(transcript))
	if err != nil {
		return nil, err
	}
	return ParseMindmap(reply)
}

func (p *ChatProvider) GenerateFlashcards(ctx context.Context, transcript string) ([]models.Flashcard, error) {
	reply, err := p.call(ctx, "flashcards", jsonSystemPrompt, flashcardsPrompt+youtube.SanitizeText(transcript))
	if err != nil {
		return nil, err
	}
	return ParseFlashcards(reply)
}

func (p *ChatProvider) GenerateSample(ctx context.Context) (string, error) {
	return p.call(ctx, "sample", "", samplePrompt)
}

func (p *ChatProvider) call(ctx context.Context, task, system, prompt string) (string, error) {
	span, ctx := tracing.StartSpan(ctx, "llm."+task)
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "provider", p.info.Name)
	tracing.SetTag(span, "model", p.info.Model)

	start := time.Now()
	var reply string
	err := p.retry.Do(ctx, func(attempt int) error {
		var err error
		reply, err = p.completer.Complete(ctx, system, prompt)
		if err == nil && reply == "" {
			err = errors.New("empty reply")
		}
		p.logger.LogProviderCall(p.info.Name, attempt, p.retry.attempts(), err)
		return err
	})
	metrics.RecordProviderCall(p.info.Name, task, err, time.Since(start).Seconds())

	if err != nil {
		tracing.LogError(span, err)
		return "", fmt.Errorf("%w: failed to get response from %s: %v", ErrGenerationFailed, p.info.Name, err)
	}
	return reply, nil
}

var _ Provider = (*ChatProvider)(nil)
