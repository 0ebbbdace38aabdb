package main

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/apierror"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metering"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/middleware"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/youtube"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// videoRequest is the body shared by the content endpoints
type videoRequest struct {
	URL        string `json:"url" binding:"required"`
	Transcript string `json:"transcript"`
	SessionID  string `json:"sessionId"`

	videoID string
}

type transcriptResponse struct {
	VideoID    string  `json:"videoId"`
	Transcript string  `json:"transcript"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
}

type notesResponse struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

type mindmapResponse struct {
	VideoID string          `json:"videoId"`
	Title   string          `json:"title"`
	Mindmap *models.Mindmap `json:"mindmap"`
}

type flashcardsResponse struct {
	VideoID    string             `json:"videoId"`
	Title      string             `json:"title"`
	Flashcards []models.Flashcard `json:"flashcards"`
}

// bindVideoRequest validates the body and extracts the video id
func (api *API) bindVideoRequest(c *gin.Context, op string) (*videoRequest, bool) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.fail(c, op, apierror.Validation(op, err, `"url" is required`))
		return nil, false
	}

	videoID, ok := youtube.ExtractVideoID(req.URL)
	if !ok {
		api.fail(c, op, apierror.Validation(op, errors.New(req.URL), "Invalid YouTube URL"))
		return nil, false
	}
	req.videoID = videoID
	return &req, true
}

// metered runs work inside the charge workflow: the video is charged on
// first use, a usage record tracks the outcome, and the result is written
// as the success envelope.
func (api *API) metered(c *gin.Context, op string, req *videoRequest, outputType models.OutputType, work func(ctx context.Context) (interface{}, error)) {
	ctx := c.Request.Context()
	userID, _ := middleware.GetUserID(c)

	usage, err := api.metering.Begin(ctx, metering.Request{
		UserID:     userID,
		VideoID:    req.videoID,
		VideoURL:   youtube.WatchURL(req.videoID),
		OutputType: outputType,
	})
	if err != nil {
		api.fail(c, op, err)
		return
	}

	data, err := work(ctx)
	// Bookkeeping outlives a client that hung up
	usage.Finish(context.WithoutCancel(ctx), err)
	if err != nil {
		api.fail(c, op, err)
		return
	}

	respond(c, data)
}

// transcriptFor returns the text to generate from and the video title. A
// caller-provided transcript wins; the title then falls back to a generic
// one when the lookup fails.
func (api *API) transcriptFor(ctx context.Context, req *videoRequest) (string, string, error) {
	if req.Transcript != "" {
		title := youtube.DefaultTitle(req.videoID)
		if t, err := api.transcripts.GetTranscript(ctx, req.videoID, req.SessionID); err == nil {
			title = t.Title
		} else {
			api.logger.WithVideoID(req.videoID).WithError(err).Debug("Title lookup failed, using default")
		}
		return youtube.SanitizeText(req.Transcript), title, nil
	}

	t, err := api.transcripts.GetTranscript(ctx, req.videoID, req.SessionID)
	if err != nil {
		return "", "", err
	}
	return t.Transcript, t.Title, nil
}

// getTranscript handles POST /api/transcript
func (api *API) getTranscript(c *gin.Context) {
	const op = "api.getTranscript"
	req, ok := api.bindVideoRequest(c, op)
	if !ok {
		return
	}

	api.metered(c, op, req, models.OutputTypeTranscript, func(ctx context.Context) (interface{}, error) {
		t, err := api.transcripts.GetTranscript(ctx, req.videoID, req.SessionID)
		if err != nil {
			return nil, err
		}
		return &transcriptResponse{
			VideoID:    req.videoID,
			Transcript: t.Transcript,
			Title:      t.Title,
			Duration:   t.Duration,
		}, nil
	})
}

// generateNotes handles POST /api/notes
func (api *API) generateNotes(c *gin.Context) {
	const op = "api.generateNotes"
	req, ok := api.bindVideoRequest(c, op)
	if !ok {
		return
	}

	api.metered(c, op, req, models.OutputTypeSmartNotes, func(ctx context.Context) (interface{}, error) {
		text, title, err := api.transcriptFor(ctx, req)
		if err != nil {
			return nil, err
		}

		provider, err := api.llm.Current()
		if err != nil {
			return nil, apierror.ContentGenerationFailed(op, err, "Failed to generate notes")
		}
		notes, err := provider.GenerateNotes(ctx, text)
		if err != nil {
			return nil, apierror.ContentGenerationFailed(op, err, "Failed to generate notes")
		}

		return &notesResponse{VideoID: req.videoID, Title: title, Notes: notes}, nil
	})
}

// generateMindmap handles POST /api/mindmap
func (api *API) generateMindmap(c *gin.Context) {
	const op = "api.generateMindmap"
	req, ok := api.bindVideoRequest(c, op)
	if !ok {
		return
	}

	api.metered(c, op, req, models.OutputTypeMindmap, func(ctx context.Context) (interface{}, error) {
		text, title, err := api.transcriptFor(ctx, req)
		if err != nil {
			return nil, err
		}

		provider, err := api.llm.Current()
		if err != nil {
			return nil, apierror.ContentGenerationFailed(op, err, "Failed to generate mindmap")
		}
		mindmap, err := provider.GenerateMindmap(ctx, text)
		if err != nil {
			return nil, apierror.ContentGenerationFailed(op, err, "Failed to generate mindmap")
		}

		return &mindmapResponse{VideoID: req.videoID, Title: title, Mindmap: mindmap}, nil
	})
}

// generateFlashcards handles POST /api/flashcards
func (api *API) generateFlashcards(c *gin.Context) {
	const op = "api.generateFlashcards"
	req, ok := api.bindVideoRequest(c, op)
	if !ok {
		return
	}

	api.metered(c, op, req, models.OutputTypeFlashcards, func(ctx context.Context) (interface{}, error) {
		text, title, err := api.transcriptFor(ctx, req)
		if err != nil {
			return nil, err
		}

		provider, err := api.llm.Current()
		if err != nil {
			return nil, apierror.ContentGenerationFailed(op, err, "Failed to generate flashcards")
		}
		cards, err := provider.GenerateFlashcards(ctx, text)
		if err != nil {
			return nil, apierror.ContentGenerationFailed(op, err, "Failed to generate flashcards")
		}

		return &flashcardsResponse{VideoID: req.videoID, Title: title, Flashcards: cards}, nil
	})
}
