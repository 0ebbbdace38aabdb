package main

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

func TestAggregator_CountsTokensOnTerminalEvents(t *testing.T) {
	agg := newAggregator(logging.Nop())
	counter := metrics.ConsumedTokensByOutput.WithLabelValues(string(models.OutputTypeFlashcards))
	before := testutil.ToFloat64(counter)

	events := []*models.UsageEvent{
		{Type: models.EventTokensCharged, UserID: "u1", VideoID: "v1", Tokens: 10},
		{Type: models.EventUsageCompleted, UserID: "u1", VideoID: "v1", OutputType: models.OutputTypeFlashcards, Tokens: 10},
		// A later request for the same video paid nothing
		{Type: models.EventUsageFailed, UserID: "u1", VideoID: "v1", OutputType: models.OutputTypeFlashcards},
	}
	for _, evt := range events {
		require.NoError(t, agg.handle(context.Background(), evt))
	}

	assert.Equal(t, before+10, testutil.ToFloat64(counter))
}

func TestAggregator_UnknownEvent(t *testing.T) {
	agg := newAggregator(logging.Nop())
	assert.NoError(t, agg.handle(context.Background(), &models.UsageEvent{Type: "video.deleted"}))
}
