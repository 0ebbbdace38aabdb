package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/apierror"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/ledger"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/middleware"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// getHistory handles GET /api/history
func (api *API) getHistory(c *gin.Context) {
	const op = "api.getHistory"
	userID, _ := middleware.GetUserID(c)

	limit, err := queryInt(c, "limit", ledger.DefaultHistoryLimit)
	if err != nil {
		api.fail(c, op, apierror.Validation(op, err, "limit must be a non-negative integer"))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		api.fail(c, op, apierror.Validation(op, err, "offset must be a non-negative integer"))
		return
	}

	page, err := api.ledger.ListVideoUsage(c.Request.Context(), userID, models.UsageFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		api.fail(c, op, apierror.Internal(op, err, "Failed to fetch history"))
		return
	}

	respond(c, page)
}

// getHistoryStats handles GET /api/history/stats
func (api *API) getHistoryStats(c *gin.Context) {
	const op = "api.getHistoryStats"
	userID, _ := middleware.GetUserID(c)

	stats, err := api.ledger.VideoUsageStats(c.Request.Context(), userID)
	if err != nil {
		api.fail(c, op, apierror.Internal(op, err, "Failed to fetch statistics"))
		return
	}

	respond(c, stats)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s is negative", key)
	}
	return n, nil
}

// healthCheck handles GET /health
func (api *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readinessCheck handles GET /ready, probing the backing services
func (api *API) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(api.checks))
	for name, check := range api.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}
