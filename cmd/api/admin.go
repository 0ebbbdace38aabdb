package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/apierror"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/llm"
)

type providerRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// bindProvider reads the provider name from the body. An empty body or a
// missing name is reported as such; anything unparseable is a bad body.
func (api *API) bindProvider(c *gin.Context, op string) (string, bool) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message := "Provider name is required"
		if isMalformedJSON(err) {
			message = "Invalid request body"
		}
		api.fail(c, op, apierror.Validation(op, err, message))
		return "", false
	}
	return req.Provider, true
}

func isMalformedJSON(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// getCurrentLLMProvider handles GET /api/admin/llm
func (api *API) getCurrentLLMProvider(c *gin.Context) {
	const op = "api.getCurrentLLMProvider"

	provider, err := api.llm.Current()
	if err != nil {
		api.fail(c, op, apierror.Internal(op, err, "Failed to load LLM provider"))
		return
	}

	respond(c, provider.Info())
}

// changeLLMProvider handles POST /api/admin/llm
func (api *API) changeLLMProvider(c *gin.Context) {
	const op = "api.changeLLMProvider"
	name, ok := api.bindProvider(c, op)
	if !ok {
		return
	}

	if err := api.llm.SetProvider(name); err != nil {
		if errors.Is(err, llm.ErrUnknownProvider) {
			api.fail(c, op, apierror.Validation(op, err, fmt.Sprintf("Invalid provider: %s", name)))
			return
		}
		api.fail(c, op, err)
		return
	}

	provider, err := api.llm.Current()
	if err != nil {
		api.fail(c, op, apierror.Internal(op, err, "Failed to load LLM provider"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("LLM provider changed to: %s", name),
		"data":    provider.Info(),
	})
}

// getAllLLMProviders handles GET /api/admin/llm/all
func (api *API) getAllLLMProviders(c *gin.Context) {
	respond(c, api.llm.All(c.Request.Context()))
}

// testLLMProvider handles POST /api/admin/llm/test
func (api *API) testLLMProvider(c *gin.Context) {
	const op = "api.testLLMProvider"
	name, ok := api.bindProvider(c, op)
	if !ok {
		return
	}

	respond(c, api.llm.Test(c.Request.Context(), name))
}
