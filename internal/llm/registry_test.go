package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

func fakeFactory(name string, c Completer, built *int) Factory {
	return func() (Provider, error) {
		*built++
		return NewChatProvider(models.ProviderInfo{Name: name, Model: name + "-model"}, c, noDelay, nil), nil
	}
}

func TestRegistry_GetCachesInstances(t *testing.T) {
	r := NewRegistry("gemini", nil)
	built := 0
	r.Register("gemini", fakeFactory("gemini", &scriptedCompleter{}, &built))

	p1, err := r.Get("gemini")
	require.NoError(t, err)
	p2, err := r.Get("gemini")
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, 1, built)

	_, err = r.Get("openai")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistry_SetProvider(t *testing.T) {
	r := NewRegistry("gemini", nil)
	built := 0
	r.Register("gemini", fakeFactory("gemini", &scriptedCompleter{}, &built))
	r.Register("groq", fakeFactory("groq", &scriptedCompleter{}, &built))

	require.NoError(t, r.SetProvider("groq"))
	p, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, "groq", p.Name())

	err = r.SetProvider("openai")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Equal(t, "groq", r.CurrentName(), "rejected switch keeps current provider")
}

func TestRegistry_SelectFallsBackToDefault(t *testing.T) {
	r := NewRegistry("gemini", nil)
	built := 0
	r.Register("gemini", fakeFactory("gemini", &scriptedCompleter{}, &built))
	r.Register("groq", fakeFactory("groq", &scriptedCompleter{}, &built))

	r.Select("groq")
	assert.Equal(t, "groq", r.CurrentName())

	r.Select("mistral")
	assert.Equal(t, "gemini", r.CurrentName())
}

func TestRegistry_TestAndAll(t *testing.T) {
	r := NewRegistry("gemini", nil)
	built := 0
	r.Register("gemini", fakeFactory("gemini", &scriptedCompleter{replies: []string{"Paris"}}, &built))
	r.Register("groq", fakeFactory("groq", &scriptedCompleter{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"),
	}}, &built))
	r.Register("broken", func() (Provider, error) { return nil, errors.New("missing key") })

	ok := r.Test(context.Background(), "gemini")
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)

	bad := r.Test(context.Background(), "broken")
	assert.False(t, bad.Success)
	require.NotNil(t, bad.Error)
	assert.Contains(t, *bad.Error, "missing key")

	statuses := r.All(context.Background())
	require.Len(t, statuses, 3)
	byName := map[string]models.ProviderStatus{}
	for _, s := range statuses {
		byName[s.Name] = s
	}
	assert.True(t, byName["gemini"].Current)
	assert.False(t, byName["groq"].Working)
	assert.False(t, byName["broken"].Working)
	assert.Equal(t, "gemini-model", byName["gemini"].Model)
}

func TestNewRegistryFromConfig(t *testing.T) {
	r := NewRegistryFromConfig(config.LLMConfig{
		Provider: "unknown",
		Gemini:   config.ProviderConfig{APIKey: "k", Model: "gemini-1.5-flash", MaxTokens: 8192, Temperature: 0.2},
	}, nil)

	assert.Equal(t, []string{"gemini", "groq"}, r.Names())
	assert.Equal(t, "gemini", r.CurrentName())

	p, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", p.Info().Model)

	_, err = r.Get("groq")
	assert.Error(t, err, "groq without an API key cannot be built")
}
