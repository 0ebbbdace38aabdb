package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// ErrUnknownProvider is returned for a provider name that is not registered
var ErrUnknownProvider = errors.New("unknown provider")

// Factory builds a provider on first use
type Factory func() (Provider, error)

// Registry resolves providers by name and tracks the active one.
// Instances are built lazily and cached.
type Registry struct {
	mu          sync.RWMutex
	factories   map[string]Factory
	instances   map[string]Provider
	current     string
	defaultName string
	logger      *logging.Logger
}

// NewRegistry creates an empty registry whose fallback provider is defaultName
func NewRegistry(defaultName string, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		factories:   make(map[string]Factory),
		instances:   make(map[string]Provider),
		current:     defaultName,
		defaultName: defaultName,
		logger:      logger,
	}
}

// NewRegistryFromConfig registers the Gemini and Groq providers and selects
// the configured one
func NewRegistryFromConfig(cfg config.LLMConfig, logger *logging.Logger) *Registry {
	retry := RetryPolicy{MaxAttempts: cfg.MaxAttempts, InitialDelay: cfg.InitialDelay}

	r := NewRegistry(ProviderGemini, logger)
	r.Register(ProviderGemini, func() (Provider, error) {
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is not configured")
		}
		return NewGemini(cfg.Gemini, retry, logger), nil
	})
	r.Register(ProviderGroq, func() (Provider, error) {
		if cfg.Groq.APIKey == "" {
			return nil, errors.New("GROQ_API_KEY is not configured")
		}
		return NewGroq(cfg.Groq, retry, logger), nil
	})
	r.Select(cfg.Provider)
	return r
}

// Register adds a provider factory under name
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
	delete(r.instances, name)
}

// Select makes name current, falling back to the default provider with a
// warning when name is unknown
func (r *Registry) Select(name string) {
	if err := r.SetProvider(name); err != nil {
		r.logger.Warnf("Invalid LLM provider: %q. Using default: %s", name, r.defaultName)
		r.mu.Lock()
		r.current = r.defaultName
		r.mu.Unlock()
	}
}

// SetProvider switches the current provider
func (r *Registry) SetProvider(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	r.current = name
	r.logger.Infof("LLM provider changed to: %s", name)
	return nil
}

// CurrentName returns the name of the active provider
func (r *Registry) CurrentName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Names returns the registered provider names in order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the provider registered under name, building it on first use
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.instances[name]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if p, ok := r.instances[name]; ok {
		return p, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	p, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", name, err)
	}
	r.instances[name] = p
	return p, nil
}

// Current returns the active provider
func (r *Registry) Current() (Provider, error) {
	return r.Get(r.CurrentName())
}

// Test probes a provider with a sample generation
func (r *Registry) Test(ctx context.Context, name string) models.ProviderTestResult {
	result := models.ProviderTestResult{Provider: name}

	p, err := r.Get(name)
	if err == nil {
		var sample string
		sample, err = p.GenerateSample(ctx)
		result.Success = err == nil && sample != ""
	}
	if err != nil {
		msg := err.Error()
		result.Error = &msg
	}
	return result
}

// All probes every registered provider concurrently
func (r *Registry) All(ctx context.Context) []models.ProviderStatus {
	names := r.Names()
	current := r.CurrentName()
	statuses := make([]models.ProviderStatus, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			status := models.ProviderStatus{
				ProviderInfo: models.ProviderInfo{Name: name},
				Current:      name == current,
			}
			if p, err := r.Get(name); err == nil {
				status.ProviderInfo = p.Info()
			}
			status.Working = r.Test(ctx, name).Success
			statuses[i] = status
		}(i, name)
	}
	wg.Wait()

	return statuses
}
