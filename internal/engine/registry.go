package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type SourceFactory func(ctx context.Context, logger *zap.Logger, input any) (Source, error)

// TypedSourceFactory is a strongly-typed source factory.
// T is the concrete config type (e.g. sources.HTTPConfig).
type TypedSourceFactory[T any] func(ctx context.Context, logger *zap.Logger, cfg T) (Source, error)

// NewSourceFactory wraps a typed source factory into a generic SourceFactory.
// It centralizes the unsafe cast from any → T and provides a clear error if the type mismatches.
func NewSourceFactory[T any](kind string, f TypedSourceFactory[T]) SourceFactory {
	return func(ctx context.Context, logger *zap.Logger, input any) (Source, error) {
		cfg, ok := input.(T)
		if !ok {
			return nil, fmt.Errorf("invalid source config for kind %q: %T", kind, input)
		}
		return f(ctx, logger, cfg)
	}
}

// UnsupportedTypeError is returned when a source kind is not registered.
type UnsupportedTypeError struct {
	Category  string   // "source"
	Kind      string   // the requested kind
	Available []string // registered kinds
}

func (e *UnsupportedTypeError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported %s type %q: no %ss registered", e.Category, e.Kind, e.Category)
	}
	return fmt.Sprintf("unsupported %s type %q (available: %v)", e.Category, e.Kind, e.Available)
}

type Registry struct {
	mu      sync.RWMutex
	sources map[string]SourceFactory
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sources: make(map[string]SourceFactory),
		logger:  logger,
	}
}

func (r *Registry) RegisterSource(kind string, factory SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[kind] = factory
}

func (r *Registry) CreateSource(ctx context.Context, kind string, cfg any) (Source, error) {
	r.mu.RLock()
	factory, ok := r.sources[kind]
	available := r.availableSources()
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedTypeError{Category: "source", Kind: kind, Available: available}
	}
	return factory(ctx, r.logger.Named(kind), cfg)
}

func (r *Registry) AvailableSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableSources()
}

func (r *Registry) availableSources() []string {
	sources := lo.Keys(r.sources)
	slices.Sort(sources)
	return sources
}
