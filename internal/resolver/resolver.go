package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sebrandon1/pulsepoint/internal/metrics"
	"github.com/sebrandon1/pulsepoint/internal/provider"
)

var (
	// ErrDiscovery marks a failed model listing. It is logged, never returned.
	ErrDiscovery = errors.New("model discovery failed")

	// ErrUnresolvable is returned when no model handle can be produced at all.
	ErrUnresolvable = errors.New("no model could be resolved")
)

// Selection sources.
const (
	SourcePriority       = "priority"
	SourceFirstAvailable = "first-available"
	SourceDefault        = "default"
)

// Selection records how the model was chosen.
type Selection struct {
	Model      string   `json:"model"`
	Source     string   `json:"source"`
	Candidates []string `json:"candidates"`
	Warning    string   `json:"warning,omitempty"`
}

// Resolver picks a working model once per process and memoizes it.
type Resolver struct {
	provider     provider.LLMProvider
	priority     []string
	defaultModel string
	log          zerolog.Logger

	mu        sync.Mutex
	model     provider.Model
	selection Selection
}

// New creates a Resolver. priority is walked in order; defaultModel is used
// when discovery fails.
func New(p provider.LLMProvider, priority []string, defaultModel string, log zerolog.Logger) *Resolver {
	return &Resolver{
		provider:     p,
		priority:     priority,
		defaultModel: strings.TrimSpace(defaultModel),
		log:          log.With().Str("component", "resolver").Str("provider", p.Name()).Logger(),
	}
}

// Resolve returns the memoized model, resolving it on first use. Discovery
// failures fall back to the default model; only a total failure is returned,
// and it is not memoized.
func (r *Resolver) Resolve(ctx context.Context) (provider.Model, Selection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model != nil {
		return r.model, r.selection, nil
	}

	sel, err := r.discover(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("fallback", r.defaultModel).Msg("model discovery failed, using default model")
		sel = Selection{Model: r.defaultModel, Source: SourceDefault, Warning: err.Error()}
	}
	if sel.Model == "" {
		return nil, sel, fmt.Errorf("%w: no default model configured", ErrUnresolvable)
	}

	model, err := r.provider.Model(sel.Model)
	if err != nil {
		return nil, sel, fmt.Errorf("%w: %s: %v", ErrUnresolvable, sel.Model, err)
	}

	metrics.ModelResolutionsTotal.WithLabelValues(sel.Source).Inc()
	r.log.Info().Str("model", sel.Model).Str("source", sel.Source).Int("candidates", len(sel.Candidates)).Msg("model resolved")

	r.model = model
	r.selection = sel
	return model, sel, nil
}

// Selection returns the memoized selection and whether resolution has happened.
func (r *Resolver) Selection() (Selection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection, r.model != nil
}

func (r *Resolver) discover(ctx context.Context) (Selection, error) {
	infos, err := r.provider.ListModels(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	candidates := Capable(infos)
	if len(candidates) == 0 {
		return Selection{}, fmt.Errorf("%w: no model supports %s", ErrDiscovery, provider.OpGenerateContent)
	}

	model, source := Choose(r.priority, candidates)
	return Selection{Model: model, Source: source, Candidates: candidates}, nil
}

// Capable returns the identifiers of models that support content generation,
// in provider order.
func Capable(infos []provider.ModelInfo) []string {
	var ids []string
	for _, info := range infos {
		if info.Supports(provider.OpGenerateContent) {
			ids = append(ids, normalize(info.ID))
		}
	}
	return ids
}

// Choose returns the candidate matching the first priority entry, or the first
// candidate when none matches. An untagged entry such as "llava" matches any
// tag of that name ("llava:latest"). candidates must not be empty.
func Choose(priority, candidates []string) (string, string) {
	for _, want := range priority {
		want = normalize(want)
		if slices.Contains(candidates, want) {
			return want, SourcePriority
		}
		if strings.Contains(want, ":") {
			continue
		}
		for _, c := range candidates {
			if strings.HasPrefix(c, want+":") {
				return c, SourcePriority
			}
		}
	}
	return candidates[0], SourceFirstAvailable
}

func normalize(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "models/")
}
