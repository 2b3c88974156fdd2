package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sebrandon1/pulsepoint/internal/alert"
	"github.com/sebrandon1/pulsepoint/internal/metrics"
	"github.com/sebrandon1/pulsepoint/internal/provider"
)

// Age bounds accepted for a patient.
const (
	MinAge = 1
	MaxAge = 100
)

// Request is one triage submission.
type Request struct {
	Age       int    `validate:"min=1,max=100"`
	Symptoms  string `validate:"required"`
	Image     []byte
	ImageMIME string `validate:"required_with=Image"`
	Audio     []byte
	AudioMIME string `validate:"required_with=Audio"`
}

// Response is the outcome of a successful triage.
type Response struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	// Text is the raw model reply.
	Text string `json:"raw"`
	// Report is the reply as shown to the user.
	Report          string         `json:"report"`
	Decision        alert.Decision `json:"decision"`
	AlertDispatched bool           `json:"alert_dispatched"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// Alerter performs the side effects of a critical decision. Dispatch must not
// block on delivery and reports whether an alert was started.
type Alerter interface {
	Dispatch(ctx context.Context, contact string, decision alert.Decision) bool
}

// Options configures an Orchestrator.
type Options struct {
	Classifier       Classifier
	Maps             alert.MapLink
	Alerter          Alerter
	InferenceTimeout time.Duration
}

// Orchestrator runs triage requests against a resolved model.
type Orchestrator struct {
	classifier Classifier
	maps       alert.MapLink
	alerter    Alerter
	timeout    time.Duration
	validate   *validator.Validate
	log        zerolog.Logger
}

// New creates an Orchestrator. A nil Classifier uses DefaultClassifier; a nil
// Alerter disables alerting.
func New(opts Options, log zerolog.Logger) *Orchestrator {
	if opts.Classifier == nil {
		opts.Classifier = DefaultClassifier()
	}
	return &Orchestrator{
		classifier: opts.Classifier,
		maps:       opts.Maps,
		alerter:    opts.Alerter,
		timeout:    opts.InferenceTimeout,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        log.With().Str("component", "triage").Logger(),
	}
}

// Validate checks a request without calling any model.
func (o *Orchestrator) Validate(req Request) error {
	req.Symptoms = strings.TrimSpace(req.Symptoms)
	if err := o.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrValidation, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Triage sends the request to model, classifies the reply and, when the reply
// is critical, hands the decision to the alerter. The reply is returned even
// if alerting fails.
func (o *Orchestrator) Triage(ctx context.Context, req Request, model provider.Model, loc *alert.Location, contact string) (*Response, error) {
	if err := o.Validate(req); err != nil {
		metrics.TriageRequestsTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}
	if model == nil {
		metrics.TriageRequestsTotal.WithLabelValues("configuration_error").Inc()
		return nil, fmt.Errorf("%w: no model resolved", ErrConfiguration)
	}

	resp := &Response{ID: uuid.NewString(), Model: model.Name()}
	log := o.log.With().Str("triage_id", resp.ID).Str("model", resp.Model).Logger()

	parts, warnings := o.parts(req, model)
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	resp.Warnings = warnings

	inferCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		inferCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := model.Generate(inferCtx, parts)
	metrics.InferenceDuration.WithLabelValues(resp.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TriageRequestsTotal.WithLabelValues("inference_error").Inc()
		log.Error().Err(err).Msg("inference failed")
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	resp.Text = text
	resp.Report = text

	decision, c := Decide(text, o.classifier, loc, o.maps)
	resp.Decision = decision
	if c.Assessment != nil {
		resp.Report = c.Assessment.String()
	}
	metrics.TriageRequestsTotal.WithLabelValues("ok").Inc()

	if !decision.Critical {
		log.Info().Int("level", decision.Level).Str("method", decision.Method).Msg("triage complete")
		return resp, nil
	}

	metrics.AlertsTotal.WithLabelValues(decision.Method).Inc()
	log.Warn().
		Int("level", decision.Level).
		Str("method", decision.Method).
		Bool("location", loc != nil).
		Msg("critical triage alert")
	if o.alerter != nil {
		resp.AlertDispatched = o.alerter.Dispatch(ctx, contact, decision)
	}
	return resp, nil
}

func (o *Orchestrator) parts(req Request, model provider.Model) ([]provider.Part, []string) {
	parts := []provider.Part{
		provider.Text(Instruction),
		provider.Text(Summary(req.Age, strings.TrimSpace(req.Symptoms))),
	}
	var warnings []string

	if len(req.Image) > 0 {
		if model.Accepts(provider.PartImage) {
			parts = append(parts, provider.Image(req.ImageMIME, req.Image))
		} else {
			warnings = append(warnings, fmt.Sprintf("model %s does not accept images; photo was not analysed", model.Name()))
		}
	}
	if len(req.Audio) > 0 {
		if model.Accepts(provider.PartAudio) {
			parts = append(parts, provider.Audio(req.AudioMIME, req.Audio))
		} else {
			warnings = append(warnings, fmt.Sprintf("model %s does not accept audio; recording was not analysed", model.Name()))
		}
	}
	return parts, warnings
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Age":
		return fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge)
	case "Symptoms":
		return "symptoms are required"
	case "ImageMIME":
		return "image type is required"
	case "AudioMIME":
		return "audio type is required"
	}
	return fe.Error()
}
