package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sebrandon1/pulsepoint/internal/alert"
	"github.com/sebrandon1/pulsepoint/internal/media"
	"github.com/sebrandon1/pulsepoint/internal/provider"
	"github.com/sebrandon1/pulsepoint/internal/resolver"
	"github.com/sebrandon1/pulsepoint/internal/triage"
)

// ModelResolver hands out the process-wide model.
type ModelResolver interface {
	Resolve(ctx context.Context) (provider.Model, resolver.Selection, error)
	Selection() (resolver.Selection, bool)
}

// Triager checks and runs one triage request.
type Triager interface {
	Validate(req triage.Request) error
	Triage(ctx context.Context, req triage.Request, model provider.Model, loc *alert.Location, contact string) (*triage.Response, error)
}

// Handler serves the triage API and page.
type Handler struct {
	provider       string
	models         ModelResolver
	triager        Triager
	defaultAge     int
	defaultContact string
	maxUpload      int64
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// TriageResponse is the body of a successful POST /v1/triage.
type TriageResponse struct {
	ID              string   `json:"id"`
	Model           string   `json:"model"`
	Report          string   `json:"report"`
	Raw             string   `json:"raw"`
	Critical        bool     `json:"critical"`
	Level           int      `json:"level,omitempty"`
	Method          string   `json:"method"`
	MapURL          string   `json:"map_url,omitempty"`
	AlertDispatched bool     `json:"alert_dispatched"`
	Warnings        []string `json:"warnings,omitempty"`
}

// ModelsResponse is the body of GET /v1/models.
type ModelsResponse struct {
	Provider string `json:"provider"`
	resolver.Selection
}

// Index renders the triage page.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"DefaultAge":     h.defaultAge,
		"DefaultContact": h.defaultContact,
		"MinAge":         triage.MinAge,
		"MaxAge":         triage.MaxAge,
	})
}

// Triage handles POST /v1/triage.
func (h *Handler) Triage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", h.maxUpload))
			return
		}
		h.fail(c, http.StatusBadRequest, err)
		return
	}

	req, loc, contact, err := h.bindTriage(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.triager.Validate(req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}

	model, _, err := h.models.Resolve(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusServiceUnavailable, fmt.Errorf("%w: %v", triage.ErrConfiguration, err))
		return
	}

	resp, err := h.triager.Triage(c.Request.Context(), req, model, loc, contact)
	if err != nil {
		h.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, NewTriageResponse(resp))
}

// NewTriageResponse flattens a triage result into its wire form.
func NewTriageResponse(resp *triage.Response) TriageResponse {
	return TriageResponse{
		ID:              resp.ID,
		Model:           resp.Model,
		Report:          resp.Report,
		Raw:             resp.Text,
		Critical:        resp.Decision.Critical,
		Level:           resp.Decision.Level,
		Method:          resp.Decision.Method,
		MapURL:          resp.Decision.MapURL,
		AlertDispatched: resp.AlertDispatched,
		Warnings:        resp.Warnings,
	}
}

func (h *Handler) bindTriage(c *gin.Context) (triage.Request, *alert.Location, string, error) {
	req := triage.Request{Age: h.defaultAge, Symptoms: c.PostForm("symptoms")}

	if raw := strings.TrimSpace(c.PostForm("age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return req, nil, "", fmt.Errorf("%w: age must be a whole number", triage.ErrValidation)
		}
		req.Age = age
	}

	contact, ok := c.GetPostForm("contact")
	if !ok {
		contact = h.defaultContact
	}

	lat, err := optionalFloat(c.PostForm("latitude"))
	if err != nil {
		return req, nil, "", fmt.Errorf("%w: latitude: %v", triage.ErrValidation, err)
	}
	lon, err := optionalFloat(c.PostForm("longitude"))
	if err != nil {
		return req, nil, "", fmt.Errorf("%w: longitude: %v", triage.ErrValidation, err)
	}
	loc, err := alert.NewLocation(lat, lon)
	if err != nil {
		return req, nil, "", fmt.Errorf("%w: %v", triage.ErrValidation, err)
	}

	req.Image, req.ImageMIME, err = readUpload(formFile(c, "image"), media.Images)
	if err != nil {
		return req, nil, "", fmt.Errorf("%w: image: %v", triage.ErrValidation, err)
	}
	req.Audio, req.AudioMIME, err = readUpload(formFile(c, "audio"), media.Audio)
	if err != nil {
		return req, nil, "", fmt.Errorf("%w: audio: %v", triage.ErrValidation, err)
	}
	return req, loc, contact, nil
}

// Models handles GET /v1/models.
func (h *Handler) Models(c *gin.Context) {
	_, sel, err := h.models.Resolve(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusServiceUnavailable, fmt.Errorf("%w: %v", triage.ErrConfiguration, err))
		return
	}
	c.JSON(http.StatusOK, ModelsResponse{Provider: h.provider, Selection: sel})
}

// Ready reports ready once a model has been resolved.
func (h *Handler) Ready(c *gin.Context) {
	if sel, ok := h.models.Selection(); ok {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "model": sel.Model})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     err.Error(),
		RequestID: RequestIDFromContext(c),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, triage.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, triage.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, triage.ErrInference):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func formFile(c *gin.Context, name string) *multipart.FileHeader {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return fh
}

func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
