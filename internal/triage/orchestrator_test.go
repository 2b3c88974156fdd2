package triage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebrandon1/pulsepoint/internal/alert"
	"github.com/sebrandon1/pulsepoint/internal/provider"
)

type mockAlerter struct {
	mu        sync.Mutex
	contacts  []string
	decisions []alert.Decision
}

func (m *mockAlerter) Dispatch(ctx context.Context, contact string, decision alert.Decision) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, contact)
	m.decisions = append(m.decisions, decision)
	return true
}

func newTestOrchestrator(alerter Alerter) *Orchestrator {
	return New(Options{Alerter: alerter, InferenceTimeout: time.Second}, zerolog.Nop())
}

func mockModel(t *testing.T, p *provider.MockProvider) provider.Model {
	t.Helper()
	m, err := p.Model("mock-triage")
	require.NoError(t, err)
	return m
}

func TestTriageValidation(t *testing.T) {
	p := provider.NewMockProvider()
	o := newTestOrchestrator(nil)

	testCases := []Request{
		{Age: 25, Symptoms: ""},
		{Age: 25, Symptoms: "   \n\t"},
		{Age: 0, Symptoms: "fever"},
		{Age: 101, Symptoms: "fever"},
		{Age: 25, Symptoms: "rash", Image: []byte{1, 2, 3}},
	}
	for _, req := range testCases {
		_, err := o.Triage(context.Background(), req, mockModel(t, p), nil, "")
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Equal(t, 0, p.GenerateCalls())
}

func TestTriageWithoutModel(t *testing.T) {
	o := newTestOrchestrator(nil)
	_, err := o.Triage(context.Background(), Request{Age: 25, Symptoms: "fever"}, nil, nil, "")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTriageBuildsOrderedParts(t *testing.T) {
	p := provider.NewMockProvider()
	o := newTestOrchestrator(nil)

	req := Request{Age: 42, Symptoms: " chest pain ", Image: []byte("jpg"), ImageMIME: "image/jpeg"}
	resp, err := o.Triage(context.Background(), req, mockModel(t, p), nil, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Warnings)

	parts := p.LastParts()
	require.Len(t, parts, 3)
	assert.Equal(t, provider.Text(Instruction), parts[0])
	assert.Equal(t, provider.Text("Triage for 42yo. Symptoms: chest pain."), parts[1])
	assert.Equal(t, provider.Image("image/jpeg", []byte("jpg")), parts[2])
}

func TestTriageAudio(t *testing.T) {
	req := Request{Age: 30, Symptoms: "cough", Audio: []byte("wav"), AudioMIME: "audio/wav"}

	p := provider.NewMockProvider()
	resp, err := newTestOrchestrator(nil).Triage(context.Background(), req, mockModel(t, p), nil, "")
	require.NoError(t, err)
	assert.Len(t, p.LastParts(), 2)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "audio")

	p = provider.NewMockProvider()
	p.AcceptAudio = true
	resp, err = newTestOrchestrator(nil).Triage(context.Background(), req, mockModel(t, p), nil, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Warnings)
	parts := p.LastParts()
	require.Len(t, parts, 3)
	assert.Equal(t, provider.Audio("audio/wav", []byte("wav")), parts[2])
}

func TestTriageNonCritical(t *testing.T) {
	p := provider.NewMockProvider()
	alerter := &mockAlerter{}
	o := newTestOrchestrator(alerter)
	loc := &alert.Location{Latitude: 12.9716, Longitude: 77.5946}

	resp, err := o.Triage(context.Background(), Request{Age: 25, Symptoms: "sore throat"}, mockModel(t, p), loc, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, p.DefaultResponse, resp.Report)
	assert.Equal(t, p.DefaultResponse, resp.Text)
	assert.False(t, resp.Decision.Critical)
	assert.Equal(t, 4, resp.Decision.Level)
	assert.Empty(t, resp.Decision.MapURL)
	assert.False(t, resp.AlertDispatched)
	assert.Empty(t, alerter.contacts)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "mock-triage", resp.Model)
}

func TestTriageCritical(t *testing.T) {
	p := provider.NewMockProvider()
	p.MockResponses["not breathing"] = "Urgency: Level 1. Start CPR."
	alerter := &mockAlerter{}
	o := newTestOrchestrator(alerter)
	loc := &alert.Location{Latitude: 12.9716, Longitude: 77.5946}

	resp, err := o.Triage(context.Background(), Request{Age: 60, Symptoms: "not breathing"}, mockModel(t, p), loc, "9876543210")
	require.NoError(t, err)
	assert.True(t, resp.Decision.Critical)
	assert.Equal(t, 1, resp.Decision.Level)
	assert.Equal(t, MethodSubstring, resp.Decision.Method)
	assert.Equal(t, "https://www.google.com/maps/search/hospital/@12.9716,77.5946,14z", resp.Decision.MapURL)
	assert.True(t, resp.AlertDispatched)
	assert.Equal(t, []string{"9876543210"}, alerter.contacts)
	assert.Equal(t, resp.Decision, alerter.decisions[0])
}

func TestTriageStructuredReply(t *testing.T) {
	p := provider.NewMockProvider()
	p.DefaultResponse = "```json\n{\"level\":2,\"reasoning\":\"possible stroke\",\"next_step\":\"call an ambulance\"}\n```"
	o := newTestOrchestrator(nil)

	resp, err := o.Triage(context.Background(), Request{Age: 70, Symptoms: "face drooping"}, mockModel(t, p), nil, "")
	require.NoError(t, err)
	assert.True(t, resp.Decision.Critical)
	assert.Equal(t, MethodStructured, resp.Decision.Method)
	assert.Equal(t, "Urgency: Level 2\n\nReasoning: possible stroke\n\nNext step: call an ambulance", resp.Report)
	assert.Equal(t, p.DefaultResponse, resp.Text)
	assert.False(t, resp.AlertDispatched)
}

func TestTriageInferenceError(t *testing.T) {
	p := provider.NewMockProvider()
	p.GenerateErr = errors.New("quota exceeded")
	alerter := &mockAlerter{}

	resp, err := newTestOrchestrator(alerter).Triage(context.Background(), Request{Age: 25, Symptoms: "fever"}, mockModel(t, p), nil, "1")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInference)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, alerter.contacts)
}

func TestTriageCancelled(t *testing.T) {
	p := provider.NewMockProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOrchestrator(nil).Triage(ctx, Request{Age: 25, Symptoms: "fever"}, mockModel(t, p), nil, "")
	assert.ErrorIs(t, err, ErrInference)
}

func TestTriageIsDeterministicWithStubModel(t *testing.T) {
	p := provider.NewMockProvider()
	p.DefaultResponse = "Urgency: Level 2"
	o := newTestOrchestrator(nil)
	loc := &alert.Location{Latitude: 10, Longitude: 20}
	req := Request{Age: 33, Symptoms: "severe bleeding"}

	first, err := o.Triage(context.Background(), req, mockModel(t, p), loc, "")
	require.NoError(t, err)
	second, err := o.Triage(context.Background(), req, mockModel(t, p), loc, "")
	require.NoError(t, err)

	assert.Equal(t, first.Decision, second.Decision)
	assert.Equal(t, first.Report, second.Report)
	assert.NotEqual(t, first.ID, second.ID)
}
