package alert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFast2SMSSend(t *testing.T) {
	var (
		gotAuth  string
		gotForm  map[string]string
		gotType  string
		gotMethod string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("authorization")
		gotType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"message": r.PostForm.Get("message"),
			"route":   r.PostForm.Get("route"),
			"numbers": r.PostForm.Get("numbers"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"return":true}`))
	}))
	defer server.Close()

	sms := NewFast2SMS(SMSConfig{Endpoint: server.URL, APIKey: "secret"}, zerolog.Nop())
	err := sms.Send(context.Background(), "9876543210", DefaultSMSMessage)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "secret", gotAuth)
	assert.Contains(t, gotType, "application/x-www-form-urlencoded")
	assert.Equal(t, map[string]string{
		"message": "EMERGENCY: Level 1/2 Triage.",
		"route":   "q",
		"numbers": "9876543210",
	}, gotForm)
}

func TestFast2SMSSendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sms := NewFast2SMS(SMSConfig{Endpoint: server.URL, APIKey: "secret"}, zerolog.Nop())
	err := sms.Send(context.Background(), "9876543210", "hello")
	assert.ErrorIs(t, err, ErrAlertDelivery)
	assert.Contains(t, err.Error(), "500")
}

func TestFast2SMSSendUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	sms := NewFast2SMS(SMSConfig{Endpoint: url, Timeout: time.Second}, zerolog.Nop())
	err := sms.Send(context.Background(), "9876543210", "hello")
	assert.ErrorIs(t, err, ErrAlertDelivery)
}
