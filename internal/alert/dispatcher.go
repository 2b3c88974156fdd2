package alert

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sebrandon1/pulsepoint/internal/metrics"
)

// Dispatcher sends emergency SMS alerts in the background. Sends never block
// the caller and their failures are logged and counted, not returned.
// Concurrent sends of the same message to the same number are coalesced.
type Dispatcher struct {
	sender  SMSSender
	message string
	timeout time.Duration
	log     zerolog.Logger

	group singleflight.Group
	wg    sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A nil sender disables SMS.
func NewDispatcher(sender SMSSender, message string, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if message == "" {
		message = DefaultSMSMessage
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sender:  sender,
		message: message,
		timeout: timeout,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch starts an SMS send for a critical decision and reports whether one
// was started. The send keeps ctx's values but not its cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, contact string, decision Decision) bool {
	contact = strings.TrimSpace(contact)
	switch {
	case !decision.Critical:
		return false
	case d.sender == nil:
		d.log.Warn().Msg("critical triage but SMS is disabled")
		return false
	case contact == "":
		d.log.Warn().Msg("critical triage but no emergency contact given")
		return false
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()

		// Do reports shared to the leader too, so track who actually sent.
		var sent bool
		_, err, _ := d.group.Do(contact+"\x00"+d.message, func() (interface{}, error) {
			sent = true
			return nil, d.sender.Send(sendCtx, contact, d.message)
		})
		switch {
		case !sent:
			metrics.SMSSendsTotal.WithLabelValues("coalesced").Inc()
		case err != nil:
			metrics.SMSSendsTotal.WithLabelValues("failed").Inc()
			d.log.Error().Err(err).Int("level", decision.Level).Msg("emergency SMS failed")
		default:
			metrics.SMSSendsTotal.WithLabelValues("sent").Inc()
			d.log.Info().Int("level", decision.Level).Msg("emergency SMS sent")
		}
	}()
	return true
}

// Wait blocks until all in-flight sends finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
