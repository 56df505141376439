package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Domenick1991/studiobooking/config"
	"github.com/Domenick1991/studiobooking/internal/kafka"
)

type Outcome string

const (
	OutcomeSent          Outcome = "sent"
	OutcomeFailed        Outcome = "failed"
	OutcomeNotConfigured Outcome = "not_configured"
)

type Result struct {
	Outcome Outcome
	Err     error
}

// Channel is one of the two interchangeable transports.
type Channel interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

// Dispatcher sends rendered notifications over a single channel selected once
// at construction. It is safe for concurrent use: sends are serialized
// through a minimum inter-send delay so the upstream provider is never
// hammered. The dispatcher owns no state beyond that clock and the channel
// handle; both are fixed after construction.
type Dispatcher struct {
	channel  Channel
	baseURL  string
	minDelay time.Duration

	mu       sync.Mutex
	lastSend time.Time
}

// NewDispatcher picks the channel from configuration. The selection is
// static for the life of the process; there is no per-call failover.
func NewDispatcher(cfg *config.NotifyConfig) *Dispatcher {
	var ch Channel
	switch cfg.Channel {
	case "relay":
		ch = NewRelayChannel(cfg)
	default:
		ch = NewSMTPChannel(cfg)
	}

	return &Dispatcher{
		channel:  ch,
		baseURL:  cfg.PublicBaseURL,
		minDelay: time.Duration(cfg.MinSendDelayMS) * time.Millisecond,
	}
}

func (d *Dispatcher) ChannelName() string { return d.channel.Name() }

// Dispatch renders and sends one job. An unconfigured channel is an expected
// no-op, not an error; a reachable channel that fails to send comes back as
// OutcomeFailed. Neither outcome is ever fatal to the operation that queued
// the job.
func (d *Dispatcher) Dispatch(ctx context.Context, job kafka.NotificationJob) Result {
	if !d.channel.Configured() {
		return Result{Outcome: OutcomeNotConfigured}
	}

	msg := Render(job, d.baseURL)

	d.mu.Lock()
	defer d.mu.Unlock()

	if wait := d.minDelay - time.Since(d.lastSend); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return Result{Outcome: OutcomeFailed, Err: ctx.Err()}
		}
	}
	d.lastSend = time.Now()

	if err := d.channel.Send(ctx, msg); err != nil {
		log.Printf("notify: %s send to %s failed: %v", d.channel.Name(), msg.To, err)
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	return Result{Outcome: OutcomeSent}
}
