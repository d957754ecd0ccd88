// Package session is the client-side adapter over a running session
// workflow. It maps client operations to signals and turns the indexed
// query protocol into a blocking event stream with adaptive poll backoff.
package session

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/converter"

	"github.com/agentloop/agentloop/internal/events"
	wf "github.com/agentloop/agentloop/internal/workflow"
)

// Polling and retry bounds.
const (
	pollMinInterval = 50 * time.Millisecond
	pollMaxInterval = time.Second

	submitAttempts   = 3
	submitRetryDelay = 200 * time.Millisecond
)

// Transport is the slice of the Temporal client the session needs.
// client.Client satisfies it.
type Transport interface {
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
	QueryWorkflow(ctx context.Context, workflowID, runID, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

// Op is a client operation that maps to one workflow signal.
type Op interface {
	signal() (name string, payload interface{})
}

// UserInputOp submits a user turn.
type UserInputOp struct {
	Text string
	Cwd  string
}

func (o UserInputOp) signal() (string, interface{}) {
	return wf.SignalUserTurn, wf.UserTurnPayload{
		Items: []wf.UserInput{{Text: o.Text}},
		Cwd:   o.Cwd,
	}
}

// ApprovalOp resolves a pending tool approval.
type ApprovalOp struct {
	CallID  string
	Approve bool
}

func (o ApprovalOp) signal() (string, interface{}) {
	decision := wf.DecisionDeny
	if o.Approve {
		decision = wf.DecisionApprove
	}
	return wf.SignalApproval, wf.ApprovalPayload{CallID: o.CallID, Decision: decision}
}

// CancelOp aborts the current turn.
type CancelOp struct{}

func (o CancelOp) signal() (string, interface{}) {
	return wf.SignalCancel, wf.CancelPayload{}
}

// ShutdownOp ends the session.
type ShutdownOp struct{}

func (o ShutdownOp) signal() (string, interface{}) {
	return wf.SignalShutdown, wf.ShutdownPayload{}
}

// Session presents a single-process-looking interface over a remote
// workflow. It owns the client watermark and nothing server-side. Not safe
// for concurrent use; drive it from one goroutine.
type Session struct {
	transport  Transport
	workflowID string
	runID      string

	watermark uint64
	interval  time.Duration

	// queue holds drained but not yet returned events, including
	// synthetic local Error events.
	queue []events.Event
}

// New creates a session bound to the given workflow execution.
func New(transport Transport, workflowID, runID string) *Session {
	return &Session{
		transport:  transport,
		workflowID: workflowID,
		runID:      runID,
		interval:   pollMinInterval,
	}
}

// Watermark returns the next event index the session will request.
func (s *Session) Watermark() uint64 {
	return s.watermark
}

// Submit sends op as a workflow signal. Transport failures are retried
// with bounded backoff; the final failure is returned and also surfaced as
// a synthetic non-recoverable Error event on the local stream.
func (s *Session) Submit(ctx context.Context, op Op) error {
	name, payload := op.signal()

	var err error
	for attempt := 0; attempt < submitAttempts; attempt++ {
		if attempt > 0 {
			if sleepErr := sleep(ctx, submitRetryDelay*time.Duration(attempt)); sleepErr != nil {
				return sleepErr
			}
		}
		err = s.transport.SignalWorkflow(ctx, s.workflowID, s.runID, name, payload)
		if err == nil {
			return nil
		}
	}

	s.queue = append(s.queue, events.Event{
		Kind:    events.KindError,
		Message: fmt.Sprintf("failed to send %s: %v", name, err),
	})
	return fmt.Errorf("failed to send %s signal: %w", name, err)
}

// NextEvent blocks until an event is available and returns it. It polls
// get_events_since with an exponential backoff that resets on any
// non-empty poll. Cancelling ctx returns its error without consuming an
// event.
func (s *Session) NextEvent(ctx context.Context) (events.Event, error) {
	for {
		if len(s.queue) > 0 {
			event := s.queue[0]
			s.queue = s.queue[1:]
			return event, nil
		}

		slice, err := s.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return events.Event{}, ctx.Err()
			}
			// Surface the transport failure in-stream; the caller
			// decides how to render it.
			return events.Event{
				Kind:        events.KindError,
				Message:     "event polling failed: " + err.Error(),
				Recoverable: false,
			}, nil
		}

		if slice.FirstAvailableIndex > s.watermark {
			// Older entries were compacted away. Resync past the gap.
			s.watermark = slice.FirstAvailableIndex
		}

		if len(slice.Events) > 0 {
			s.interval = pollMinInterval
			for _, indexed := range slice.Events {
				s.queue = append(s.queue, indexed.Event)
			}
			s.watermark = slice.Events[len(slice.Events)-1].Index + 1
			continue
		}

		if err := sleep(ctx, s.interval); err != nil {
			return events.Event{}, err
		}
		s.interval *= 2
		if s.interval > pollMaxInterval {
			s.interval = pollMaxInterval
		}
	}
}

// poll runs one get_events_since query, retrying transient failures.
func (s *Session) poll(ctx context.Context) (events.Slice, error) {
	var lastErr error
	for attempt := 0; attempt < submitAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, submitRetryDelay*time.Duration(attempt)); err != nil {
				return events.Slice{}, err
			}
		}
		value, err := s.transport.QueryWorkflow(ctx, s.workflowID, s.runID, wf.QueryGetEventsSince, s.watermark)
		if err != nil {
			lastErr = err
			continue
		}
		var slice events.Slice
		if err := value.Get(&slice); err != nil {
			lastErr = err
			continue
		}
		return slice, nil
	}
	return events.Slice{}, lastErr
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
