package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/transport"
)

// Outcome is the provider-reported state of a queued job
type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// State is an engine-side lifecycle state reported to observers
type State string

const (
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimeout   State = "timeout"
)

// Submission is the result of submitting a job. Either Payload is final
// (the provider completed synchronously) or Handle identifies the job.
type Submission struct {
	Handle    any
	Payload   any
	Immediate bool
}

// PollResult is one poll's interpretation of the provider status
type PollResult struct {
	Outcome Outcome
	Payload any
	Detail  string
}

// Job is a provider-specific submit/poll/extract protocol
type Job struct {
	Provider string
	Submit   func(ctx context.Context) (*Submission, error)
	Poll     func(ctx context.Context, handle any) (*PollResult, error)
	// Fetch retrieves the final payload after a success status. Optional.
	Fetch    func(ctx context.Context, handle any, status any) (any, error)
	Extract  func(payload any) (string, error)
	Observer func(state State, attempt int)
}

// Budget bounds the polling loop
type Budget struct {
	MaxAttempts int
	Interval    time.Duration
}

// Total is the wall-clock budget the loop may spend sleeping
func (b Budget) Total() time.Duration {
	return time.Duration(b.MaxAttempts) * b.Interval
}

var (
	ImageBudget = Budget{MaxAttempts: 60, Interval: 2 * time.Second}
	VideoBudget = Budget{MaxAttempts: 150, Interval: 3 * time.Second}
)

// Engine drives jobs to a terminal state
type Engine struct {
	sleep transport.SleepFunc
}

// NewEngine creates an engine. A nil sleep uses transport.Sleep.
func NewEngine(sleep transport.SleepFunc) *Engine {
	if sleep == nil {
		sleep = transport.Sleep
	}
	return &Engine{sleep: sleep}
}

var defaultEngine = NewEngine(nil)

// Run drives job with the default engine
func Run(ctx context.Context, job Job, budget Budget) (string, error) {
	return defaultEngine.Run(ctx, job, budget)
}

// Run submits job and polls until it reaches a terminal state or the budget
// is exhausted. It makes at most budget.MaxAttempts poll calls.
func (e *Engine) Run(ctx context.Context, job Job, budget Budget) (string, error) {
	notify := func(state State, attempt int) {
		log.Printf("[JOB-%s] %s (attempt %d)", job.Provider, state, attempt)
		if job.Observer != nil {
			job.Observer(state, attempt)
		}
	}

	sub, err := job.Submit(ctx)
	if err != nil {
		notify(StateFailed, 0)
		return "", err
	}
	notify(StateSubmitted, 0)

	if sub.Immediate {
		return e.finish(job, sub.Payload, 0, notify)
	}

	for attempt := 1; attempt <= budget.MaxAttempts; attempt++ {
		if err := e.sleep(ctx, budget.Interval); err != nil {
			return "", apperr.Transport(job.Provider, err)
		}

		result, err := job.Poll(ctx, sub.Handle)
		if err != nil {
			notify(StateFailed, attempt)
			return "", err
		}

		switch result.Outcome {
		case Succeeded:
			payload := result.Payload
			if job.Fetch != nil {
				payload, err = job.Fetch(ctx, sub.Handle, result.Payload)
				if err != nil {
					notify(StateFailed, attempt)
					return "", err
				}
			}
			return e.finish(job, payload, attempt, notify)
		case Failed:
			notify(StateFailed, attempt)
			return "", apperr.Terminal(job.Provider, result.Detail)
		default:
			if attempt == 1 {
				notify(StatePolling, attempt)
			}
		}
	}

	notify(StateTimeout, budget.MaxAttempts)
	msg := fmt.Sprintf("%s generation timed out after %v (%d attempts)", job.Provider, budget.Total(), budget.MaxAttempts)
	return "", apperr.New(apperr.KindTimeout, job.Provider, msg, nil)
}

func (e *Engine) finish(job Job, payload any, attempt int, notify func(State, int)) (string, error) {
	url, err := job.Extract(payload)
	if err != nil {
		notify(StateFailed, attempt)
		return "", err
	}
	if url == "" {
		notify(StateFailed, attempt)
		return "", apperr.Extraction(job.Provider)
	}
	notify(StateCompleted, attempt)
	return url, nil
}

// ExtractPaths builds an extractor that returns the first non-empty string at
// any of paths
func ExtractPaths(provider string, paths ...string) func(any) (string, error) {
	return func(payload any) (string, error) {
		if url, ok := transport.FirstString(payload, paths...); ok {
			return url, nil
		}
		return "", apperr.Extraction(provider)
	}
}
