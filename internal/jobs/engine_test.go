package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/SceneForge/internal/apperr"
)

// noSleep records requested delays without waiting
type noSleep struct {
	calls int
	total time.Duration
}

func (s *noSleep) sleep(ctx context.Context, d time.Duration) error {
	s.calls++
	s.total += d
	return ctx.Err()
}

func queuedJob(pendingPolls int, polls *int) Job {
	return Job{
		Provider: "fake",
		Submit: func(ctx context.Context) (*Submission, error) {
			return &Submission{Handle: "job-1"}, nil
		},
		Poll: func(ctx context.Context, handle any) (*PollResult, error) {
			*polls++
			if *polls <= pendingPolls {
				return &PollResult{Outcome: Pending}, nil
			}
			return &PollResult{
				Outcome: Succeeded,
				Payload: map[string]any{"images": []any{map[string]any{"url": "https://cdn/x.png"}}},
			}, nil
		},
		Extract: ExtractPaths("fake", "images.0.url", "image.url"),
	}
}

func TestRun_CompletesAfterPendingPolls(t *testing.T) {
	for _, k := range []int{0, 1, 5} {
		s := &noSleep{}
		polls := 0
		url, err := NewEngine(s.sleep).Run(context.Background(), queuedJob(k, &polls), Budget{MaxAttempts: 10, Interval: time.Second})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/x.png", url)
		assert.Equal(t, k+1, polls)
		assert.Equal(t, k+1, s.calls)
	}
}

func TestRun_TimeoutAfterExactlyMaxAttempts(t *testing.T) {
	s := &noSleep{}
	polls := 0
	_, err := NewEngine(s.sleep).Run(context.Background(), queuedJob(1000, &polls), Budget{MaxAttempts: 4, Interval: 2 * time.Second})
	require.Error(t, err)
	assert.Equal(t, 4, polls)
	assert.Equal(t, 8*time.Second, s.total)
	assert.True(t, apperr.IsKind(err, apperr.KindTimeout))
	assert.Equal(t, "fake generation timed out after 8s (4 attempts)", err.Error())
}

func TestRun_ImmediateCompletion(t *testing.T) {
	s := &noSleep{}
	polled := false
	job := Job{
		Provider: "replicate",
		Submit: func(ctx context.Context) (*Submission, error) {
			return &Submission{Immediate: true, Payload: map[string]any{"output": "https://cdn/y.png"}}, nil
		},
		Poll: func(ctx context.Context, handle any) (*PollResult, error) {
			polled = true
			return nil, errors.New("unexpected poll")
		},
		Extract: ExtractPaths("replicate", "output", "output.0"),
	}

	url, err := NewEngine(s.sleep).Run(context.Background(), job, ImageBudget)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/y.png", url)
	assert.False(t, polled)
	assert.Zero(t, s.calls)
}

func TestRun_TerminalFailure(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		wantMsg string
	}{
		{"WithDetail", "NSFW content detected", "NSFW content detected"},
		{"Fallback", "", "fake generation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &noSleep{}
			job := Job{
				Provider: "fake",
				Submit: func(ctx context.Context) (*Submission, error) {
					return &Submission{Handle: "h"}, nil
				},
				Poll: func(ctx context.Context, handle any) (*PollResult, error) {
					return &PollResult{Outcome: Failed, Detail: tt.detail}, nil
				},
				Extract: ExtractPaths("fake", "url"),
			}
			_, err := NewEngine(s.sleep).Run(context.Background(), job, ImageBudget)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindTerminal))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestRun_FetchAfterSuccess(t *testing.T) {
	s := &noSleep{}
	var fetchedWith any
	job := Job{
		Provider: "fal",
		Submit: func(ctx context.Context) (*Submission, error) {
			return &Submission{Handle: "req-1"}, nil
		},
		Poll: func(ctx context.Context, handle any) (*PollResult, error) {
			return &PollResult{Outcome: Succeeded, Payload: map[string]any{"status": "COMPLETED"}}, nil
		},
		Fetch: func(ctx context.Context, handle any, status any) (any, error) {
			fetchedWith = handle
			return map[string]any{"video": map[string]any{"url": "https://cdn/v.mp4"}}, nil
		},
		Extract: ExtractPaths("fal", "video.url"),
	}

	url, err := NewEngine(s.sleep).Run(context.Background(), job, VideoBudget)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/v.mp4", url)
	assert.Equal(t, "req-1", fetchedWith)
}

func TestRun_ExtractionError(t *testing.T) {
	s := &noSleep{}
	job := Job{
		Provider: "fal",
		Submit: func(ctx context.Context) (*Submission, error) {
			return &Submission{Immediate: true, Payload: map[string]any{"images": []any{}}}, nil
		},
		Extract: ExtractPaths("fal", "images.0.url"),
	}

	_, err := NewEngine(s.sleep).Run(context.Background(), job, ImageBudget)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindExtraction))
}

func TestRun_PollErrorAborts(t *testing.T) {
	s := &noSleep{}
	polls := 0
	job := Job{
		Provider: "fal",
		Submit: func(ctx context.Context) (*Submission, error) {
			return &Submission{Handle: "h"}, nil
		},
		Poll: func(ctx context.Context, handle any) (*PollResult, error) {
			polls++
			return nil, apperr.Rejection("fal", 500, "")
		},
		Extract: ExtractPaths("fal", "url"),
	}

	_, err := NewEngine(s.sleep).Run(context.Background(), job, ImageBudget)
	require.Error(t, err)
	assert.Equal(t, 1, polls)
	assert.Equal(t, "fal error 500", err.Error())
}

func TestRun_SubmitErrorPropagates(t *testing.T) {
	job := Job{
		Provider: "fal",
		Submit: func(ctx context.Context) (*Submission, error) {
			return nil, apperr.Rejection("fal", 401, "bad key")
		},
	}
	_, err := Run(context.Background(), job, ImageBudget)
	require.Error(t, err)
	assert.Equal(t, "bad key", err.Error())
}

func TestRun_ObserverSeesTransitions(t *testing.T) {
	s := &noSleep{}
	polls := 0
	job := queuedJob(2, &polls)
	var states []State
	job.Observer = func(state State, attempt int) {
		states = append(states, state)
	}

	_, err := NewEngine(s.sleep).Run(context.Background(), job, ImageBudget)
	require.NoError(t, err)
	assert.Equal(t, []State{StateSubmitted, StatePolling, StateCompleted}, states)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &noSleep{}
	polls := 0
	_, err := NewEngine(s.sleep).Run(ctx, queuedJob(5, &polls), ImageBudget)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTransport))
	assert.Zero(t, polls)
}
