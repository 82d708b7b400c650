package provider

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/jobs"
	"github.com/unalkalkan/SceneForge/internal/transport"
)

const defaultFalQueueEndpoint = "https://queue.fal.run"

// falHandle identifies a queued fal request
type falHandle struct {
	RequestID   string
	StatusURL   string
	ResponseURL string
}

// falQueue speaks fal's submit/status/result queue protocol, shared by the
// image and video adapters
type falQueue struct {
	base
	logTag string
	engine *jobs.Engine
	budget jobs.Budget
}

func (q *falQueue) submitRequest(apiKey, model string, body map[string]any) transport.Request {
	return transport.Request{
		Method: http.MethodPost,
		URL:    q.endpoint(defaultFalQueueEndpoint) + "/" + strings.Trim(model, "/"),
		Header: map[string]string{"Authorization": "Key " + apiKey},
		Body:   body,
	}
}

// run submits body to model and polls until an asset URL is found at one of
// paths
func (q *falQueue) run(ctx context.Context, apiKey, model string, body map[string]any, paths []string) (string, error) {
	auth := map[string]string{"Authorization": "Key " + apiKey}

	job := jobs.Job{
		Provider: q.display,
		Submit: func(ctx context.Context) (*jobs.Submission, error) {
			payload, err := q.client.JSON(ctx, q.submitRequest(apiKey, model, body))
			if err != nil {
				return nil, err
			}
			handle, err := q.parseSubmission(model, payload)
			if err != nil {
				return nil, err
			}
			log.Printf("[%s] Submitted request %s to %s", q.logTag, handle.RequestID, model)
			return &jobs.Submission{Handle: handle}, nil
		},
		Poll: func(ctx context.Context, h any) (*jobs.PollResult, error) {
			handle := h.(*falHandle)
			payload, err := q.client.JSON(ctx, transport.Request{URL: handle.StatusURL, Header: auth})
			if err != nil {
				return nil, err
			}
			return interpretFalStatus(payload), nil
		},
		Fetch: func(ctx context.Context, h any, _ any) (any, error) {
			handle := h.(*falHandle)
			return q.client.JSON(ctx, transport.Request{URL: handle.ResponseURL, Header: auth})
		},
		Extract: jobs.ExtractPaths(q.display, paths...),
	}

	return q.engine.Run(ctx, job, q.budget)
}

func (q *falQueue) parseSubmission(model string, payload any) (*falHandle, error) {
	id, ok := transport.FirstString(payload, "request_id")
	if !ok {
		return nil, apperr.Malformed(q.display, fmt.Errorf("submission without request_id"))
	}
	handle := &falHandle{RequestID: id}
	handle.StatusURL, _ = transport.FirstString(payload, "status_url")
	handle.ResponseURL, _ = transport.FirstString(payload, "response_url")

	// Older queue responses omit the URLs, so derive them from the model path
	requestBase := q.endpoint(defaultFalQueueEndpoint) + "/" + strings.Trim(model, "/") + "/requests/" + id
	if handle.StatusURL == "" {
		handle.StatusURL = requestBase + "/status"
	}
	if handle.ResponseURL == "" {
		handle.ResponseURL = requestBase
	}
	return handle, nil
}

// interpretFalStatus maps a fal status payload onto a poll outcome
func interpretFalStatus(payload any) *jobs.PollResult {
	if detail, ok := transport.FirstString(payload, "error", "error.message"); ok {
		return &jobs.PollResult{Outcome: jobs.Failed, Payload: payload, Detail: detail}
	}
	status, _ := transport.FirstString(payload, "status")
	switch strings.ToUpper(status) {
	case "COMPLETED":
		return &jobs.PollResult{Outcome: jobs.Succeeded, Payload: payload}
	case "FAILED", "ERROR":
		return &jobs.PollResult{Outcome: jobs.Failed, Payload: payload}
	default:
		return &jobs.PollResult{Outcome: jobs.Pending, Payload: payload}
	}
}

// referenceField names the request field carrying a reference image.
// Reference-consistency models take the image itself, others use it as a
// prompt hint.
func referenceField(consistent bool) string {
	if consistent {
		return "image_url"
	}
	return "image_prompt"
}
