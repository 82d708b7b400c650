package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

func newTestLLM(t *testing.T, endpoint string) *OpenAILLMProvider {
	t.Helper()
	provider, err := NewOpenAILLMProvider(types.ProviderConfig{
		Name:     "openai",
		Enabled:  true,
		Endpoint: endpoint,
		APIKey:   "test-key",
		Model:    "gpt-test",
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

// sseServer writes each frame in its own flushed write
func sseServer(t *testing.T, frames ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if !reqBody.Stream {
			t.Error("Expected stream=true in request")
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			w.Write([]byte(frame))
			flusher.Flush()
		}
	}))
}

type recordedStream struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func collect(t *testing.T, p TextProvider, req CompletionRequest) *recordedStream {
	t.Helper()
	rec := &recordedStream{done: make(chan struct{})}
	StreamCompletion(context.Background(), p, req,
		func(chunk string) {
			rec.mu.Lock()
			rec.events = append(rec.events, "chunk:"+chunk)
			rec.mu.Unlock()
		},
		func(text string) {
			rec.mu.Lock()
			rec.events = append(rec.events, "done:"+text)
			rec.mu.Unlock()
			close(rec.done)
		},
		func(err error) {
			rec.mu.Lock()
			rec.events = append(rec.events, "error:"+err.Error())
			rec.mu.Unlock()
			close(rec.done)
		},
	)

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not finish")
	}
	return rec
}

func TestOpenAILLMProvider_StreamOrder(t *testing.T) {
	server := sseServer(t,
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n",
		"data: [DONE]\n\n",
	)
	defer server.Close()

	rec := collect(t, newTestLLM(t, server.URL), CompletionRequest{UserPrompt: "hi"})

	want := []string{"chunk:Hel", "chunk:lo", "done:Hello"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("Expected %v, got %v", want, rec.events)
	}
}

func TestOpenAILLMProvider_StreamFramesSplitAcrossReads(t *testing.T) {
	server := sseServer(t,
		"data: {\"choices\":[{\"del",
		"ta\":{\"content\":\"A\"}}]}\r\n\r\ndata: {\"choices\":[{\"delta\":{\"content\":\"B\"}}]}\r\n\r\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"C\"}}]}\n\ndata: [DONE]\n\n",
	)
	defer server.Close()

	rec := collect(t, newTestLLM(t, server.URL), CompletionRequest{UserPrompt: "hi"})

	want := []string{"chunk:A", "chunk:B", "chunk:C", "done:ABC"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("Expected %v, got %v", want, rec.events)
	}
}

func TestOpenAILLMProvider_StreamSkipsMalformedFrames(t *testing.T) {
	server := sseServer(t,
		": keep-alive\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n",
		"data: {broken\n\n",
		"data: {\"choices\":[{\"delta\":{}}]}\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"!\"}}]}\n\n",
	)
	defer server.Close()

	// no [DONE]: end of body still completes normally
	rec := collect(t, newTestLLM(t, server.URL), CompletionRequest{UserPrompt: "hi"})

	want := []string{"chunk:ok", "chunk:!", "done:ok!"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("Expected %v, got %v", want, rec.events)
	}
}

func TestOpenAILLMProvider_StreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	rec := collect(t, newTestLLM(t, server.URL), CompletionRequest{UserPrompt: "hi"})

	want := []string{"error:bad key"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("Expected %v, got %v", want, rec.events)
	}
}

func TestOpenAILLMProvider_StreamWait(t *testing.T) {
	server := sseServer(t,
		"data: {\"choices\":[{\"delta\":{\"content\":\"one \"}}]}\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"two\"}}]}\n\n",
		"data: [DONE]\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n",
	)
	defer server.Close()

	// Wait drains chunks nobody read
	text, err := newTestLLM(t, server.URL).Stream(context.Background(), CompletionRequest{UserPrompt: "hi"}).Wait()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "one two" {
		t.Errorf("Expected 'one two', got %q", text)
	}
}

func TestOpenAILLMProvider_MissingCredential(t *testing.T) {
	provider, _ := NewOpenAILLMProvider(types.ProviderConfig{Name: "openai"})
	_, err := provider.Stream(context.Background(), CompletionRequest{UserPrompt: "hi"}).Wait()
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestOpenAILLMProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer per-request" {
			t.Errorf("Expected per-request credential, got %s", r.Header.Get("Authorization"))
		}

		var reqBody chatCompletionRequest
		json.NewDecoder(r.Body).Decode(&reqBody)
		if reqBody.Stream {
			t.Error("Complete must not stream")
		}
		if len(reqBody.Messages) != 2 || reqBody.Messages[0].Role != "system" {
			t.Errorf("Expected system and user messages, got %+v", reqBody.Messages)
		}
		if reqBody.Model != "gpt-override" {
			t.Errorf("Expected requested model, got %s", reqBody.Model)
		}

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A sharper line."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	text, err := newTestLLM(t, server.URL).Complete(context.Background(), CompletionRequest{
		Credential:   "per-request",
		Model:        "gpt-override",
		SystemPrompt: "Rewrite.",
		UserPrompt:   "A line.",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "A sharper line." {
		t.Errorf("Unexpected text: %q", text)
	}
}

func TestOpenAILLMProvider_CompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestLLM(t, server.URL).Complete(context.Background(), CompletionRequest{UserPrompt: "x"})
	if !apperr.IsKind(err, apperr.KindMalformed) {
		t.Errorf("Expected malformed error, got %v", err)
	}
}

func TestSplitSSEEvents(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		atEOF     bool
		wantAdv   int
		wantToken string
	}{
		{"LF", "data: a\n\ndata: b", false, 9, "data: a"},
		{"CRLF", "data: a\r\n\r\ndata: b", false, 11, "data: a"},
		{"Incomplete", "data: a\n", false, 0, ""},
		{"TrailingAtEOF", "data: a", true, 7, "data: a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv, token, err := splitSSEEvents([]byte(tt.data), tt.atEOF)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if adv != tt.wantAdv || string(token) != tt.wantToken {
				t.Errorf("Expected (%d, %q), got (%d, %q)", tt.wantAdv, tt.wantToken, adv, token)
			}
		})
	}
}
