package provider

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

const (
	sseDoneSentinel = "[DONE]"
	maxSSEEventSize = 1 << 20
)

// splitSSEEvents is a bufio.SplitFunc yielding one server-sent event per
// token. Events end at a blank line in either LF or CRLF form.
func splitSSEEvents(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	lf := bytes.Index(data, []byte("\n\n"))
	crlf := bytes.Index(data, []byte("\r\n\r\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return crlf + 4, data[:crlf], nil
	case lf >= 0:
		return lf + 2, data[:lf], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// sseData joins the data lines of one event. ok is false for events
// without data, such as comments and keep-alives.
func sseData(event []byte) (string, bool) {
	var parts []string
	for _, line := range strings.Split(string(event), "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		parts = append(parts, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}

// chatCompletionChunk is one streamed OpenAI-compatible delta frame
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// readChatStream decodes an OpenAI-compatible SSE body and calls emit for
// each content delta. It stops at the [DONE] sentinel, at end of body, or
// when emit returns false. Malformed frames are skipped.
func readChatStream(body io.Reader, emit func(string) bool, onMalformed func(frame string, err error)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSEEventSize)
	scanner.Split(splitSSEEvents)

	for scanner.Scan() {
		data, ok := sseData(scanner.Bytes())
		if !ok {
			continue
		}
		if strings.TrimSpace(data) == sseDoneSentinel {
			return nil
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			if onMalformed != nil {
				onMalformed(data, err)
			}
			continue
		}
		for _, choice := range chunk.Choices {
			if !emit(choice.Delta.Content) {
				return nil
			}
		}
	}
	return scanner.Err()
}
