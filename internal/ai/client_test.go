package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func completionServer(t *testing.T, status int, reply string, captured *chatRequest, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func TestSolveQuizCallsEndpoint(t *testing.T) {
	var (
		captured chatRequest
		calls    int32
	)
	server := completionServer(t, http.StatusOK, "Réponse: 42", &captured, &calls)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "")
	result, err := client.SolveQuiz(context.Background(), json.RawMessage(`{"data":{"generated":"Q1?"}}`))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if result != "Réponse: 42" {
		t.Fatalf("unexpected result %q", result)
	}

	if captured.Model != DefaultModel {
		t.Fatalf("expected model %s, got %s", DefaultModel, captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("unexpected message exchange %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, `"Q1?"`) {
		t.Fatalf("expected serialized generated field in prompt, got %q", captured.Messages[1].Content)
	}
}

func TestSolveQuizShortCircuitsWithoutData(t *testing.T) {
	var calls int32
	server := completionServer(t, http.StatusOK, "unused", nil, &calls)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "")
	for _, body := range []string{`{"data":{}}`, `{}`} {
		result, err := client.SolveQuiz(context.Background(), json.RawMessage(body))
		if err != nil {
			t.Fatalf("solve %s: %v", body, err)
		}
		if result != NoQuizDataMessage {
			t.Fatalf("expected fixed no-data message, got %q", result)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no API call, got %d", calls)
	}
}

func TestSolveQuizClassifiesFailures(t *testing.T) {
	cases := []struct {
		status  int
		message string
	}{
		{http.StatusPaymentRequired, msgInsufficientBalance},
		{http.StatusUnauthorized, msgAuthFailed},
		{http.StatusTooManyRequests, msgRateLimited},
		{http.StatusInternalServerError, msgSolveFailed},
		{http.StatusBadGateway, msgSolveFailed},
	}
	for _, tc := range cases {
		var calls int32
		server := completionServer(t, tc.status, "", nil, &calls)

		client := NewClient(server.URL, "test-key", "")
		_, err := client.SolveQuiz(context.Background(), json.RawMessage(`{"data":{"generated":"Q1?"}}`))
		server.Close()

		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("status %d: expected ServiceError, got %v", tc.status, err)
		}
		if svcErr.StatusCode != tc.status || svcErr.Message != tc.message {
			t.Fatalf("status %d: got %+v", tc.status, svcErr)
		}
		if calls != 1 {
			t.Fatalf("status %d: expected exactly one call, got %d", tc.status, calls)
		}
	}
}

func TestExtractQuizUsesOwnFallback(t *testing.T) {
	var calls int32
	server := completionServer(t, http.StatusInternalServerError, "", nil, &calls)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "")
	_, err := client.ExtractQuiz(context.Background(), "<p>page</p>")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.Message != msgExtractFailed {
		t.Fatalf("expected extract fallback message, got %q", svcErr.Message)
	}
}

func TestExtractQuizReturnsSentinelVerbatim(t *testing.T) {
	var (
		captured chatRequest
		calls    int32
	)
	server := completionServer(t, http.StatusOK, "NONE", &captured, &calls)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "")
	result, err := client.ExtractQuiz(context.Background(), "<p>no quiz here</p>")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result != "NONE" {
		t.Fatalf("expected sentinel passed through, got %q", result)
	}
	if !strings.Contains(captured.Messages[1].Content, "<p>no quiz here</p>") {
		t.Fatalf("expected raw HTML in prompt, got %q", captured.Messages[1].Content)
	}
}
