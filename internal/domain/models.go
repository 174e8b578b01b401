package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// QuizStatus is the lifecycle state of an extracted quiz.
type QuizStatus string

const (
	StatusPending   QuizStatus = "pending"
	StatusCompleted QuizStatus = "completed"
	StatusIgnored   QuizStatus = "ignored"
	StatusError     QuizStatus = "error"
)

// Terminal reports whether no further transition is allowed from s.
func (s QuizStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusIgnored || s == StatusError
}

// ConfigEntry is a single key/value configuration record.
type ConfigEntry struct {
	Key         string    `json:"key"`
	Value       any       `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Submission is a captured quiz payload. Content is the caller's body
// preserved byte-for-byte; the service only ever reads the `data` and
// `data.generated` sub-fields. AISolution and AIError are mutually
// exclusive and both empty until enrichment finishes.
type Submission struct {
	ID         string          `json:"id"`
	Content    json.RawMessage `json:"content"`
	AISolution string          `json:"aiSolution,omitempty"`
	AIError    string          `json:"aiError,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ExtractedQuiz is the record of one HTML extraction request.
type ExtractedQuiz struct {
	ID               string     `json:"id"`
	ExtractedContent string     `json:"extractedContent"`
	Status           QuizStatus `json:"status"`
	Error            string     `json:"error,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
}

// ExtractionOutcome is the one-shot transition applied to an extracted quiz
// after enrichment. An empty ExtractedContent leaves the stored content
// untouched (the error path keeps the placeholder).
type ExtractionOutcome struct {
	Status           QuizStatus
	ExtractedContent string
	Error            string
}

// payloadEnvelope mirrors the only known sub-field of the otherwise opaque payload.
type payloadEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// HasQuizData reports whether the payload carries a non-empty `data` field.
// Submissions without one are not worth a model call and are never persisted.
func HasQuizData(content json.RawMessage) bool {
	var env payloadEnvelope
	if err := json.Unmarshal(content, &env); err != nil {
		return false
	}
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		return len(fields) > 0
	}
	// non-object data counts as present
	return true
}

// GeneratedField returns the serialized `data.generated` sub-field, or nil
// when absent.
func GeneratedField(content json.RawMessage) json.RawMessage {
	var env struct {
		Data struct {
			Generated json.RawMessage `json:"generated"`
		} `json:"data"`
	}
	if err := json.Unmarshal(content, &env); err != nil {
		return nil
	}
	return env.Data.Generated
}
