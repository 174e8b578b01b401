package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"quiz-capture-service/internal/domain"
)

const (
	// DefaultBaseURL targets the DeepSeek OpenAI-compatible API.
	DefaultBaseURL = "https://api.deepseek.com"
	// DefaultModel is the fixed chat model used for every completion.
	DefaultModel = "deepseek-chat"

	// NoQuizDataMessage is stored as the solution, without any API call, when
	// the submission payload carries no quiz data.
	NoQuizDataMessage = "Aucune donnée de quiz disponible pour l'analyse."
)

// User-facing messages for the classified completion failures. The product
// speaks French; these strings end up in stored records and broadcasts.
const (
	msgInsufficientBalance = "Le service AI est actuellement indisponible en raison d'un solde insuffisant. Veuillez réessayer plus tard ou contacter le support."
	msgAuthFailed          = "L'authentification du service AI a échoué. Veuillez vérifier vos identifiants API."
	msgRateLimited         = "Limite de taux du service AI dépassée. Veuillez réessayer plus tard."
	msgSolveFailed         = "Échec de l'obtention de la solution AI. Veuillez réessayer plus tard."
	msgExtractFailed       = "Échec de l'extraction du QCM. Veuillez réessayer plus tard."
)

const (
	solveSystemPrompt = "Vous êtes un assistant spécialisé dans la résolution de quiz. Fournissez des réponses brèves en français."
	solvePromptPrefix = "Nous sommes dans le domaine de la SGBD NOSQL et Lac de données. Veuillez résoudre ce quiz : "

	extractSystemPrompt = "Vous êtes un assistant spécialisé dans l'extraction de QCM à partir de pages HTML. Votre tâche est d'analyser le HTML fourni et d'extraire uniquement les questions et réponses du QCM, en les structurant de manière claire et organisée."
	extractPromptPrefix = `A noter que s'il n'y a pas de QCM dans le HTML, veuillez répondre "NONE". Veuillez extraire le QCM de ce HTML : `
)

// ServiceError is a completion failure classified into a fixed user-facing
// message. StatusCode is zero for transport-level failures.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// Message is one entry of the chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client issues chat completions against a DeepSeek-compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a Client. Empty baseURL and model fall back to the
// DeepSeek defaults. No timeout is set beyond the transport's own.
func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

// SolveQuiz asks the model for a brief French answer to the submitted quiz.
// Payloads without quiz data short-circuit with NoQuizDataMessage and no
// external call.
func (c *Client) SolveQuiz(ctx context.Context, content json.RawMessage) (string, error) {
	if !domain.HasQuizData(content) {
		return NoQuizDataMessage, nil
	}
	generated := domain.GeneratedField(content)
	if generated == nil {
		generated = json.RawMessage("null")
	}
	return c.complete(ctx, solveSystemPrompt, solvePromptPrefix+string(generated), msgSolveFailed)
}

// ExtractQuiz asks the model to pull the QCM out of raw HTML. The model
// answers the literal sentinel "NONE" when the page holds no quiz; callers
// interpret that sentinel.
func (c *Client) ExtractQuiz(ctx context.Context, html string) (string, error) {
	return c.complete(ctx, extractSystemPrompt, extractPromptPrefix+html, msgExtractFailed)
}

// chatRequest is the JSON body for POST /chat/completions.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// chatResponse is the OpenAI-style completion response.
type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt, fallback string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ServiceError{Message: fallback}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classify(resp.StatusCode, fallback)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ServiceError{Message: fallback}
	}
	if len(result.Choices) == 0 {
		return "", &ServiceError{Message: fallback}
	}
	return result.Choices[0].Message.Content, nil
}

// classify maps the completion endpoint's status code onto one of the four
// fixed failure buckets. No retry happens anywhere; every failure propagates
// once, immediately.
func classify(status int, fallback string) *ServiceError {
	switch status {
	case http.StatusPaymentRequired:
		return &ServiceError{StatusCode: status, Message: msgInsufficientBalance}
	case http.StatusUnauthorized:
		return &ServiceError{StatusCode: status, Message: msgAuthFailed}
	case http.StatusTooManyRequests:
		return &ServiceError{StatusCode: status, Message: msgRateLimited}
	default:
		return &ServiceError{StatusCode: status, Message: fallback}
	}
}
