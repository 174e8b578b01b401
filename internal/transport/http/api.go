package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-capture-service/internal/app"
	"quiz-capture-service/internal/domain"
)

const maxBodySize = 1 << 20 // 1MB

// API exposes the REST surface over the three application services.
type API struct {
	submissions *app.SubmissionService
	extraction  *app.ExtractionService
	config      *app.ConfigService
}

func NewAPI(submissions *app.SubmissionService, extraction *app.ExtractionService, config *app.ConfigService) *API {
	return &API{
		submissions: submissions,
		extraction:  extraction,
		config:      config,
	}
}

// Routes builds the /api router.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/data", a.handleSubmit)
	r.Get("/api/data", a.handleListData)
	r.Post("/api/extract-quiz", a.handleExtract)
	r.Get("/api/extracted-quizzes", a.handleListQuizzes)
	r.Get("/api/config/{key}", a.handleGetConfig)
	r.Put("/api/config/{key}", a.handleSetConfig)
	return r
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", "An error occurred while processing your request")
		return
	}
	if len(body) == 0 || !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "An error occurred while processing your request")
		return
	}

	rec, err := a.submissions.Submit(r.Context(), body)
	if err != nil {
		log.Printf("error saving data: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "An error occurred while processing your request")
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No data to process"})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (a *API) handleListData(w http.ResponseWriter, r *http.Request) {
	records, err := a.submissions.ListRecent(r.Context())
	if err != nil {
		log.Printf("error retrieving data: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []domain.Submission{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML string `json:"html"`
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "Request body is empty", "Please provide HTML content in the request body")
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body is empty", "Please provide HTML content in the request body")
		return
	}

	rec, err := a.extraction.Extract(r.Context(), req.HTML)
	switch {
	case errors.Is(err, domain.ErrEmptyHTML):
		writeError(w, http.StatusBadRequest, "HTML content is required", "Please provide HTML content in the request body")
	case errors.Is(err, domain.ErrFeatureDisabled):
		writeError(w, http.StatusForbidden, "Quiz extraction feature is currently disabled", "Please contact the administrator to enable this feature")
	case err != nil:
		log.Printf("error processing html: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "An error occurred while processing the HTML")
	default:
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (a *API) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	records, err := a.extraction.ListRecent(r.Context())
	if err != nil {
		log.Printf("error retrieving extracted quizzes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []domain.ExtractedQuiz{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entry, err := a.config.Get(r.Context(), key)
	if errors.Is(err, domain.ErrConfigNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Configuration not found"})
		return
	}
	if err != nil {
		log.Printf("error getting configuration: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": entry.Key, "value": entry.Value})
}

func (a *API) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil || len(req.Value) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Value is required"})
		return
	}
	var value any
	if err := json.Unmarshal(req.Value, &value); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Value is required"})
		return
	}

	entry, err := a.config.Set(r.Context(), key, value)
	if err != nil {
		log.Printf("error updating configuration: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, map[string]string{"error": message, "details": details})
}
