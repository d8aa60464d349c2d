package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"internationally/internal/store"
)

// AnonymousAdvisor answers without an account or persistence. Satisfied by
// core.AdvisorService.
type AnonymousAdvisor interface {
	RespondOnce(ctx context.Context, history []store.Message, content string) (string, error)
}

// LegacyHandler backs the original plain-HTML chat page: a single shared
// transcript held in memory, no authentication. POST /chat appends an
// exchange, POST /clear wipes the history.
type LegacyHandler struct {
	advisor AnonymousAdvisor

	mu      sync.Mutex
	history []store.Message
}

func NewLegacyHandler(advisor AnonymousAdvisor) *LegacyHandler {
	return &LegacyHandler{advisor: advisor}
}

type legacyChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (h *LegacyHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, legacyChatResponse{Success: false, Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, legacyChatResponse{Success: false, Error: "No message provided"})
		return
	}

	h.mu.Lock()
	history := make([]store.Message, len(h.history))
	copy(history, h.history)
	h.mu.Unlock()

	reply, err := h.advisor.RespondOnce(r.Context(), history, req.Message)
	if err != nil {
		log.Printf("Legacy chat error: %v", err)
		writeJSON(w, http.StatusInternalServerError, legacyChatResponse{
			Success: false,
			Error:   "The advisor is unavailable right now. Please try again.",
		})
		return
	}

	h.mu.Lock()
	h.history = append(h.history,
		store.Message{Sender: "user", Content: req.Message},
		store.Message{Sender: "assistant", Content: reply})
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, legacyChatResponse{Success: true, Response: reply})
}

func (h *LegacyHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.history = nil
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
