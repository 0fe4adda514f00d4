package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/apikeys"
	"deskcore/internal/pkg/errors"
	"deskcore/internal/platform/auth"
	"deskcore/internal/platform/models"
	"deskcore/internal/platform/repositories"
)

type APIKeyHandler struct {
	repo         *repositories.APIKeyRepository
	defaultLimit int
}

func NewAPIKeyHandler(repo *repositories.APIKeyRepository, defaultLimit int) *APIKeyHandler {
	return &APIKeyHandler{repo: repo, defaultLimit: defaultLimit}
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req struct {
		Name          string   `json:"name"`
		Permissions   []string `json:"permissions"`
		RateLimit     int      `json:"rate_limit"`
		ExpiresInDays int      `json:"expires_in_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Name is required", nil)
		return
	}
	if len(req.Permissions) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "At least one permission is required", nil)
		return
	}

	generated, err := apikeys.Generate()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate key", nil)
		return
	}

	rateLimit := req.RateLimit
	if rateLimit <= 0 {
		rateLimit = h.defaultLimit
	}

	apiKey := &models.APIKey{
		FirmID:      claims.FirmID,
		UserID:      claims.UserID,
		Name:        req.Name,
		KeyHash:     generated.Hash,
		KeyPrefix:   generated.Prefix,
		Permissions: req.Permissions,
		RateLimit:   rateLimit,
	}
	if req.ExpiresInDays > 0 {
		exp := time.Now().Add(time.Duration(req.ExpiresInDays) * 24 * time.Hour).Unix()
		apiKey.ExpiresAt = &exp
	}

	if err := h.repo.Create(apiKey); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store key", nil)
		return
	}

	// The plaintext key is returned exactly once; only its hash is stored.
	response := struct {
		ID          string   `json:"id"`
		Key         string   `json:"key"`
		KeyPrefix   string   `json:"key_prefix"`
		Name        string   `json:"name"`
		Permissions []string `json:"permissions"`
		RateLimit   int      `json:"rate_limit"`
		CreatedAt   int64    `json:"created_at"`
		ExpiresAt   *int64   `json:"expires_at,omitempty"`
	}{
		ID:          apiKey.ID,
		Key:         generated.FullKey,
		KeyPrefix:   apiKey.KeyPrefix,
		Name:        apiKey.Name,
		Permissions: apiKey.Permissions,
		RateLimit:   apiKey.RateLimit,
		CreatedAt:   apiKey.CreatedAt,
		ExpiresAt:   apiKey.ExpiresAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	keys, err := h.repo.ListByFirm(claims.FirmID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list keys", nil)
		return
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keys)
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	if err := h.repo.Revoke(claims.FirmID, params.ByName("key_id")); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to revoke key", nil)
		return
	}

	w.WriteHeader(http.StatusOK)
}
