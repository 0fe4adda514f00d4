package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/templates"
	"deskcore/internal/engine/vault"
	"deskcore/internal/pkg/errors"
	"deskcore/internal/platform/auth"
	"deskcore/internal/platform/models"
	"deskcore/internal/platform/repositories"
)

type IntegrationHandler struct {
	catalog *templates.Catalog
	vault   *vault.Vault
	repo    *repositories.IntegrationRepository
}

func NewIntegrationHandler(catalog *templates.Catalog, v *vault.Vault, repo *repositories.IntegrationRepository) *IntegrationHandler {
	return &IntegrationHandler{catalog: catalog, vault: v, repo: repo}
}

func (h *IntegrationHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.catalog.List())
}

func (h *IntegrationHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	template, ok := h.catalog.Get(params.ByName("template_id"))
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Template not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(template)
}

// Create validates the submitted config against the template schema,
// encrypts the credentials, and stores the integration as PENDING. The
// plaintext credentials never touch the database or the logs.
func (h *IntegrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req struct {
		TemplateID  string                 `json:"template_id"`
		Config      map[string]interface{} `json:"config"`
		Credentials map[string]interface{} `json:"credentials"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	template, ok := h.catalog.Get(req.TemplateID)
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Template not found", nil)
		return
	}

	result := templates.ValidateConfig(req.Config, template.ConfigSchema)
	if !result.Valid {
		errors.WriteValidationErrors(w, result.Errors)
		return
	}

	encrypted, err := h.vault.EncryptCredentials(req.Credentials)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to secure credentials", nil)
		return
	}

	integration := &models.TenantIntegration{
		FirmID:               claims.FirmID,
		TemplateID:           template.ID,
		Config:               req.Config,
		EncryptedCredentials: encrypted,
		Status:               models.IntegrationStatusPending,
		IsActive:             true,
	}
	if err := h.repo.Create(integration); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store integration", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(integration)
}

func (h *IntegrationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	integrations, err := h.repo.ListByFirm(claims.FirmID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list integrations", nil)
		return
	}
	if integrations == nil {
		integrations = []*models.TenantIntegration{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integrations)
}

func (h *IntegrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	integration, err := h.repo.GetByID(claims.FirmID, params.ByName("integration_id"))
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Integration not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integration)
}

func (h *IntegrationHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	id := params.ByName("integration_id")
	if _, err := h.repo.GetByID(claims.FirmID, id); err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Integration not found", nil)
		return
	}
	if err := h.repo.SetActive(claims.FirmID, id, req.IsActive); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update integration", nil)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *IntegrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	if err := h.repo.Delete(claims.FirmID, params.ByName("integration_id")); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete integration", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
