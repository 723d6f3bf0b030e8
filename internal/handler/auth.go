package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/auth"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type AuthHandler struct {
	service   *auth.Service
	blacklist *middleware.RedisTokenBlacklist
	validator *validator.Validator
	logger    logger.Logger
}

func NewAuthHandler(service *auth.Service, blacklist *middleware.RedisTokenBlacklist, v *validator.Validator, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		blacklist: blacklist,
		validator: v,
		logger:    log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Logout revokes the presented token until its natural expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 {
		respondError(w, http.StatusBadRequest, "Missing bearer token")
		return
	}
	if err := h.blacklist.Blacklist(r.Context(), parts[1], 24*time.Hour); err != nil {
		h.logger.Error("Failed to blacklist token", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
