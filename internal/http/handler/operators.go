package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"meridian/internal/auth"

	"gorm.io/gorm"
)

type OperatorHandler struct {
	DB  *gorm.DB
	JWT *auth.JWT
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *OperatorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	op := auth.Operator{Email: req.Email, PasswordHash: hash}
	if err := h.DB.Create(&op).Error; err != nil {
		http.Error(w, "email already used", http.StatusConflict)
		return
	}

	h.issueToken(w, op.ID)
}

func (h *OperatorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	var op auth.Operator
	if err := h.DB.Where("email = ?", req.Email).First(&op).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !auth.ComparePassword(op.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.issueToken(w, op.ID)
}

func (h *OperatorHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OperatorIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"operator_id": id})
}

func (h *OperatorHandler) issueToken(w http.ResponseWriter, id uint64) {
	token, err := h.JWT.Sign(id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}
