package handlers

import (
	"io"
	"net/http"

	"carbids/db"
	"carbids/internal/schema"
	"carbids/internal/session"
	"carbids/models"
)

// RegisterHandler обрабатывает POST /register запрос
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Форма логина закрытая: лишние поля — ошибка
	var creds models.Credentials
	if err := schema.DecodeStrict(body, &creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := h.Auth.HashPassword(creds.Password)
	if err != nil {
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	account := &db.UserAccount{Username: creds.Username, PasswordHash: hash}
	if err := h.Store.CreateUser(r.Context(), account); err != nil {
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// LoginHandler обрабатывает POST /login запрос
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var creds models.Credentials
	if err := schema.DecodeStrict(body, &creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.Store.GetUserByUsername(r.Context(), creds.Username)
	if err != nil || !h.Auth.CheckPassword(creds.Password, account.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Auth.GenerateToken(account.ID, account.Username, session.RoleUser)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, models.TokenResponse{Token: token, Type: session.RoleUser})
}

// RegisterGarageHandler обрабатывает POST /registergarage запрос
func (h *Handler) RegisterGarageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var reg models.RegisterGarage
	if err := schema.DecodeStrict(body, &reg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := h.Auth.HashPassword(reg.Password)
	if err != nil {
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	account := &db.GarageAccount{Name: reg.Name, Username: reg.Username, PasswordHash: hash}
	if err := h.Store.CreateGarage(r.Context(), account); err != nil {
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// LoginGarageHandler обрабатывает POST /logingarage запрос
func (h *Handler) LoginGarageHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var creds models.Credentials
	if err := schema.DecodeStrict(body, &creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.Store.GetGarageByUsername(r.Context(), creds.Username)
	if err != nil || !h.Auth.CheckPassword(creds.Password, account.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Auth.GenerateToken(account.ID, account.Username, session.RoleGarage)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, models.TokenResponse{Token: token, Type: session.RoleGarage})
}
