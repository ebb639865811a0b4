package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"carbids/internal/auth"
	"carbids/internal/session"

	"github.com/rs/zerolog"
)

// Handler оборачивает Storage и сервис токенов
type Handler struct {
	Store StorageInterface
	Auth  *auth.Service
	Log   zerolog.Logger
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, authSvc *auth.Service, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Auth: authSvc, Log: log}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type claimsKey struct{}

// RequireRole проверяет bearer-токен и роль, кладет claims в контекст
func (h *Handler) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := h.Auth.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser и RequireGarage — готовые проверки ролей
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return h.RequireRole(session.RoleUser)(next)
}

func (h *Handler) RequireGarage(next http.Handler) http.Handler {
	return h.RequireRole(session.RoleGarage)(next)
}

func claimsFrom(r *http.Request) auth.Claims {
	claims, _ := r.Context().Value(claimsKey{}).(auth.Claims)
	return claims
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
