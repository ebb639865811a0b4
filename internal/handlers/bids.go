package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"

	"carbids/db"
	"carbids/internal/schema"
	"carbids/models"

	"github.com/go-chi/chi/v5"
)

// GarageMeHandler возвращает профиль аутентифицированного гаража
func (h *Handler) GarageMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	garage, err := h.Store.GetGarage(r.Context(), claims.Subject)
	if err != nil {
		http.Error(w, "Garage not found", http.StatusNotFound)
		return
	}

	writeJSON(w, garage)
}

// MyUserJobsHandler возвращает работы, по которым у гаража есть ставка
func (h *Handler) MyUserJobsHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	jobs, err := h.Store.GetGarageUserJobs(r.Context(), claims.Subject)
	if err != nil {
		http.Error(w, "Failed to get user jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, jobs)
}

// AllUserJobsHandler возвращает открытые работы без принятой ставки
func (h *Handler) AllUserJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.GetOpenUserJobs(r.Context())
	if err != nil {
		http.Error(w, "Failed to get user jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, jobs)
}

// CreateBidHandler обрабатывает POST /userJobs/{userJobId}/bids запрос
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	userJobID, err := strconv.Atoi(chi.URLParam(r, "userJobId"))
	if err != nil || userJobID <= 0 {
		http.Error(w, "Invalid userJobId", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input models.NewBid
	if err := schema.Decode(body, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// garageId в теле игнорируется: авторство определяет токен
	bid := &models.Bid{
		Amount:    input.Amount,
		GarageID:  claims.Subject,
		UserJobID: userJobID,
	}
	if err := h.Store.CreateBid(r.Context(), bid); err != nil {
		if errors.Is(err, db.ErrDuplicateBid) {
			http.Error(w, "Garage already has a bid on this job", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create bid", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, http.StatusCreated, bid)
}

// EditBidHandler обрабатывает PATCH /userJobs/{userJobId}/bids/{bidId} запрос
func (h *Handler) EditBidHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Amount int `json:"amount" validate:"required,gt=0"`
	}
	if err := schema.Decode(body, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Сумма меняется на месте; принятую ставку менять нельзя
	if err := h.Store.UpdateBidAmount(r.Context(), bidID, claims.Subject, input.Amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update bid", http.StatusInternalServerError)
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		http.Error(w, "Bid not found", http.StatusNotFound)
		return
	}

	writeJSON(w, bid)
}

// AcceptBidHandler обрабатывает PATCH /bid/{bidId}/accept запрос.
// Клиент присылает желаемое состояние; взаимное исключение принятых
// ставок по работе держит хранилище в одной транзакции.
func (h *Handler) AcceptBidHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Accept bool `json:"accept"`
	}
	if err := schema.Decode(body, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Принимать может только владелец машины этой работы
	owned, err := h.Store.IsBidOwnedByUser(r.Context(), bidID, claims.Subject)
	if err != nil || !owned {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Store.SetBidAccepted(r.Context(), bidID, input.Accept); err != nil {
		http.Error(w, "Failed to update bid", http.StatusInternalServerError)
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		http.Error(w, "Bid not found", http.StatusNotFound)
		return
	}

	writeJSON(w, bid)
}

// DeleteBidHandler обрабатывает DELETE /bid/{bidId} запрос
func (h *Handler) DeleteBidHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}

	// Удалить можно только собственную непринятую ставку
	if err := h.Store.DeleteBid(r.Context(), bidID, claims.Subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete bid", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
