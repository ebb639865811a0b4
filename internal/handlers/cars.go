package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"

	"carbids/internal/schema"
	"carbids/models"

	"github.com/go-chi/chi/v5"
)

// DashboardHandler возвращает машины владельца с работами и ставками
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	cars, err := h.Store.GetUserCars(r.Context(), claims.Subject)
	if err != nil {
		http.Error(w, "Failed to get cars", http.StatusInternalServerError)
		return
	}

	writeJSON(w, cars)
}

// GetCarHandler возвращает одну машину владельца
func (h *Handler) GetCarHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	carID, err := strconv.Atoi(chi.URLParam(r, "carId"))
	if err != nil || carID <= 0 {
		http.Error(w, "Invalid carId", http.StatusBadRequest)
		return
	}

	car, err := h.Store.GetCar(r.Context(), carID)
	if err != nil || car.UserID != claims.Subject {
		http.Error(w, "Car not found", http.StatusNotFound)
		return
	}

	writeJSON(w, car)
}

// CreateCarHandler обрабатывает POST /car запрос
func (h *Handler) CreateCarHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	// Ограничение размера тела, чтобы избежать DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input models.NewCar
	if err := schema.DecodeStrict(body, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	car := &models.Car{
		Make:         input.Make,
		Model:        input.Model,
		Color:        input.Color,
		Licenseplate: input.Licenseplate,
		Year:         input.Year,
		UserID:       claims.Subject,
	}
	if err := h.Store.CreateCar(r.Context(), car); err != nil {
		http.Error(w, "Failed to create car", http.StatusInternalServerError)
		return
	}
	car.UserJobs = []models.UserJob{}

	writeJSONStatus(w, http.StatusCreated, car)
}

// DeleteCarHandler обрабатывает DELETE /car/{carId} запрос
func (h *Handler) DeleteCarHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	carID, err := strconv.Atoi(chi.URLParam(r, "carId"))
	if err != nil || carID <= 0 {
		http.Error(w, "Invalid carId", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteCar(r.Context(), carID, claims.Subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Car not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete car", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetJobsHandler возвращает каталог типов работ
func (h *Handler) GetJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.GetJobs(r.Context())
	if err != nil {
		http.Error(w, "Failed to get jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, jobs)
}

// AddJobHandler обрабатывает POST /car/{carId}/job запрос
func (h *Handler) AddJobHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	carID, err := strconv.Atoi(chi.URLParam(r, "carId"))
	if err != nil || carID <= 0 {
		http.Error(w, "Invalid carId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input models.AddJob
	if err := schema.Decode(body, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Машина должна принадлежать вызывающему владельцу
	car, err := h.Store.GetCar(r.Context(), carID)
	if err != nil || car.UserID != claims.Subject {
		http.Error(w, "Car not found", http.StatusNotFound)
		return
	}

	// Тип работы должен существовать в каталоге
	if _, err := h.Store.GetJob(r.Context(), input.JobID); err != nil {
		http.Error(w, "Job not found", http.StatusBadRequest)
		return
	}

	userJob := &models.UserJob{
		LastService: input.LastService,
		JobID:       input.JobID,
		CarID:       carID,
	}
	if err := h.Store.CreateUserJob(r.Context(), userJob); err != nil {
		http.Error(w, "Failed to add job", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, http.StatusCreated, userJob)
}

// DeleteUserJobHandler обрабатывает DELETE /userJob/{userJobId} запрос
func (h *Handler) DeleteUserJobHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	userJobID, err := strconv.Atoi(chi.URLParam(r, "userJobId"))
	if err != nil || userJobID <= 0 {
		http.Error(w, "Invalid userJobId", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteUserJob(r.Context(), userJobID, claims.Subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to remove job", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
