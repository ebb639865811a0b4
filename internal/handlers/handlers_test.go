package handlers_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carbids/db"
	"carbids/internal/auth"
	"carbids/internal/handlers"
	"carbids/internal/handlers/testutils"
	"carbids/internal/session"
	"carbids/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// MockStorage реализует StorageInterface
type MockStorage struct {
	user              *db.UserAccount
	garage            *db.GarageAccount
	createBidErr      error
	updateBidErr      error
	deleteBidErr      error
	bidOwned          bool
	acceptedCalls []bool
	GetCarFunc    func(ctx context.Context, id int) (*models.Car, error)
}

func (m *MockStorage) CreateUser(ctx context.Context, u *db.UserAccount) error {
	u.ID = 1
	return nil
}
func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (*db.UserAccount, error) {
	if m.user == nil {
		return nil, errors.New("not found")
	}
	return m.user, nil
}
func (m *MockStorage) CreateGarage(ctx context.Context, g *db.GarageAccount) error {
	g.ID = 7
	return nil
}
func (m *MockStorage) GetGarageByUsername(ctx context.Context, username string) (*db.GarageAccount, error) {
	if m.garage == nil {
		return nil, errors.New("not found")
	}
	return m.garage, nil
}
func (m *MockStorage) GetGarage(ctx context.Context, id int) (*models.Garage, error) {
	return &models.Garage{ID: id, Name: "Fast Fix", Username: "fix@example.com"}, nil
}

func (m *MockStorage) GetJobs(ctx context.Context) ([]models.Job, error) {
	return []models.Job{{ID: 1, Description: "Oil change", Interval: 12}}, nil
}
func (m *MockStorage) GetJob(ctx context.Context, id int) (*models.Job, error) {
	if id != 1 {
		return nil, sql.ErrNoRows
	}
	return &models.Job{ID: 1, Description: "Oil change", Interval: 12}, nil
}

func (m *MockStorage) CreateCar(ctx context.Context, c *models.Car) error {
	c.ID = 10
	return nil
}
func (m *MockStorage) GetCar(ctx context.Context, id int) (*models.Car, error) {
	if m.GetCarFunc != nil {
		return m.GetCarFunc(ctx, id)
	}
	return &models.Car{ID: id, Make: "Volvo", Model: "V60", Licenseplate: "AB-123-C", Year: 2019, UserID: 1}, nil
}
func (m *MockStorage) GetUserCars(ctx context.Context, userID int) ([]models.Car, error) {
	return []models.Car{
		{ID: 10, Make: "Volvo", Model: "V60", Licenseplate: "AB-123-C", Year: 2019, UserID: userID, UserJobs: []models.UserJob{}},
	}, nil
}
func (m *MockStorage) DeleteCar(ctx context.Context, id, userID int) error {
	if id != 10 {
		return sql.ErrNoRows
	}
	return nil
}

func (m *MockStorage) CreateUserJob(ctx context.Context, uj *models.UserJob) error {
	uj.ID = 20
	return nil
}
func (m *MockStorage) DeleteUserJob(ctx context.Context, id, userID int) error {
	return nil
}
func (m *MockStorage) GetOpenUserJobs(ctx context.Context) ([]models.UserJob, error) {
	return []models.UserJob{
		{ID: 20, LastService: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Job: models.Job{ID: 1, Description: "Oil change", Interval: 12}},
	}, nil
}
func (m *MockStorage) GetGarageUserJobs(ctx context.Context, garageID int) ([]models.UserJob, error) {
	return []models.UserJob{
		{
			ID:          20,
			LastService: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Job:         models.Job{ID: 1, Description: "Oil change", Interval: 12},
			Bids:        []models.Bid{{ID: 30, Amount: 120, GarageID: garageID}},
		},
	}, nil
}

func (m *MockStorage) CreateBid(ctx context.Context, b *models.Bid) error {
	if m.createBidErr != nil {
		return m.createBidErr
	}
	b.ID = 30
	return nil
}
func (m *MockStorage) GetBid(ctx context.Context, id int) (*models.Bid, error) {
	accepted := false
	if len(m.acceptedCalls) > 0 {
		accepted = m.acceptedCalls[len(m.acceptedCalls)-1]
	}
	return &models.Bid{ID: id, Amount: 120, Accepted: accepted, GarageID: 7, UserJobID: 20}, nil
}
func (m *MockStorage) UpdateBidAmount(ctx context.Context, bidID, garageID, amount int) error {
	return m.updateBidErr
}
func (m *MockStorage) DeleteBid(ctx context.Context, bidID, garageID int) error {
	return m.deleteBidErr
}
func (m *MockStorage) SetBidAccepted(ctx context.Context, bidID int, accepted bool) error {
	m.acceptedCalls = append(m.acceptedCalls, accepted)
	return nil
}
func (m *MockStorage) IsBidOwnedByUser(ctx context.Context, bidID, userID int) (bool, error) {
	return m.bidOwned, nil
}

var testAuth = auth.NewService("test-secret", time.Hour)

func newHandler(store *MockStorage) *handlers.Handler {
	return handlers.NewHandler(store, testAuth, zerolog.Nop())
}

// authReq выставляет bearer-токен нужной роли
func authReq(t *testing.T, req *http.Request, role string) *http.Request {
	t.Helper()
	token, err := testAuth.GenerateToken(1, "user1", role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLoginHandler(t *testing.T) {
	hash, err := testAuth.HashPassword("secret1")
	require.NoError(t, err)
	handler := newHandler(&MockStorage{user: &db.UserAccount{ID: 1, Username: "user1", PasswordHash: hash}})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"user1","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.LoginHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"type":"user"`)
	require.Contains(t, string(body), "token")
}

func TestLoginHandlerWrongPassword(t *testing.T) {
	hash, err := testAuth.HashPassword("secret1")
	require.NoError(t, err)
	handler := newHandler(&MockStorage{user: &db.UserAccount{ID: 1, Username: "user1", PasswordHash: hash}})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"user1","password":"wrong"}`))
	w := httptest.NewRecorder()

	handler.LoginHandler(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestLoginHandlerUnknownField(t *testing.T) {
	handler := newHandler(&MockStorage{})

	// Лишнее поле в закрытой форме — ошибка проверки
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"user1","password":"secret1","admin":true}`))
	w := httptest.NewRecorder()

	handler.LoginHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestLoginGarageHandler(t *testing.T) {
	hash, err := testAuth.HashPassword("secret1")
	require.NoError(t, err)
	handler := newHandler(&MockStorage{garage: &db.GarageAccount{ID: 7, Name: "Fast Fix", Username: "fix@example.com", PasswordHash: hash}})

	req := httptest.NewRequest(http.MethodPost, "/logingarage", strings.NewReader(`{"username":"fix@example.com","password":"secret1"}`))
	w := httptest.NewRecorder()

	handler.LoginGarageHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"type":"garage"`)
}

func TestRegisterHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"username":"user1","password":"secret1"}`))
	w := httptest.NewRecorder()

	handler.RegisterHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Result().StatusCode)
}

func TestRegisterHandlerShortPassword(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"username":"user1","password":"abc"}`))
	w := httptest.NewRecorder()

	handler.RegisterHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Contains(t, string(body), "password")
}

func TestRequireUserRejectsGarageToken(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = authReq(t, req, session.RoleGarage)
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.DashboardHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Result().StatusCode)
}

func TestRequireUserRejectsMissingToken(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.DashboardHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestDashboardHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = authReq(t, req, session.RoleUser)
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.DashboardHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), "Volvo")
	require.Contains(t, string(body), `"UserJob":[]`)
}

func TestCreateCarHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	reqBody := `{"make":"Volvo","model":"V60","color":"blue","licenseplate":"AB-123-C","year":2019}`
	req := httptest.NewRequest(http.MethodPost, "/car", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req = authReq(t, req, session.RoleUser)
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.CreateCarHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Contains(t, string(body), "AB-123-C")
}

func TestCreateCarHandlerMissingPlate(t *testing.T) {
	handler := newHandler(&MockStorage{})

	reqBody := `{"make":"Volvo","model":"V60","color":"blue","year":2019}`
	req := httptest.NewRequest(http.MethodPost, "/car", strings.NewReader(reqBody))
	req = authReq(t, req, session.RoleUser)
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.CreateCarHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Contains(t, string(body), "licenseplate")
}

func TestGetCarHandlerForeignCar(t *testing.T) {
	// Машина другого владельца отдается как 404, не 403
	handler := newHandler(&MockStorage{
		GetCarFunc: func(ctx context.Context, id int) (*models.Car, error) {
			return &models.Car{ID: id, UserID: 99}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/car/10", nil)
	req = authReq(t, req, session.RoleUser)
	req = testutils.WithChiURLParams(req, map[string]string{"carId": "10"})
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.GetCarHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestAddJobHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	reqBody := `{"jobId":1,"lastService":"2025-03-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/car/10/job", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req = authReq(t, req, session.RoleUser)
	req = testutils.WithChiURLParams(req, map[string]string{"carId": "10"})
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.AddJobHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Contains(t, string(body), `"jobId":1`)
}

func TestAddJobHandlerUnknownJobType(t *testing.T) {
	handler := newHandler(&MockStorage{})

	reqBody := `{"jobId":42,"lastService":"2025-03-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/car/10/job", strings.NewReader(reqBody))
	req = authReq(t, req, session.RoleUser)
	req = testutils.WithChiURLParams(req, map[string]string{"carId": "10"})
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.AddJobHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestDeleteCarHandlerNotFound(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodDelete, "/car/99", nil)
	req = authReq(t, req, session.RoleUser)
	req = testutils.WithChiURLParams(req, map[string]string{"carId": "99"})
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.DeleteCarHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestCreateBidHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	reqBody := `{"amount":120,"garageId":7}`
	req := httptest.NewRequest(http.MethodPost, "/userJobs/20/bids", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req = authReq(t, req, session.RoleGarage)
	req = testutils.WithChiURLParams(req, map[string]string{"userJobId": "20"})
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.CreateBidHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Contains(t, string(body), `"amount":120`)
	// Авторство из токена, не из тела
	require.Contains(t, string(body), `"garageId":1`)
}

func TestCreateBidHandlerDuplicate(t *testing.T) {
	handler := newHandler(&MockStorage{createBidErr: db.ErrDuplicateBid})

	reqBody := `{"amount":120}`
	req := httptest.NewRequest(http.MethodPost, "/userJobs/20/bids", strings.NewReader(reqBody))
	req = authReq(t, req, session.RoleGarage)
	req = testutils.WithChiURLParams(req, map[string]string{"userJobId": "20"})
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.CreateBidHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Result().StatusCode)
}

func TestCreateBidHandlerZeroAmount(t *testing.T) {
	handler := newHandler(&MockStorage{})

	reqBody := `{"amount":0}`
	req := httptest.NewRequest(http.MethodPost, "/userJobs/20/bids", strings.NewReader(reqBody))
	req = authReq(t, req, session.RoleGarage)
	req = testutils.WithChiURLParams(req, map[string]string{"userJobId": "20"})
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.CreateBidHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Contains(t, string(body), "amount")
}

func TestEditBidHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	reqBody := `{"amount":150}`
	req := httptest.NewRequest(http.MethodPatch, "/userJobs/20/bids/30", strings.NewReader(reqBody))
	req = authReq(t, req, session.RoleGarage)
	req = testutils.WithChiURLParams(req, map[string]string{"userJobId": "20", "bidId": "30"})
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.EditBidHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"id":30`)
}

func TestEditBidHandlerNotFound(t *testing.T) {
	handler := newHandler(&MockStorage{updateBidErr: sql.ErrNoRows})

	reqBody := `{"amount":150}`
	req := httptest.NewRequest(http.MethodPatch, "/userJobs/20/bids/30", strings.NewReader(reqBody))
	req = authReq(t, req, session.RoleGarage)
	req = testutils.WithChiURLParams(req, map[string]string{"userJobId": "20", "bidId": "30"})
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.EditBidHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestAcceptBidHandler(t *testing.T) {
	store := &MockStorage{bidOwned: true}
	handler := newHandler(store)

	req := httptest.NewRequest(http.MethodPatch, "/bid/30/accept", strings.NewReader(`{"accept":true}`))
	req = authReq(t, req, session.RoleUser)
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": "30"})
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.AcceptBidHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"accepted":true`)
	require.Equal(t, []bool{true}, store.acceptedCalls)
}

func TestAcceptBidHandlerUnaccept(t *testing.T) {
	// Снятие принятия: клиент присылает accept=false
	store := &MockStorage{bidOwned: true}
	handler := newHandler(store)

	req := httptest.NewRequest(http.MethodPatch, "/bid/30/accept", strings.NewReader(`{"accept":false}`))
	req = authReq(t, req, session.RoleUser)
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": "30"})
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.AcceptBidHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"accepted":false`)
	require.Equal(t, []bool{false}, store.acceptedCalls)
}

func TestAcceptBidHandlerForeignBid(t *testing.T) {
	handler := newHandler(&MockStorage{bidOwned: false})

	req := httptest.NewRequest(http.MethodPatch, "/bid/30/accept", strings.NewReader(`{"accept":true}`))
	req = authReq(t, req, session.RoleUser)
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": "30"})
	w := httptest.NewRecorder()

	handler.RequireUser(http.HandlerFunc(handler.AcceptBidHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Result().StatusCode)
}

func TestDeleteBidHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodDelete, "/bid/30", nil)
	req = authReq(t, req, session.RoleGarage)
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": "30"})
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.DeleteBidHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Result().StatusCode)
}

func TestDeleteBidHandlerAccepted(t *testing.T) {
	// Принятая ставка не удаляется: хранилище не находит строку
	handler := newHandler(&MockStorage{deleteBidErr: sql.ErrNoRows})

	req := httptest.NewRequest(http.MethodDelete, "/bid/30", nil)
	req = authReq(t, req, session.RoleGarage)
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": "30"})
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.DeleteBidHandler)).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestGarageMeHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/garage/me", nil)
	req = authReq(t, req, session.RoleGarage)
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.GarageMeHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), "Fast Fix")
}

func TestAllUserJobsHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/alluserjobs", nil)
	req = authReq(t, req, session.RoleGarage)
	w := httptest.NewRecorder()

	handler.RequireGarage(http.HandlerFunc(handler.AllUserJobsHandler)).ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), "Oil change")
}
