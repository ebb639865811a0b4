// Package apiclient — типизированный потребитель REST-бэкенда.
// Все ответы проходят через границу проверки schema.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"carbids/internal/schema"
	"carbids/models"

	"github.com/rs/zerolog"
)

// StatusError — ответ вне 2xx. Тело не разбирается: бэкенд не
// гарантирует его форму при отказе.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Status)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// SetToken выставляет bearer-токен для последующих запросов.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{Status: res.StatusCode}
	}
	return data, nil
}

// Регистрация и вход

func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	_, err := c.do(ctx, http.MethodPost, "/register", creds)
	return err
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.TokenResponse, error) {
	data, err := c.do(ctx, http.MethodPost, "/login", creds)
	if err != nil {
		return models.TokenResponse{}, err
	}
	var tr models.TokenResponse
	if err := schema.DecodeStrict(data, &tr); err != nil {
		return models.TokenResponse{}, err
	}
	return tr, nil
}

func (c *Client) RegisterGarage(ctx context.Context, reg models.RegisterGarage) error {
	_, err := c.do(ctx, http.MethodPost, "/registergarage", reg)
	return err
}

func (c *Client) LoginGarage(ctx context.Context, creds models.Credentials) (models.TokenResponse, error) {
	data, err := c.do(ctx, http.MethodPost, "/logingarage", creds)
	if err != nil {
		return models.TokenResponse{}, err
	}
	var tr models.TokenResponse
	if err := schema.DecodeStrict(data, &tr); err != nil {
		return models.TokenResponse{}, err
	}
	return tr, nil
}

// Сторона владельца

// Dashboard возвращает машины владельца с вложенными работами и ставками.
func (c *Client) Dashboard(ctx context.Context) ([]models.Car, error) {
	data, err := c.do(ctx, http.MethodGet, "/dashboard", nil)
	if err != nil {
		return nil, err
	}
	return schema.DecodeListStrict[models.Car](data)
}

// Car перечитывает одну машину — авторитетное состояние после записи.
func (c *Client) Car(ctx context.Context, carID int) (models.Car, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/car/%d", carID), nil)
	if err != nil {
		return models.Car{}, err
	}
	var car models.Car
	if err := schema.DecodeStrict(data, &car); err != nil {
		return models.Car{}, err
	}
	return car, nil
}

func (c *Client) CreateCar(ctx context.Context, newCar models.NewCar) error {
	_, err := c.do(ctx, http.MethodPost, "/car", newCar)
	return err
}

func (c *Client) DeleteCar(ctx context.Context, carID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/car/%d", carID), nil)
	return err
}

// Jobs возвращает каталог типов работ.
func (c *Client) Jobs(ctx context.Context) ([]models.Job, error) {
	data, err := c.do(ctx, http.MethodGet, "/jobs", nil)
	if err != nil {
		return nil, err
	}
	return schema.DecodeList[models.Job](data)
}

func (c *Client) AddJob(ctx context.Context, carID int, job models.AddJob) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/car/%d/job", carID), job)
	return err
}

func (c *Client) DeleteUserJob(ctx context.Context, userJobID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/userJob/%d", userJobID), nil)
	return err
}

// AcceptBid переключает принятие ставки владельцем.
// Протокол наблюдаемый: клиент шлет желаемое состояние {"accept": ...}.
func (c *Client) AcceptBid(ctx context.Context, bidID int, accept bool) error {
	body := map[string]bool{"accept": accept}
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/bid/%d/accept", bidID), body)
	return err
}

// Сторона гаража

func (c *Client) GarageMe(ctx context.Context) (models.Garage, error) {
	data, err := c.do(ctx, http.MethodGet, "/garage/me", nil)
	if err != nil {
		return models.Garage{}, err
	}
	var g models.Garage
	if err := schema.Decode(data, &g); err != nil {
		return models.Garage{}, err
	}
	return g, nil
}

// MyUserJobs — работы, по которым у текущего гаража есть ставка.
func (c *Client) MyUserJobs(ctx context.Context) ([]models.UserJob, error) {
	data, err := c.do(ctx, http.MethodGet, "/myuserjobs", nil)
	if err != nil {
		return nil, err
	}
	return schema.DecodeList[models.UserJob](data)
}

// AllUserJobs — открытые работы без принятой ставки.
func (c *Client) AllUserJobs(ctx context.Context) ([]models.UserJob, error) {
	data, err := c.do(ctx, http.MethodGet, "/alluserjobs", nil)
	if err != nil {
		return nil, err
	}
	return schema.DecodeList[models.UserJob](data)
}

func (c *Client) CreateBid(ctx context.Context, userJobID int, bid models.NewBid) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/userJobs/%d/bids", userJobID), bid)
	return err
}

func (c *Client) UpdateBid(ctx context.Context, userJobID, bidID, amount int) error {
	body := map[string]int{"amount": amount}
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/userJobs/%d/bids/%d", userJobID, bidID), body)
	return err
}

func (c *Client) DeleteBid(ctx context.Context, bidID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/bid/%d", bidID), nil)
	return err
}
