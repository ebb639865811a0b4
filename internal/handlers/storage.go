package handlers

import (
	"context"

	"carbids/db"
	"carbids/models"
)

type StorageInterface interface {
	CreateUser(ctx context.Context, u *db.UserAccount) error
	GetUserByUsername(ctx context.Context, username string) (*db.UserAccount, error)
	CreateGarage(ctx context.Context, g *db.GarageAccount) error
	GetGarageByUsername(ctx context.Context, username string) (*db.GarageAccount, error)
	GetGarage(ctx context.Context, id int) (*models.Garage, error)

	GetJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, id int) (*models.Job, error)

	CreateCar(ctx context.Context, c *models.Car) error
	GetCar(ctx context.Context, id int) (*models.Car, error)
	GetUserCars(ctx context.Context, userID int) ([]models.Car, error)
	DeleteCar(ctx context.Context, id, userID int) error

	CreateUserJob(ctx context.Context, uj *models.UserJob) error
	DeleteUserJob(ctx context.Context, id, userID int) error
	GetOpenUserJobs(ctx context.Context) ([]models.UserJob, error)
	GetGarageUserJobs(ctx context.Context, garageID int) ([]models.UserJob, error)

	CreateBid(ctx context.Context, b *models.Bid) error
	GetBid(ctx context.Context, id int) (*models.Bid, error)
	UpdateBidAmount(ctx context.Context, bidID, garageID, amount int) error
	DeleteBid(ctx context.Context, bidID, garageID int) error
	SetBidAccepted(ctx context.Context, bidID int, accepted bool) error
	IsBidOwnedByUser(ctx context.Context, bidID, userID int) (bool, error)
}
