package db

import (
	"context"
	"database/sql"
	"errors"

	"carbids/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrDuplicateBid = errors.New("garage already has a bid on this job")

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// UserAccount (Владелец, с хешем пароля — только для БД)
type UserAccount struct {
	ID           int    `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Phonenumber  string `db:"phonenumber"`
}

func (s *Storage) CreateUser(ctx context.Context, u *UserAccount) error {
	query := `
        INSERT INTO users (username, password_hash, phonenumber)
        VALUES ($1, $2, $3)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query, u.Username, u.PasswordHash, u.Phonenumber).
		Scan(&u.ID)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*UserAccount, error) {
	u := &UserAccount{}
	query := `SELECT * FROM users WHERE username=$1`
	err := s.db.GetContext(ctx, u, query, username)
	return u, err
}

// GarageAccount (Гараж, с хешем пароля — только для БД)
type GarageAccount struct {
	ID           int    `db:"id"`
	Name         string `db:"name"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Phonenumber  string `db:"phonenumber"`
}

func (s *Storage) CreateGarage(ctx context.Context, g *GarageAccount) error {
	query := `
        INSERT INTO garages (name, username, password_hash, phonenumber)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query, g.Name, g.Username, g.PasswordHash, g.Phonenumber).
		Scan(&g.ID)
}

func (s *Storage) GetGarageByUsername(ctx context.Context, username string) (*GarageAccount, error) {
	g := &GarageAccount{}
	query := `SELECT * FROM garages WHERE username=$1`
	err := s.db.GetContext(ctx, g, query, username)
	return g, err
}

func (s *Storage) GetGarage(ctx context.Context, id int) (*models.Garage, error) {
	g := &models.Garage{}
	query := `SELECT id, name, username, phonenumber FROM garages WHERE id=$1`
	err := s.db.GetContext(ctx, g, query, id)
	return g, err
}

// Jobs (каталог типов работ, только чтение)

func (s *Storage) GetJobs(ctx context.Context) ([]models.Job, error) {
	jobs := []models.Job{}
	query := `SELECT id, description, "interval" FROM jobs ORDER BY id ASC`
	err := s.db.SelectContext(ctx, &jobs, query)
	return jobs, err
}

func (s *Storage) GetJob(ctx context.Context, id int) (*models.Job, error) {
	j := &models.Job{}
	query := `SELECT id, description, "interval" FROM jobs WHERE id=$1`
	err := s.db.GetContext(ctx, j, query, id)
	return j, err
}

// Car (Автомобиль)

func (s *Storage) CreateCar(ctx context.Context, c *models.Car) error {
	query := `
        INSERT INTO cars (make, model, color, licenseplate, year, user_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		c.Make, c.Model, c.Color, c.Licenseplate, c.Year, c.UserID).
		Scan(&c.ID)
}

// GetCar возвращает машину с вложенными работами и ставками.
func (s *Storage) GetCar(ctx context.Context, id int) (*models.Car, error) {
	c := &models.Car{}
	query := `SELECT id, make, model, color, licenseplate, year, user_id FROM cars WHERE id=$1`
	if err := s.db.GetContext(ctx, c, query, id); err != nil {
		return nil, err
	}
	jobs, err := s.loadCarJobs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.UserJobs = jobs
	return c, nil
}

func (s *Storage) GetUserCars(ctx context.Context, userID int) ([]models.Car, error) {
	cars := []models.Car{}
	query := `
        SELECT id, make, model, color, licenseplate, year, user_id
        FROM cars WHERE user_id=$1 ORDER BY id ASC`
	if err := s.db.SelectContext(ctx, &cars, query, userID); err != nil {
		return nil, err
	}
	for i := range cars {
		jobs, err := s.loadCarJobs(ctx, cars[i].ID)
		if err != nil {
			return nil, err
		}
		cars[i].UserJobs = jobs
	}
	return cars, nil
}

func (s *Storage) DeleteCar(ctx context.Context, id, userID int) error {
	query := `DELETE FROM cars WHERE id=$1 AND user_id=$2`
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UserJob (Работа на машине)

func (s *Storage) CreateUserJob(ctx context.Context, uj *models.UserJob) error {
	query := `
        INSERT INTO user_jobs (last_service, job_id, car_id)
        VALUES ($1, $2, $3)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query, uj.LastService, uj.JobID, uj.CarID).
		Scan(&uj.ID)
}

// DeleteUserJob удаляет работу, если она на машине этого владельца.
func (s *Storage) DeleteUserJob(ctx context.Context, id, userID int) error {
	query := `
        DELETE FROM user_jobs uj
        USING cars c
        WHERE uj.id=$1 AND uj.car_id=c.id AND c.user_id=$2`
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// GetOpenUserJobs — работы без принятой ставки, с машиной и контактом
// владельца, для витрины гаража.
func (s *Storage) GetOpenUserJobs(ctx context.Context) ([]models.UserJob, error) {
	query := `
        SELECT uj.id, uj.last_service, uj.job_id, uj.car_id
        FROM user_jobs uj
        WHERE NOT EXISTS (
            SELECT 1 FROM bids b WHERE b.user_job_id = uj.id AND b.accepted
        )
        ORDER BY uj.id ASC`
	return s.loadGarageJobs(ctx, query)
}

// GetGarageUserJobs — работы, по которым у гаража есть ставка.
func (s *Storage) GetGarageUserJobs(ctx context.Context, garageID int) ([]models.UserJob, error) {
	query := `
        SELECT uj.id, uj.last_service, uj.job_id, uj.car_id
        FROM user_jobs uj
        WHERE EXISTS (
            SELECT 1 FROM bids b WHERE b.user_job_id = uj.id AND b.garage_id = $1
        )
        ORDER BY uj.id ASC`
	return s.loadGarageJobs(ctx, query, garageID)
}

func (s *Storage) loadGarageJobs(ctx context.Context, query string, args ...interface{}) ([]models.UserJob, error) {
	jobs := []models.UserJob{}
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, err
	}
	for i := range jobs {
		if err := s.fillJob(ctx, &jobs[i]); err != nil {
			return nil, err
		}
		car, err := s.loadJobCar(ctx, jobs[i].CarID)
		if err != nil {
			return nil, err
		}
		jobs[i].Car = car
	}
	return jobs, nil
}

func (s *Storage) loadCarJobs(ctx context.Context, carID int) ([]models.UserJob, error) {
	jobs := []models.UserJob{}
	query := `
        SELECT id, last_service, job_id, car_id
        FROM user_jobs WHERE car_id=$1 ORDER BY id ASC`
	if err := s.db.SelectContext(ctx, &jobs, query, carID); err != nil {
		return nil, err
	}
	for i := range jobs {
		if err := s.fillJob(ctx, &jobs[i]); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

func (s *Storage) fillJob(ctx context.Context, uj *models.UserJob) error {
	job, err := s.GetJob(ctx, uj.JobID)
	if err != nil {
		return err
	}
	uj.Job = *job

	bids := []models.Bid{}
	query := `
        SELECT b.id, b.amount, b.accepted, b.garage_id, b.user_job_id
        FROM bids b WHERE b.user_job_id=$1 ORDER BY b.id ASC`
	if err := s.db.SelectContext(ctx, &bids, query, uj.ID); err != nil {
		return err
	}
	for i := range bids {
		garage, err := s.GetGarage(ctx, bids[i].GarageID)
		if err != nil {
			return err
		}
		bids[i].Garage = &models.Garage{ID: garage.ID, Name: garage.Name}
	}
	uj.Bids = bids
	return nil
}

func (s *Storage) loadJobCar(ctx context.Context, carID int) (*models.JobCar, error) {
	row := struct {
		Make         string `db:"make"`
		Model        string `db:"model"`
		Year         int    `db:"year"`
		Color        string `db:"color"`
		Licenseplate string `db:"licenseplate"`
		Username     string `db:"username"`
		Phonenumber  string `db:"phonenumber"`
	}{}
	query := `
        SELECT c.make, c.model, c.year, c.color, c.licenseplate,
               u.username, u.phonenumber
        FROM cars c JOIN users u ON c.user_id = u.id
        WHERE c.id=$1`
	if err := s.db.GetContext(ctx, &row, query, carID); err != nil {
		return nil, err
	}
	return &models.JobCar{
		Make:         row.Make,
		Model:        row.Model,
		Year:         row.Year,
		Color:        row.Color,
		Licenseplate: row.Licenseplate,
		User:         models.User{Username: row.Username, Phonenumber: row.Phonenumber},
	}, nil
}

// Bid (Ставка)

func (s *Storage) CreateBid(ctx context.Context, b *models.Bid) error {
	query := `
        INSERT INTO bids (amount, accepted, garage_id, user_job_id)
        VALUES ($1, false, $2, $3)
        RETURNING id`
	err := s.db.QueryRowContext(ctx, query, b.Amount, b.GarageID, b.UserJobID).
		Scan(&b.ID)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateBid
	}
	return err
}

func (s *Storage) GetBid(ctx context.Context, id int) (*models.Bid, error) {
	b := &models.Bid{}
	query := `SELECT id, amount, accepted, garage_id, user_job_id FROM bids WHERE id=$1`
	err := s.db.GetContext(ctx, b, query, id)
	return b, err
}

// UpdateBidAmount меняет сумму собственной непринятой ставки.
func (s *Storage) UpdateBidAmount(ctx context.Context, bidID, garageID, amount int) error {
	query := `
        UPDATE bids SET amount=$1
        WHERE id=$2 AND garage_id=$3 AND NOT accepted`
	res, err := s.db.ExecContext(ctx, query, amount, bidID, garageID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Storage) DeleteBid(ctx context.Context, bidID, garageID int) error {
	query := `DELETE FROM bids WHERE id=$1 AND garage_id=$2 AND NOT accepted`
	res, err := s.db.ExecContext(ctx, query, bidID, garageID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetBidAccepted выставляет флаг принятия. Инвариант "не больше одной
// принятой ставки на работу" держит сама транзакция: перед принятием
// флаг снимается со всех ставок этой работы.
func (s *Storage) SetBidAccepted(ctx context.Context, bidID int, accepted bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userJobID int
	if err := tx.QueryRowContext(ctx,
		`SELECT user_job_id FROM bids WHERE id=$1`, bidID).Scan(&userJobID); err != nil {
		return err
	}
	if accepted {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bids SET accepted=false WHERE user_job_id=$1`, userJobID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bids SET accepted=$1 WHERE id=$2`, accepted, bidID); err != nil {
		return err
	}
	return tx.Commit()
}

// IsBidOwnedByUser — принадлежит ли работа ставки машине этого владельца.
func (s *Storage) IsBidOwnedByUser(ctx context.Context, bidID, userID int) (bool, error) {
	var count int
	query := `
        SELECT COUNT(1)
        FROM bids b
        JOIN user_jobs uj ON b.user_job_id = uj.id
        JOIN cars c ON uj.car_id = c.id
        WHERE b.id=$1 AND c.user_id=$2`
	if err := s.db.GetContext(ctx, &count, query, bidID, userID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// 23505 — unique_violation, уникальный индекс (garage_id, user_job_id)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
