package models

import "time"

// Сущность Автомобиля
type Car struct {
	ID           int       `db:"id" json:"id" validate:"required,gt=0"`
	Make         string    `db:"make" json:"make"`
	Model        string    `db:"model" json:"model"`
	Color        string    `db:"color" json:"color"`
	Licenseplate string    `db:"licenseplate" json:"licenseplate" validate:"required"`
	Year         int       `db:"year" json:"year" validate:"required"`
	UserID       int       `db:"user_id" json:"userId" validate:"required,gt=0"`
	UserJobs     []UserJob `db:"-" json:"UserJob" validate:"dive"`
}

// Сущность Работы на автомобиле (привязка работы из каталога к машине)
type UserJob struct {
	ID          int       `db:"id" json:"id" validate:"required,gt=0"`
	LastService time.Time `db:"last_service" json:"lastService" validate:"required"`
	JobID       int       `db:"job_id" json:"jobId,omitempty"`
	CarID       int       `db:"car_id" json:"carId,omitempty"`
	Job         Job       `db:"-" json:"job"`
	Bids        []Bid     `db:"-" json:"Bid" validate:"dive"`
	Car         *JobCar   `db:"-" json:"car,omitempty"`
}

// Сущность Работы из каталога (только чтение)
type Job struct {
	ID          int    `db:"id" json:"id" validate:"required,gt=0"`
	Description string `db:"description" json:"description" validate:"required"`
	Interval    int    `db:"interval" json:"interval" validate:"required,gt=0"`
}

// Сущность Ставки гаража на работу
type Bid struct {
	ID        int     `db:"id" json:"id" validate:"required,gt=0"`
	Amount    int     `db:"amount" json:"amount" validate:"required,gt=0"`
	Accepted  bool    `db:"accepted" json:"accepted"`
	GarageID  int     `db:"garage_id" json:"garageId" validate:"required,gt=0"`
	UserJobID int     `db:"user_job_id" json:"userJobId,omitempty" validate:"omitempty,gt=0"`
	Garage    *Garage `db:"-" json:"garage,omitempty"`
}

// Сущность Гаража (из БД, для связи)
type Garage struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Username    string `db:"username" json:"username,omitempty"`
	Phonenumber string `db:"phonenumber" json:"phonenumber,omitempty"`
}

// Сущность Пользователя (владелец, для контакта из заявки)
type User struct {
	ID          int    `db:"id" json:"id,omitempty"`
	Username    string `db:"username" json:"username"`
	Phonenumber string `db:"phonenumber" json:"phonenumber"`
}

// Машина внутри ленты работ гаража: без идентификаторов, но с контактом владельца
type JobCar struct {
	Make         string `db:"make" json:"make"`
	Model        string `db:"model" json:"model"`
	Year         int    `db:"year" json:"year"`
	Color        string `db:"color" json:"color"`
	Licenseplate string `db:"licenseplate" json:"licenseplate"`
	User         User   `db:"-" json:"user"`
}

// Тело запроса создания машины
type NewCar struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Color        string `json:"color"`
	Licenseplate string `json:"licenseplate" validate:"required"`
	Year         int    `json:"year" validate:"required,gt=0"`
}

// Тело запроса добавления работы на машину
type AddJob struct {
	JobID       int       `json:"jobId" validate:"required,gt=0"`
	LastService time.Time `json:"lastService" validate:"required"`
}

// Тело запроса создания/изменения ставки
type NewBid struct {
	Amount   int `json:"amount" validate:"required,gt=0"`
	GarageID int `json:"garageId,omitempty"`
}

// Учетные данные для входа и регистрации
type Credentials struct {
	Username string `json:"username" validate:"required,min=4"`
	Password string `json:"password" validate:"required,min=5"`
}

// Регистрация гаража: имя обязательно, username — почта
type RegisterGarage struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
}

// Ответ на вход: токен и роль для клиентского хранилища
type TokenResponse struct {
	Token string `json:"token" validate:"required"`
	Type  string `json:"type" validate:"required,oneof=user garage"`
}
