package main

import (
	"log"
	"net/http"

	"carbids/db"
	"carbids/db/migrations"
	"carbids/internal/auth"
	"carbids/internal/config"
	"carbids/internal/handlers"
	"carbids/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}
	lg := logger.New(cfg.Environment)

	dbConn, err := sqlx.Connect("postgres", cfg.DB.Conn)
	if err != nil {
		lg.Fatal().Err(err).Msg("Cannot connect to DB")
	}
	defer dbConn.Close()

	// Миграции накатываются при старте
	if err := migrations.Run(cfg.DB.Conn); err != nil {
		lg.Fatal().Err(err).Msg("Migrations failed")
	}

	store := db.NewStorage(dbConn)
	authSvc := auth.NewService(cfg.Auth.Secret, cfg.Auth.TokenExpDuration())
	h := handlers.NewHandler(store, authSvc, lg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.PingHandler)
	// регистрация и вход
	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)
	r.Post("/registergarage", h.RegisterGarageHandler)
	r.Post("/logingarage", h.LoginGarageHandler)
	// каталог типов работ открыт без токена
	r.Get("/jobs", h.GetJobsHandler)

	// маршруты владельца машины
	r.Group(func(r chi.Router) {
		r.Use(h.RequireUser)
		r.Get("/dashboard", h.DashboardHandler)
		r.Post("/car", h.CreateCarHandler)
		r.Get("/car/{carId}", h.GetCarHandler)
		r.Delete("/car/{carId}", h.DeleteCarHandler)
		r.Post("/car/{carId}/job", h.AddJobHandler)
		r.Delete("/userJob/{userJobId}", h.DeleteUserJobHandler)
		r.Patch("/bid/{bidId}/accept", h.AcceptBidHandler)
	})

	// маршруты гаража
	r.Group(func(r chi.Router) {
		r.Use(h.RequireGarage)
		r.Get("/garage/me", h.GarageMeHandler)
		r.Get("/myuserjobs", h.MyUserJobsHandler)
		r.Get("/alluserjobs", h.AllUserJobsHandler)
		r.Post("/userJobs/{userJobId}/bids", h.CreateBidHandler)
		r.Patch("/userJobs/{userJobId}/bids/{bidId}", h.EditBidHandler)
		r.Delete("/bid/{bidId}", h.DeleteBidHandler)
	})

	lg.Info().Str("addr", cfg.ServerAddr()).Msg("Starting server")
	if err := http.ListenAndServe(cfg.ServerAddr(), r); err != nil {
		lg.Fatal().Err(err).Msg("Server stopped")
	}
}
