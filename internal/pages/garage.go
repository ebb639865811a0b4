package pages

import (
	"context"

	"carbids/internal/apiclient"
	"carbids/internal/session"
	"carbids/models"

	"github.com/rs/zerolog"
)

// Garage — обзор гаража: принятые работы и собственные открытые ставки.
type Garage struct {
	client *apiclient.Client
	log    zerolog.Logger

	GarageID int
	Jobs     []models.UserJob
	Err      error
}

// OwnBid — собственная ставка вместе с работой, к которой она относится.
type OwnBid struct {
	Bid models.Bid
	Job models.UserJob
}

// NewGarage проверяет сессию роли garage и настраивает клиента.
func NewGarage(client *apiclient.Client, provider session.Provider, log zerolog.Logger) (*Garage, error) {
	sess, err := session.Require(provider, session.RoleGarage)
	if err != nil {
		return nil, err
	}
	client.SetToken(sess.Token)
	return &Garage{client: client, log: log}, nil
}

// Load запрашивает профиль гаража и работы с его ставками.
func (g *Garage) Load(ctx context.Context) error {
	me, err := g.client.GarageMe(ctx)
	if err != nil {
		g.Err = err
		return err
	}
	g.GarageID = me.ID

	jobs, err := g.client.MyUserJobs(ctx)
	if err != nil {
		g.Err = err
		return err
	}
	g.Err = nil
	g.Jobs = jobs
	return nil
}

// AcceptedJobs — работы, где принята ставка этого гаража.
func (g *Garage) AcceptedJobs() []models.UserJob {
	var out []models.UserJob
	for _, job := range g.Jobs {
		if accepted, ok := job.AcceptedBid(); ok && accepted.GarageID == g.GarageID {
			out = append(out, job)
		}
	}
	return out
}

// OpenBids — непринятые собственные ставки с их работами.
func (g *Garage) OpenBids() []OwnBid {
	var out []OwnBid
	for _, job := range g.Jobs {
		for _, bid := range job.Bids {
			if !bid.Accepted && bid.GarageID == g.GarageID {
				out = append(out, OwnBid{Bid: bid, Job: job})
			}
		}
	}
	return out
}

// Contact возвращает контакт владельца машины по работе.
func (g *Garage) Contact(job models.UserJob) (models.User, bool) {
	if job.Car == nil {
		return models.User{}, false
	}
	return job.Car.User, true
}

// EditBid заменяет сумму собственной открытой ставки и перечитывает список.
func (g *Garage) EditBid(ctx context.Context, userJobID, bidID, amount int) {
	if err := g.client.UpdateBid(ctx, userJobID, bidID, amount); err != nil {
		g.log.Error().Err(err).Msg("failed to submit the bid")
		return
	}
	if err := g.Load(ctx); err != nil {
		g.log.Error().Err(err).Msg("failed to reload jobs")
	}
}

// RemoveBid отзывает открытую ставку.
func (g *Garage) RemoveBid(ctx context.Context, bidID int) {
	if err := g.client.DeleteBid(ctx, bidID); err != nil {
		g.log.Error().Err(err).Msg("failed to delete bid")
		return
	}
	if err := g.Load(ctx); err != nil {
		g.log.Error().Err(err).Msg("failed to reload jobs")
	}
}
