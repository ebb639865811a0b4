package pages

import (
	"context"
	"strconv"
	"strings"

	"carbids/internal/apiclient"
	"carbids/internal/session"
	"carbids/models"

	"github.com/rs/zerolog"
)

// Режимы порогового фильтра по суммам ставок.
const (
	ModeHighest = "highest"
	ModeLowest  = "lowest"
)

// Filter — чистый предикат над списком открытых работ.
// Пересчитывается на каждое изменение ввода, состояния не держит.
type Filter struct {
	// Подстрока описания работы, без учета регистра
	Description string
	// Точное число ставок, строкой как в поле ввода ("" — выключено)
	BidCount string
	// Порог суммы и режим сравнения ("" — выключено)
	Threshold int
	Mode      string
}

// Matches — работа проходит фильтр, если выполняются все включенные условия.
func (f Filter) Matches(job models.UserJob) bool {
	if f.Description != "" {
		desc := strings.ToLower(job.Job.Description)
		if !strings.Contains(desc, strings.ToLower(f.Description)) {
			return false
		}
	}
	if f.BidCount != "" {
		if strconv.Itoa(len(job.Bids)) != f.BidCount {
			return false
		}
	}
	switch f.Mode {
	case ModeHighest:
		if !anyBid(job.Bids, func(b models.Bid) bool { return b.Amount >= f.Threshold }) {
			return false
		}
	case ModeLowest:
		if !anyBid(job.Bids, func(b models.Bid) bool { return b.Amount <= f.Threshold }) {
			return false
		}
	}
	return true
}

func anyBid(bids []models.Bid, pred func(models.Bid) bool) bool {
	for _, b := range bids {
		if pred(b) {
			return true
		}
	}
	return false
}

// Browser — витрина открытых работ для гаража: фильтр и подача ставок.
type Browser struct {
	client *apiclient.Client
	log    zerolog.Logger

	GarageID int
	Jobs     []models.UserJob
	Filter   Filter
	Err      error
}

// NewBrowser проверяет сессию роли garage и настраивает клиента.
func NewBrowser(client *apiclient.Client, provider session.Provider, log zerolog.Logger) (*Browser, error) {
	sess, err := session.Require(provider, session.RoleGarage)
	if err != nil {
		return nil, err
	}
	client.SetToken(sess.Token)
	return &Browser{client: client, log: log}, nil
}

// Load запрашивает профиль гаража и открытые работы. Работы с уже
// принятой ставкой отбрасываются, даже если бэкенд их вернул.
func (b *Browser) Load(ctx context.Context) error {
	me, err := b.client.GarageMe(ctx)
	if err != nil {
		b.Err = err
		return err
	}
	b.GarageID = me.ID

	jobs, err := b.client.AllUserJobs(ctx)
	if err != nil {
		b.Err = err
		return err
	}
	b.Err = nil
	b.Jobs = nil
	for _, job := range jobs {
		if !job.HasAcceptedBid() {
			b.Jobs = append(b.Jobs, job)
		}
	}
	return nil
}

// Filtered применяет предикат; порядок остается серверным.
func (b *Browser) Filtered() []models.UserJob {
	var out []models.UserJob
	for _, job := range b.Jobs {
		if b.Filter.Matches(job) {
			out = append(out, job)
		}
	}
	return out
}

// OwnBid — ставка текущего гаража на работу, если есть.
func (b *Browser) OwnBid(job models.UserJob) (models.Bid, bool) {
	return job.BidByGarage(b.GarageID)
}

// SubmitBid подает новую ставку. Предусловие: у гаража еще нет ставки
// на эту работу и сумма положительна.
func (b *Browser) SubmitBid(ctx context.Context, userJobID, amount int) {
	if amount <= 0 {
		b.log.Warn().Int("amount", amount).Msg("bid amount must be positive")
		return
	}
	for _, job := range b.Jobs {
		if job.ID != userJobID {
			continue
		}
		if _, exists := job.BidByGarage(b.GarageID); exists {
			b.log.Warn().Int("userJobId", userJobID).Msg("garage already has a bid on this job")
			return
		}
	}
	bid := models.NewBid{Amount: amount, GarageID: b.GarageID}
	if err := b.client.CreateBid(ctx, userJobID, bid); err != nil {
		b.log.Error().Err(err).Msg("failed to submit the bid")
		return
	}
	if err := b.Load(ctx); err != nil {
		b.log.Error().Err(err).Msg("failed to reload jobs")
	}
}

// EditBid заменяет сумму существующей собственной ставки.
func (b *Browser) EditBid(ctx context.Context, userJobID, bidID, amount int) {
	if amount <= 0 {
		b.log.Warn().Int("amount", amount).Msg("bid amount must be positive")
		return
	}
	if err := b.client.UpdateBid(ctx, userJobID, bidID, amount); err != nil {
		b.log.Error().Err(err).Msg("failed to submit the bid")
		return
	}
	if err := b.Load(ctx); err != nil {
		b.log.Error().Err(err).Msg("failed to reload jobs")
	}
}
