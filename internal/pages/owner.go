// Package pages — контроллеры страниц клиента. Каждый контроллер
// владеет своим срезом состояния и ходит в бэкенд напрямую; общего
// клиентского стора нет. После каждой записи состояние сбрасывается
// и перечитывается с сервера — он единственный источник истины.
package pages

import (
	"context"

	"carbids/internal/apiclient"
	"carbids/internal/session"
	"carbids/models"

	"github.com/rs/zerolog"
)

// Owner — панель владельца: машины, работы, принятие ставок.
type Owner struct {
	client *apiclient.Client
	log    zerolog.Logger

	Cars     []models.Car
	Selected *models.Car
	// Работа, чьи ставки развернуты (0 — ни одна)
	ViewingBidsJobID int
	// Принятая ставка по каждой работе выбранной машины: jobID -> bidID (0 — нет)
	AcceptedBids map[int]int
	// Ошибка проверки ответа; страница показывает список нарушений вместо данных
	Err error
}

// NewOwner проверяет сессию роли user и настраивает клиента.
func NewOwner(client *apiclient.Client, provider session.Provider, log zerolog.Logger) (*Owner, error) {
	sess, err := session.Require(provider, session.RoleUser)
	if err != nil {
		return nil, err
	}
	client.SetToken(sess.Token)
	return &Owner{
		client:       client,
		log:          log,
		AcceptedBids: map[int]int{},
	}, nil
}

// Load загружает список машин владельца.
func (o *Owner) Load(ctx context.Context) error {
	cars, err := o.client.Dashboard(ctx)
	if err != nil {
		o.Err = err
		return err
	}
	o.Err = nil
	o.Cars = cars
	return nil
}

// SelectCar выбирает машину и восстанавливает карту принятых ставок
// из загруженных данных.
func (o *Owner) SelectCar(carID int) bool {
	for i := range o.Cars {
		if o.Cars[i].ID == carID {
			o.Selected = &o.Cars[i]
			o.rebuildAcceptedBids()
			return true
		}
	}
	return false
}

func (o *Owner) rebuildAcceptedBids() {
	o.AcceptedBids = map[int]int{}
	if o.Selected == nil {
		return
	}
	for _, job := range o.Selected.UserJobs {
		if accepted, ok := job.AcceptedBid(); ok {
			o.AcceptedBids[job.ID] = accepted.ID
		} else {
			o.AcceptedBids[job.ID] = 0
		}
	}
}

// JobCatalog — каталог типов работ для формы добавления.
func (o *Owner) JobCatalog(ctx context.Context) ([]models.Job, error) {
	return o.client.Jobs(ctx)
}

// AddCar создает машину и перечитывает список.
// Отказ записи логируется и не меняет локальное состояние.
func (o *Owner) AddCar(ctx context.Context, newCar models.NewCar) {
	if err := o.client.CreateCar(ctx, newCar); err != nil {
		o.log.Error().Err(err).Msg("failed to create car")
		return
	}
	if err := o.Load(ctx); err != nil {
		o.log.Error().Err(err).Msg("failed to reload cars")
	}
}

// RemoveCar удаляет машину и убирает ее из локального списка.
func (o *Owner) RemoveCar(ctx context.Context, carID int) {
	if err := o.client.DeleteCar(ctx, carID); err != nil {
		o.log.Error().Err(err).Msg("failed to delete car")
		return
	}
	kept := o.Cars[:0]
	for _, car := range o.Cars {
		if car.ID != carID {
			kept = append(kept, car)
		}
	}
	o.Cars = kept
	if o.Selected != nil && o.Selected.ID == carID {
		o.Selected = nil
		o.AcceptedBids = map[int]int{}
	}
}

// AddJob добавляет работу на выбранную машину.
func (o *Owner) AddJob(ctx context.Context, job models.AddJob) {
	if o.Selected == nil {
		return
	}
	if err := o.client.AddJob(ctx, o.Selected.ID, job); err != nil {
		o.log.Error().Err(err).Msg("failed to add job")
		return
	}
	o.reloadSelected(ctx)
	if err := o.Load(ctx); err != nil {
		o.log.Error().Err(err).Msg("failed to reload cars")
	}
}

// RemoveJob удаляет работу с выбранной машины.
func (o *Owner) RemoveJob(ctx context.Context, userJobID int) {
	if o.Selected == nil {
		return
	}
	if err := o.client.DeleteUserJob(ctx, userJobID); err != nil {
		o.log.Error().Err(err).Msg("failed to remove job")
		return
	}
	o.reloadSelected(ctx)
	if err := o.Load(ctx); err != nil {
		o.log.Error().Err(err).Msg("failed to reload cars")
	}
}

// ToggleViewBids разворачивает или сворачивает ставки работы.
func (o *Owner) ToggleViewBids(userJobID int) {
	if o.ViewingBidsJobID == userJobID {
		o.ViewingBidsJobID = 0
		return
	}
	o.ViewingBidsJobID = userJobID
}

// AcceptBid переключает принятие ставки: повторное принятие той же
// ставки снимает его. Клиент шлет желаемое состояние, после успеха
// карта обновляется и машина перечитывается целиком.
func (o *Owner) AcceptBid(ctx context.Context, userJobID, bidID int) {
	if o.Selected == nil {
		return
	}
	isCurrentlyAccepted := o.AcceptedBids[userJobID] == bidID

	if err := o.client.AcceptBid(ctx, bidID, !isCurrentlyAccepted); err != nil {
		o.log.Error().Err(err).Msg("failed to accept/unaccept bid")
		return
	}
	if isCurrentlyAccepted {
		o.AcceptedBids[userJobID] = 0
	} else {
		o.AcceptedBids[userJobID] = bidID
	}
	o.reloadSelected(ctx)
}

// reloadSelected заменяет выбранную машину авторитетной копией с сервера.
func (o *Owner) reloadSelected(ctx context.Context) {
	if o.Selected == nil {
		return
	}
	car, err := o.client.Car(ctx, o.Selected.ID)
	if err != nil {
		o.log.Error().Err(err).Msg("failed to reload car")
		return
	}
	for i := range o.Cars {
		if o.Cars[i].ID == car.ID {
			o.Cars[i] = car
			o.Selected = &o.Cars[i]
			o.rebuildAcceptedBids()
			return
		}
	}
	o.Selected = &car
	o.rebuildAcceptedBids()
}
