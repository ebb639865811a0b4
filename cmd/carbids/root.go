package main

import (
	"errors"
	"fmt"

	"carbids/internal/apiclient"
	"carbids/internal/config"
	"carbids/internal/logger"
	"carbids/internal/session"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	lg  zerolog.Logger
)

// rootCmd — базовая команда клиента
var rootCmd = &cobra.Command{
	Use:   "carbids",
	Short: "Маркетплейс обслуживания машин: владельцы против гаражей",
	Long: `carbids — клиент маркетплейса обслуживания машин.

Владелец регистрирует машины и работы, гаражи подают ставки,
владелец принимает не больше одной ставки на работу.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		lg = logger.New(cfg.Environment)
		return nil
	},
}

func newClient() *apiclient.Client {
	return apiclient.New(cfg.Client.APIURL, lg)
}

func sessionProvider() session.Provider {
	return session.NewFileProvider(cfg.Client.SessionFile)
}

// explainSession переводит ошибки сессии в подсказку пользователю,
// аналог редиректа на страницу входа.
func explainSession(err error) error {
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return fmt.Errorf("not logged in, run 'carbids login' or 'carbids login-garage' first")
	case errors.Is(err, session.ErrWrongRole):
		return fmt.Errorf("current session has the wrong role for this command")
	}
	return err
}
