package main

import (
	"fmt"
	"os"

	"carbids/internal/session"
	"carbids/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var garageName string

// registerCmd регистрирует владельца машины
var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a car owner account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}
		creds := models.Credentials{Username: args[0], Password: password}
		if err := newClient().Register(cmd.Context(), creds); err != nil {
			return err
		}
		fmt.Println("Account created, now run 'carbids login'")
		return nil
	},
}

// loginCmd входит как владелец и сохраняет сессию
var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in as a car owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}
		creds := models.Credentials{Username: args[0], Password: password}
		tr, err := newClient().Login(cmd.Context(), creds)
		if err != nil {
			return err
		}
		if err := sessionProvider().Save(session.Session{Token: tr.Token, Type: tr.Type}); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", args[0], tr.Type)
		return nil
	},
}

// registerGarageCmd регистрирует гараж
var registerGarageCmd = &cobra.Command{
	Use:   "register-garage <email>",
	Short: "Register a garage account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}
		reg := models.RegisterGarage{Name: garageName, Username: args[0], Password: password}
		if err := newClient().RegisterGarage(cmd.Context(), reg); err != nil {
			return err
		}
		fmt.Println("Garage created, now run 'carbids login-garage'")
		return nil
	},
}

// loginGarageCmd входит как гараж и сохраняет сессию
var loginGarageCmd = &cobra.Command{
	Use:   "login-garage <email>",
	Short: "Log in as a garage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}
		creds := models.Credentials{Username: args[0], Password: password}
		tr, err := newClient().LoginGarage(cmd.Context(), creds)
		if err != nil {
			return err
		}
		if err := sessionProvider().Save(session.Session{Token: tr.Token, Type: tr.Type}); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", args[0], tr.Type)
		return nil
	},
}

// logoutCmd стирает сохраненную сессию
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessionProvider().Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

// whoamiCmd показывает, кто сейчас вошел
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := sessionProvider().Load()
		if err != nil {
			return explainSession(err)
		}
		claims, err := session.ParseClaims(sess.Token)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", claims.Username, sess.Type)
		return nil
	},
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func init() {
	registerGarageCmd.Flags().StringVar(&garageName, "name", "", "garage display name")
	registerGarageCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(registerCmd, loginCmd, registerGarageCmd, loginGarageCmd, logoutCmd, whoamiCmd)
}
