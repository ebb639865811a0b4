// Package session хранит токен и роль между запусками клиента —
// аналог localStorage браузера.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser   = "user"
	RoleGarage = "garage"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrWrongRole   = errors.New("wrong role for this page")
)

// Session — сохранённые учетные данные текущего входа.
type Session struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// Provider — хранилище сессии, внедряется в контроллеры страниц.
type Provider interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileProvider хранит сессию в JSON-файле.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Load() (Session, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNotLoggedIn
		}
		return Session{}, fmt.Errorf("read session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session file: %w", err)
	}
	if s.Token == "" {
		return Session{}, ErrNotLoggedIn
	}
	return s, nil
}

func (p *FileProvider) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	// Токен — секрет, файл только для владельца
	if err := os.WriteFile(p.Path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (p *FileProvider) Clear() error {
	err := os.Remove(p.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Require загружает сессию и проверяет роль. Страницы вызывают его
// до первого запроса данных; ErrNotLoggedIn и ErrWrongRole — сигнал
// отправить пользователя на соответствующий вход.
func Require(p Provider, role string) (Session, error) {
	s, err := p.Load()
	if err != nil {
		return Session{}, err
	}
	if s.Type != role {
		return Session{}, ErrWrongRole
	}
	return s, nil
}

// Claims — полезная нагрузка токена для отображения.
// Подпись клиент не проверяет: доверенная проверка живет на сервере.
type Claims struct {
	Subject  int
	Username string
	Role     string
}

func ParseClaims(token string) (Claims, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("unexpected token claims")
	}
	c := Claims{}
	if sub, ok := mc["sub"].(float64); ok {
		c.Subject = int(sub)
	}
	if username, ok := mc["username"].(string); ok {
		c.Username = username
	}
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	return c, nil
}
