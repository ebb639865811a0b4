// Package schema — граница проверки ответов API.
// Всё, что пришло по сети, проходит через Decode* до использования;
// непроверенные данные дальше этой границы не уходят.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue — одно нарушение: путь до поля и сообщение.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError собирает все нарушения одного ответа.
// Не фатальна для процесса: вызывающая страница показывает список.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, is.Path+": "+is.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В путях нарушений используем имена полей из json-тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Decode разбирает JSON в dst и проверяет его по тегам validate.
// Открытая форма: лишние поля допустимы.
func Decode(data []byte, dst any) error {
	return decode(data, dst, false)
}

// DecodeStrict — закрытая форма: неизвестное поле считается нарушением.
// Применяется к автомобилям и к ответам логина.
func DecodeStrict(data []byte, dst any) error {
	return decode(data, dst, true)
}

func decode(data []byte, dst any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return asIssue(err)
	}
	return Check(dst)
}

// DecodeList разбирает массив поэлементно. Ошибка любого элемента
// проваливает весь ответ, путь нарушения содержит индекс элемента.
func DecodeList[T any](data []byte) ([]T, error) {
	return decodeList[T](data, false)
}

// DecodeListStrict — то же для закрытых форм элементов.
func DecodeListStrict[T any](data []byte) ([]T, error) {
	return decodeList[T](data, true)
}

func decodeList[T any](data []byte, strict bool) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, asIssue(err)
	}
	out := make([]T, 0, len(raw))
	for i, elem := range raw {
		var v T
		if err := decode(elem, &v, strict); err != nil {
			return nil, withPrefix(err, fmt.Sprintf("[%d]", i))
		}
		out = append(out, v)
	}
	return out, nil
}

// Check проверяет уже разобранное значение по тегам validate.
func Check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Path:    trimRoot(fe.Namespace()),
			Message: message(fe),
		})
	}
	return &ValidationError{Issues: issues}
}

// trimRoot убирает имя корневого типа из пути: Car.UserJob[0].id -> UserJob[0].id
func trimRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is missing or empty"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("does not satisfy constraint %q", fe.Tag())
	}
}

// asIssue переводит ошибки json-декодера в ValidationError,
// чтобы страница показывала их так же, как нарушения полей.
func asIssue(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Issues: []Issue{{
			Path:    typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}}}
	}
	var synErr *json.SyntaxError
	if errors.As(err, &synErr) {
		return &ValidationError{Issues: []Issue{{Message: "response is not valid JSON"}}}
	}
	if strings.HasPrefix(err.Error(), "json: unknown field") {
		return &ValidationError{Issues: []Issue{{Message: err.Error()}}}
	}
	return err
}

func withPrefix(err error, prefix string) error {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	issues := make([]Issue, 0, len(verr.Issues))
	for _, is := range verr.Issues {
		path := prefix
		if is.Path != "" {
			path += "." + is.Path
		}
		issues = append(issues, Issue{Path: path, Message: is.Message})
	}
	return &ValidationError{Issues: issues}
}
