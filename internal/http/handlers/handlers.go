// handlers содержит REST-хендлеры news-portal: декодирование и валидация
// входа, вызов сервисного слоя и запись ответа в общем конверте
// {success, data, message, ...}.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pribylovaa/go-news-portal/internal/http/apierrors"
	"github.com/pribylovaa/go-news-portal/internal/http/middleware"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
)

// maxBodyBytes: верхняя граница JSON-тела запроса.
const maxBodyBytes = 1 << 20

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	svc      *service.Service
	validate *validator.Validate
}

// New собирает хендлеры поверх сервиса.
func New(svc *service.Service) *Handlers {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях используем человекочитаемое имя поля из тега label.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})

	return &Handlers{svc: svc, validate: v}
}

// dataResponse: успешный ответ с полезной нагрузкой.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// countResponse: список без пагинации.
type countResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

// pageResponse: постраничная выдача.
type pageResponse struct {
	Success     bool  `json:"success"`
	Count       int   `json:"count"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Data        any   `json:"data"`
}

// messageResponse: успешный ответ без данных.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(data any) dataResponse { return dataResponse{Success: true, Data: data} }

func newPageResponse[T any](p *models.Page[T]) pageResponse {
	return pageResponse{
		Success:     true,
		Count:       len(p.Items),
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		CurrentPage: p.Page,
		Data:        p.Items,
	}
}

// writeJSON: единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

var errBadJSON = &service.ValidationError{Msg: "Invalid request body"}

// decodeJSON читает JSON-тело и валидирует его тегами validate.
// Неизвестные поля игнорируются: клиенты шлют статью целиком.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadJSON
	}

	return h.validateStruct(dst)
}

// validateStruct переводит первую ошибку validator в ValidationError.
func (h *Handlers) validateStruct(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fes validator.ValidationErrors
	if errors.As(err, &fes) && len(fes) > 0 {
		return &service.ValidationError{Msg: fieldMessage(fes[0])}
	}

	return errBadJSON
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", fe.Field(), fe.Param())
	}

	return fmt.Sprintf("Invalid %s", strings.ToLower(fe.Field()))
}

// pageRequest читает page/limit из query. Нечисловые значения
// трактуются как отсутствующие, границы выставляет сервис.
func pageRequest(r *http.Request) service.PageRequest {
	return service.PageRequest{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return n
}

// identity возвращает субъекта запроса; для защищённых маршрутов
// его гарантирует middleware.RequireAuth.
func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrNoToken)
		return models.Identity{}, false
	}
	return id, true
}

// Health: проба живости API.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "API is running"})
}

// NotFound: ответ для неизвестных маршрутов.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, apierrors.Response{Success: false, Message: "Route not found"})
}
