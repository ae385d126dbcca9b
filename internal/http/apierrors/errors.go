// apierrors стандартизирует ответы об ошибках HTTP-слоя news-portal.
// На вход принимает ошибку сервисного слоя, на выход даёт:
//   - корректный HTTP-статус;
//   - конверт {success:false, message} с человекочитаемым сообщением.
//
// Источник истинности по сентинелам: internal/service.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-news-portal/internal/service"
)

// StatusClientClosedRequest: нестандартный код «клиент закрыл соединение».
const StatusClientClosedRequest = 499

// Response: конверт ошибки.
// RequestID прокидывается из X-Request-Id для трассировки.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// ToHTTP конвертирует ошибку сервиса в HTTP-статус и конверт.
//
// Поведение:
//   - ValidationError: 400 с её сообщением;
//   - конфликт уникальности: 400 "Duplicate field value entered" (email: "User already exists");
//   - NotFound: 404 с уточнением сущности;
//   - Forbidden: 403, Unauthorized/InvalidCredentials: 401;
//   - Internal: 500 с текстом первопричины;
//   - nil и прочее: 500 "Server Error".
func ToHTTP(err error) (int, Response) {
	status, msg := classify(err)
	return status, Response{Success: false, Message: msg}
}

func classify(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, "Server Error"
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Msg
	}

	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "Invalid argument"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, "Duplicate field value entered"

	case errors.Is(err, service.ErrArticleNotFound):
		return http.StatusNotFound, "News article not found"
	case errors.Is(err, service.ErrParentNotFound):
		return http.StatusNotFound, "Parent comment not found"
	case errors.Is(err, service.ErrCommentNotFound):
		return http.StatusNotFound, "Comment not found"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found"

	case errors.Is(err, service.ErrNotAdmin):
		return http.StatusForbidden, "Not authorized as an admin"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Not authorized to perform this action"

	case errors.Is(err, service.ErrNoToken):
		return http.StatusUnauthorized, "Not authorized, no token"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized, token failed"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"

	case errors.Is(err, service.ErrUploadsDisabled):
		return http.StatusServiceUnavailable, "Image uploads are disabled"

	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "Request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	}

	var ie *service.InternalError
	if errors.As(err, &ie) && ie.Cause != nil {
		return http.StatusInternalServerError, ie.Cause.Error()
	}

	return http.StatusInternalServerError, "Server Error"
}

// WriteError: хелпер для HTTP-хендлеров.
// Пишет статус и конверт, добавляет request id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
