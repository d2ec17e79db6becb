package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SuccessResponse стандартный конверт успешного ответа
// swagger:model SuccessResponse
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse стандартный конверт ошибки
// swagger:model ErrorResponse
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, payload any, code int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, data any, code int) error {
	return writeJSON(w, SuccessResponse{Success: true, Data: data}, code)
}

func WriteError(w http.ResponseWriter, message string, code int) error {
	return writeJSON(w, ErrorResponse{Success: false, Message: message}, code)
}

// WriteValidationError сворачивает ошибки валидатора в одно сообщение.
func WriteValidationError(w http.ResponseWriter, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return WriteError(w, "invalid request", http.StatusBadRequest)
	}

	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return WriteError(w, "invalid request: "+strings.Join(parts, "; "), http.StatusBadRequest)
}

func DecodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
