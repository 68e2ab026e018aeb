package handler

import (
	"net/http"

	"github.com/go-chi/render"
)

// MessageResponse представляет ответ с текстовым сообщением
type MessageResponse struct {
	Msg string `json:"msg"`
}

// RespondWithJSON отправляет JSON ответ с указанным статус кодом
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// RespondWithMessage отправляет 200 с сообщением {"msg": ...}
func RespondWithMessage(w http.ResponseWriter, r *http.Request, msg string) {
	RespondWithJSON(w, r, http.StatusOK, MessageResponse{Msg: msg})
}
