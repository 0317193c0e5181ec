package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/jukebox/pkg/rest"
)

type roomStateInput struct {
	RoomId string `json:"room_id" validate:"required,max=64"`
}

func (c controller) health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"})
}

func (c controller) getRoomState(w http.ResponseWriter, r *http.Request) {
	input := roomStateInput{RoomId: chi.URLParam(r, "room-id")}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	roomState, err := c.playerService.GetRoomState(r.Context(), input.RoomId)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to get room state", "error", err)
		rest.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": roomState})
}
