package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/scheduler"
	"go.uber.org/zap"
)

func (s *Server) HandleScheduleMessage(w http.ResponseWriter, r *http.Request) {
	var message model.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid message body")
		return
	}
	defer r.Body.Close()
	messageId, err := s.messages.Schedule(message)
	if err != nil {
		if errors.Is(err, scheduler.ErrScheduledInPast) {
			respondWithError(w, http.StatusBadRequest, "scheduled_in_past", err.Error())
			return
		}
		logger.Error("error scheduling message", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "internal", "error scheduling message")
		return
	}
	respondAccepted(w, map[string]any{"accepted": true, "messageId": messageId})
}

func (s *Server) HandleCancelScheduledMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantId, ok := vars["tenant"]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "missing tenant")
		return
	}
	messageId, ok := vars["id"]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "missing message id")
		return
	}
	if err := s.messages.Cancel(tenantId, messageId); err != nil {
		logger.Error("error cancelling scheduled message", zap.String("message", messageId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "internal", "error cancelling scheduled message")
		return
	}
	respondOK(w, map[string]any{"cancelled": true})
}
