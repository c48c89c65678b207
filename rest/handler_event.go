package rest

import (
	"encoding/json"
	"net/http"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"go.uber.org/zap"
)

func (s *Server) HandleMessageEvent(w http.ResponseWriter, r *http.Request) {
	var event model.MessageEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid event body")
		return
	}
	defer r.Body.Close()
	if err := s.matcher.OnMessageReceived(event); err != nil {
		logger.Error("error consuming message event", zap.String("conversation", event.ConversationId), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "event_rejected", "error consuming message event")
		return
	}
	respondAccepted(w, map[string]any{"accepted": true})
}

func (s *Server) HandleKeywordEvent(w http.ResponseWriter, r *http.Request) {
	var event model.MessageEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid event body")
		return
	}
	defer r.Body.Close()
	if err := s.matcher.OnKeywordCandidate(event); err != nil {
		logger.Error("error consuming keyword event", zap.String("conversation", event.ConversationId), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "event_rejected", "error consuming keyword event")
		return
	}
	respondAccepted(w, map[string]any{"accepted": true})
}

func (s *Server) HandleTagEvent(w http.ResponseWriter, r *http.Request) {
	var event model.TagEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid event body")
		return
	}
	defer r.Body.Close()
	if err := s.matcher.OnTagAdded(event); err != nil {
		logger.Error("error consuming tag event", zap.String("contact", event.ContactId), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "event_rejected", "error consuming tag event")
		return
	}
	respondAccepted(w, map[string]any{"accepted": true})
}
