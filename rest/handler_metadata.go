package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/flow"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

// HandleCreateFlow validates the definition synchronously: a malformed flow
// never reaches the dispatch pipeline.
func (s *Server) HandleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var def model.FlowDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid flow definition body")
		return
	}
	defer r.Body.Close()
	if err := flow.Validate(&def, s.registry); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_definition", err.Error())
		return
	}
	if def.Id == "" {
		def.Id = uuid.New().String()
	}
	if err := s.definitions.Save(def); err != nil {
		logger.Error("error saving flow definition", zap.String("flow", def.Id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "internal", "error saving flow definition")
		return
	}
	respondOK(w, map[string]any{"flowId": def.Id})
}

func (s *Server) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantId, ok := vars["tenant"]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "missing tenant")
		return
	}
	flowId, ok := vars["id"]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "missing flow id")
		return
	}
	def, err := s.definitions.Get(tenantId, flowId)
	if err != nil {
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, "not_found", notFound.Error())
			return
		}
		logger.Error("error loading flow definition", zap.String("flow", flowId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "internal", "error loading flow definition")
		return
	}
	respondWithJSON(w, http.StatusOK, def)
}
