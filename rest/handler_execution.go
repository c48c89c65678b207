package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/flow"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"go.uber.org/zap"
)

type executeFlowRequest struct {
	TenantId    string         `json:"tenantId"`
	FlowId      string         `json:"flowId"`
	ContactId   string         `json:"contactId"`
	TriggerData map[string]any `json:"triggerData,omitempty"`
}

func (s *Server) HandleExecuteFlow(w http.ResponseWriter, r *http.Request) {
	var req executeFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid execution body")
		return
	}
	defer r.Body.Close()
	err := s.engine.ExecuteFlow(req.TenantId, req.FlowId, req.ContactId, req.TriggerData)
	if err != nil {
		if errors.Is(err, flow.ErrFlowInactive) {
			respondWithError(w, http.StatusConflict, "flow_inactive", "flow is not active")
			return
		}
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, "not_found", notFound.Error())
			return
		}
		logger.Error("error executing flow", zap.String("flow", req.FlowId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "internal", "error executing flow")
		return
	}
	respondAccepted(w, map[string]any{"accepted": true, "flowId": req.FlowId})
}
