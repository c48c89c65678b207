package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/action"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/flow"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/scheduler"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/trigger"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port        int
	matcher     *trigger.Matcher
	engine      *flow.Engine
	messages    *scheduler.MessageScheduler
	definitions persistence.DefinitionStore
	registry    *action.Registry
}

func NewServer(httpPort int, matcher *trigger.Matcher, engine *flow.Engine,
	messages *scheduler.MessageScheduler, definitions persistence.DefinitionStore,
	registry *action.Registry) (*Server, error) {

	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		Port:        httpPort,
		matcher:     matcher,
		engine:      engine,
		messages:    messages,
		definitions: definitions,
		registry:    registry,
	}

	router := mux.NewRouter()
	router.HandleFunc("/event/message", s.HandleMessageEvent).Methods(http.MethodPost)
	router.HandleFunc("/event/keyword", s.HandleKeywordEvent).Methods(http.MethodPost)
	router.HandleFunc("/event/tag", s.HandleTagEvent).Methods(http.MethodPost)

	router.HandleFunc("/execution", s.HandleExecuteFlow).Methods(http.MethodPost)

	router.HandleFunc("/scheduled-message", s.HandleScheduleMessage).Methods(http.MethodPost)
	router.HandleFunc("/scheduled-message/{tenant}/{id}", s.HandleCancelScheduledMessage).Methods(http.MethodDelete)

	router.HandleFunc("/metadata/flow", s.HandleCreateFlow).Methods(http.MethodPost)
	router.HandleFunc("/metadata/flow/{tenant}/{id}", s.HandleGetFlow).Methods(http.MethodGet)

	router.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]any{"status": "ok"})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	respondWithJSON(w, http.StatusOK, message)
}

func respondAccepted(w http.ResponseWriter, message map[string]any) {
	respondWithJSON(w, http.StatusAccepted, message)
}

func respondWithError(w http.ResponseWriter, code int, errorCode string, message string) {
	respondWithJSON(w, code, map[string]string{"code": errorCode, "error": message})
}
