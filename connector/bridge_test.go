package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/stretchr/testify/require"
)

func TestBridgeSend(t *testing.T) {
	var path string
	var body bridgeSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(bridgeSendResponse{MessageId: "wamid.123"})
	}))
	defer srv.Close()

	c := NewBridgeConnector(srv.URL, srv.Client())
	result, err := c.Send(context.Background(), "instance-1", "+5511999990000", "Oi Maria")
	require.NoError(t, err)
	require.Equal(t, "wamid.123", result.ProviderMessageId)
	require.Equal(t, "/instance/instance-1/send-text", path)
	require.Equal(t, "+5511999990000", body.Phone)
	require.Equal(t, "Oi Maria", body.Message)
}

func TestBridgeSendMedia(t *testing.T) {
	var path string
	var body bridgeSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(bridgeSendResponse{MessageId: "wamid.456"})
	}))
	defer srv.Close()

	c := NewBridgeConnector(srv.URL, srv.Client())
	result, err := c.SendMedia(context.Background(), "instance-1", "+5511999990000", "https://cdn.example.com/p.png", "confira")
	require.NoError(t, err)
	require.Equal(t, "wamid.456", result.ProviderMessageId)
	require.Equal(t, "/instance/instance-1/send-media", path)
	require.Equal(t, "https://cdn.example.com/p.png", body.MediaUrl)
	require.Equal(t, "confira", body.Caption)
}

func TestBridgeSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewBridgeConnector(srv.URL, srv.Client())
	_, err := c.Send(context.Background(), "instance-1", "+5511999990000", "Oi")
	require.Error(t, err)
}

func TestBridgeStatus(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"known status passes through": func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/instance/instance-1/status", r.URL.Path)
				json.NewEncoder(w).Encode(bridgeStatusResponse{Status: "connected"})
			}))
			defer srv.Close()

			c := NewBridgeConnector(srv.URL, srv.Client())
			status, err := c.Status(context.Background(), "instance-1")
			require.NoError(t, err)
			require.Equal(t, model.CONNECTION_CONNECTED, status)
		},
		"unknown status maps to error state": func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(bridgeStatusResponse{Status: "qr-pending"})
			}))
			defer srv.Close()

			c := NewBridgeConnector(srv.URL, srv.Client())
			status, err := c.Status(context.Background(), "instance-1")
			require.NoError(t, err)
			require.Equal(t, model.CONNECTION_ERROR, status)
		},
		"http failure is an error state": func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			c := NewBridgeConnector(srv.URL, srv.Client())
			status, err := c.Status(context.Background(), "instance-1")
			require.Error(t, err)
			require.Equal(t, model.CONNECTION_ERROR, status)
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	bridge := NewBridgeConnector("http://localhost:1", nil)
	registry.Register(model.CONNECTOR_BRIDGE, bridge)

	conn, err := registry.Get(model.CONNECTOR_BRIDGE)
	require.NoError(t, err)
	require.Same(t, bridge, conn)

	_, err = registry.Get(model.CONNECTOR_CLOUD)
	require.Error(t, err)
}
