package backendhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BearBump/CargoGate/internal/integrations/backend"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/stretchr/testify/require"
)

func TestClient_QueryByID_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shipments/123", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 123, "origin": "Bogotá", "destination": "Medellín", "status": "in-transit",
		})
	}))
	defer srv.Close()

	c := New(models.SystemGround, srv.URL, time.Second)
	res := c.QueryByID(context.Background(), 123)
	require.Equal(t, backend.OutcomeFound, res.Outcome)
	require.Equal(t, uint64(123), res.Record.ID)
	// бэкенд тег не прислал — коннектор проставил свой
	require.Equal(t, models.SystemGround, res.Record.System)
}

func TestClient_QueryByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(models.SystemAir, srv.URL, time.Second)
	res := c.QueryByID(context.Background(), 999)
	require.Equal(t, backend.OutcomeNotFound, res.Outcome)
	require.Nil(t, res.Record)
	require.NoError(t, res.Err)
}

func TestClient_QueryByID_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(models.SystemSea, srv.URL, time.Second)
	res := c.QueryByID(context.Background(), 1)
	require.Equal(t, backend.OutcomeUnavailable, res.Outcome)
	require.Error(t, res.Err)
}

func TestClient_QueryByID_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // адрес валиден, но никто не слушает

	c := New(models.SystemGround, srv.URL, time.Second)
	res := c.QueryByID(context.Background(), 1)
	require.Equal(t, backend.OutcomeUnavailable, res.Outcome)
	require.Error(t, res.Err)
}

func TestClient_QueryByID_GarbageBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(models.SystemGround, srv.URL, time.Second)
	res := c.QueryByID(context.Background(), 1)
	require.Equal(t, backend.OutcomeUnavailable, res.Outcome)
}

func TestClient_BaseURLWithPathPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// префикс из base_url должен сохраниться
		require.Equal(t, "/api/v2/shipments/7", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "origin": "A", "destination": "B", "status": "pending",
		})
	}))
	defer srv.Close()

	c := New(models.SystemGround, srv.URL+"/api/v2", time.Second)
	res := c.QueryByID(context.Background(), 7)
	require.Equal(t, backend.OutcomeFound, res.Outcome)
	require.Equal(t, uint64(7), res.Record.ID)
}

func TestClient_ListAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shipments", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 2,
			"shipments": []map[string]any{
				{"id": 1, "origin": "A", "destination": "B", "status": "pending"},
				{"id": 2, "origin": "C", "destination": "D", "status": "delivered", "system": "AIR"},
			},
		})
	}))
	defer srv.Close()

	c := New(models.SystemAir, srv.URL, time.Second)
	recs, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, models.SystemAir, recs[0].System)
	require.Equal(t, models.SystemAir, recs[1].System)
}

func TestClient_UpdateStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shipments/5/status", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "delivered", body["status"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 5, "origin": "A", "destination": "B", "status": "delivered",
		})
	}))
	defer srv.Close()

	c := New(models.SystemGround, srv.URL, time.Second)
	res := c.UpdateStatus(context.Background(), 5, "delivered")
	require.Equal(t, backend.OutcomeFound, res.Outcome)
	require.Equal(t, "delivered", res.Record.Status)
}

func TestClient_Describe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/info", r.URL.Path)
		_ = json.NewEncoder(w).Encode(backend.Info{Name: "ground-svc", Version: "1.2.3"})
	}))
	defer srv.Close()

	c := New(models.SystemGround, srv.URL, time.Second)
	info, err := c.Describe(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ground-svc", info.Name)
	require.Equal(t, "1.2.3", info.Version)
}
