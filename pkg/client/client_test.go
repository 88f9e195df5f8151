package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/models"
)

func newStubAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestFetchSession(t *testing.T) {
	c := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/message", r.URL.Path)
		assert.Equal(t, "conv-1", r.URL.Query().Get("sessionId"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SessionHistory{
			History:              []models.Message{{Role: models.RoleUser, Content: "hi"}},
			VisualizationHistory: []models.VisualizationRecord{},
		})
	})

	got, err := c.FetchSession(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, "hi", got.History[0].Content)
}

func TestPostTurn(t *testing.T) {
	c := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req TurnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "display financials", req.Message)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TurnResult{
			SessionID: "conv-1",
			Response: models.AgentResponse{
				Type:    models.ResponseClarify,
				Content: "Please specify the format you would like: table, chart, or list.",
				Options: models.FormatOptions(),
			},
		})
	})

	got, err := c.PostTurn(context.Background(), TurnRequest{Message: "display financials"})
	require.NoError(t, err)
	assert.Equal(t, "conv-1", got.SessionID)
	assert.Equal(t, models.ResponseClarify, got.Response.Type)
	assert.Equal(t, []string{"table", "chart", "list"}, got.Response.Options)
}

func TestPostTurnSurfacesAPIError(t *testing.T) {
	c := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": `unknown format "graph"`})
	})

	_, err := c.PostTurn(context.Background(), TurnRequest{Selection: "graph"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "graph"`)
	assert.Contains(t, err.Error(), "400")
}

func TestDeleteSession(t *testing.T) {
	c := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "conv-1", body["sessionId"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Session history cleared successfully."})
	})

	require.NoError(t, c.DeleteSession(context.Background(), "conv-1"))
}

func TestDeleteSessionNotFound(t *testing.T) {
	c := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Session not found."})
	})

	err := c.DeleteSession(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Session not found.")
}
