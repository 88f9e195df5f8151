// Package client is a typed client for the finsight HTTP API.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/finsight-ai/finsight/internal/models"
)

// Client talks to a running finsight server.
type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	http := resty.New()
	http.SetBaseURL(baseURL)
	http.SetTimeout(60 * time.Second)
	http.SetHeader("Content-Type", "application/json")
	return &Client{http: http}
}

// SessionHistory is the GET /api/message payload.
type SessionHistory struct {
	History              []models.Message             `json:"history"`
	VisualizationHistory []models.VisualizationRecord `json:"visualizationHistory"`
}

// TurnRequest is one POST /api/message call. Set exactly one of Message,
// Selection, or DataQuery.
type TurnRequest struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Selection string `json:"selection,omitempty"`
	DataQuery string `json:"dataQuery,omitempty"`
}

// TurnResult is the POST /api/message payload.
type TurnResult struct {
	SessionID            string                       `json:"sessionId"`
	Response             models.AgentResponse         `json:"response"`
	History              []models.Message             `json:"history"`
	VisualizationHistory []models.VisualizationRecord `json:"visualizationHistory"`
}

type apiError struct {
	Error string `json:"error"`
}

// FetchSession returns the session's history; empty collections for an
// unknown id.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (*SessionHistory, error) {
	var out SessionHistory
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("sessionId", sessionID).
		SetResult(&out).
		SetError(&apiErr).
		Get("/api/message")
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch session: %s (%d)", apiErr.Error, resp.StatusCode())
	}
	return &out, nil
}

// PostTurn submits one chat turn.
func (c *Client) PostTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	var out TurnResult
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/message")
	if err != nil {
		return nil, fmt.Errorf("post turn: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("post turn: %s (%d)", apiErr.Error, resp.StatusCode())
	}
	return &out, nil
}

// DeleteSession removes all session state.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"sessionId": sessionID}).
		SetError(&apiErr).
		Delete("/api/message")
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete session: %s (%d)", apiErr.Error, resp.StatusCode())
	}
	return nil
}
