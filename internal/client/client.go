package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/service"
)

// Client is a typed wrapper over the streaming-service HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an API client for the given base URL (e.g. http://localhost:8080).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError carries the server's envelope message and HTTP status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

// Register creates an account. A nil error means the account was created.
func (c *Client) Register(ctx context.Context, req service.RegisterRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/api/register", req)
	return err
}

// Login authenticates and returns the user plus (possibly null) token.
func (c *Client) Login(ctx context.Context, userID, password string) (*service.LoginResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"userId":   userID,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var result service.LoginResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode login data: %w", err)
	}
	return &result, nil
}

// Movies fetches one catalog category.
func (c *Client) Movies(ctx context.Context, category string) (*models.MoviePage, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/movies/"+category, nil)
	if err != nil {
		return nil, err
	}

	var page models.MoviePage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode movie page: %w", err)
	}
	return &page, nil
}

// Health checks the API liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	return err
}
