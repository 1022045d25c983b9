package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"studyzone_backend/internal/services/dto"
	"studyzone_backend/pkg/apperrors"
)

// ErrUnavailable is returned when the server could not be reached at all.
var ErrUnavailable = errors.New("server unavailable")

// APIClient talks to the /api/v1/auth endpoints.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	body := dto.LoginRequest{Email: email, Password: password}
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate asks the server whether token is still good and returns the current user.
func (c *APIClient) Validate(ctx context.Context, token string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/validate", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var payload bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&payload).Encode(in); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apperrors.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
			return apperrors.New(apperrors.CodeInternalError, "client", resp.Status, resp.StatusCode)
		}
		return apperrors.New(apiErr.Code, "client", apiErr.Message, resp.StatusCode).WithDetails(apiErr.Errors)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
