package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"this-or-that/internal/domain"
)

// BackendAuthenticator verifies bearer tokens against the hosted backend's
// user endpoint: GET {baseURL}/auth/v1/user with the service key as apikey.
type BackendAuthenticator struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewBackendAuthenticator(baseURL, serviceKey string, timeout time.Duration) *BackendAuthenticator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BackendAuthenticator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

type backendUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (a *BackendAuthenticator) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("apikey", a.serviceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.User{}, domain.Backend("verify token", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.User{}, domain.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.User{}, domain.Backend("verify token", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var u backendUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return domain.User{}, domain.Backend("decode user", err)
	}
	if u.ID == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	return domain.User{ID: u.ID, Email: u.Email}, nil
}
