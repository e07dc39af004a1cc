// Package identity resolves recipient contact data from the platform's
// identity provider. The dispatcher only sees the Resolver interface; an
// empty value with a nil error means the provider has no contact on file.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Resolver interface {
	PrimaryEmail(ctx context.Context, tenantID, userID string) (string, error)
	PrimaryPhone(ctx context.Context, tenantID, userID string) (string, error)
}

type httpResolver struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPResolver talks to the identity provider's internal contact
// endpoint: GET {base}/internal/tenants/{tenant}/users/{user}/contact.
func NewHTTPResolver(baseURL, apiKey string) Resolver {
	return &httpResolver{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type contactResponse struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *httpResolver) fetch(ctx context.Context, tenantID, userID string) (*contactResponse, error) {
	endpoint := fmt.Sprintf("%s/internal/tenants/%s/users/%s/contact",
		r.baseURL, url.PathEscape(tenantID), url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch contact for %s/%s: %w", tenantID, userID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &contactResponse{}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity provider returned %d for %s/%s", resp.StatusCode, tenantID, userID)
	}

	var contact contactResponse
	if err := json.NewDecoder(resp.Body).Decode(&contact); err != nil {
		return nil, fmt.Errorf("decode contact response: %w", err)
	}
	return &contact, nil
}

func (r *httpResolver) PrimaryEmail(ctx context.Context, tenantID, userID string) (string, error) {
	contact, err := r.fetch(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	return contact.Email, nil
}

func (r *httpResolver) PrimaryPhone(ctx context.Context, tenantID, userID string) (string, error) {
	contact, err := r.fetch(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	return contact.Phone, nil
}
