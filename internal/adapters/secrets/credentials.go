package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kevin07696/argus-gateway/internal/adapters/ports"
	"github.com/kevin07696/argus-gateway/internal/domain"
)

// credentialSecret is the JSON document stored under the credentials path
type credentialSecret struct {
	SiteID   string `json:"site_id"`
	Username string `json:"req_username"`
	Password string `json:"req_password"`
}

// LoadCredentials fetches and decodes gateway credentials from a secret
// backend. The secret is a JSON document with site_id, req_username and
// req_password keys.
func LoadCredentials(ctx context.Context, adapter ports.SecretManagerAdapter, path string) (domain.Credentials, error) {
	secret, err := adapter.GetSecret(ctx, path)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to load gateway credentials: %w", err)
	}

	var doc credentialSecret
	if err := json.Unmarshal([]byte(secret.Value), &doc); err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to decode gateway credentials: %w", err)
	}

	creds := domain.Credentials{
		SiteID:   doc.SiteID,
		Username: doc.Username,
		Password: doc.Password,
	}
	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, fmt.Errorf("incomplete gateway credentials at %s: %w", path, err)
	}
	return creds, nil
}
