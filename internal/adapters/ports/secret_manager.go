package ports

import "context"

// Secret represents a secret value with metadata
type Secret struct {
	Value     string
	Version   string
	Metadata  map[string]string
	CreatedAt string
}

// SecretManagerAdapter abstracts the secret backend used to load gateway
// credentials (local filesystem, AWS Secrets Manager, Vault)
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret stores a secret value at the given path
	PutSecret(ctx context.Context, path, value string, tags map[string]string) (string, error)
}
