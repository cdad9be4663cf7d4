package ports

import "context"

// TokenWallet stores tokens on the caller side under a name.
// The engine never uses it; it lets the CLI resume a program across shell invocations.
type TokenWallet interface {
	// Save stores the token for name, replacing any previous one.
	Save(ctx context.Context, name string, token string) error

	// Load returns domain.ErrWalletNotFound if name does not exist.
	Load(ctx context.Context, name string) (string, error)

	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names.
	List(ctx context.Context) ([]string, error)
}
