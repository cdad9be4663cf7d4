package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/ports"
)

// SessionManager keeps the caller-held token of a named session in a wallet,
// so an interrupted run can continue from another process.
type SessionManager struct {
	Wallet ports.TokenWallet
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(wallet ports.TokenWallet) *SessionManager {
	return &SessionManager{
		Wallet: wallet,
	}
}

// Load returns the stored token and whether one existed.
func (sm *SessionManager) Load(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" || sm.Wallet == nil {
		return "", false, nil
	}

	token, err := sm.Wallet.Load(ctx, sessionID)
	if err == nil {
		return token, true, nil
	}
	if errors.Is(err, domain.ErrWalletNotFound) {
		return "", false, nil
	}
	return "", false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
}

// Save persists the token.
func (sm *SessionManager) Save(ctx context.Context, sessionID string, token string) error {
	if sessionID == "" || sm.Wallet == nil {
		return nil
	}
	return sm.Wallet.Save(ctx, sessionID, token)
}
