package tests

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTokenWalletContract verifies that an adapter complies with ports.TokenWallet.
func RunTokenWalletContract(t *testing.T, wallet ports.TokenWallet) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := wallet.Load(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	})

	t.Run("Save_Load_Overwrite", func(t *testing.T) {
		require.NoError(t, wallet.Save(ctx, "alpha", "token-1"))
		got, err := wallet.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "token-1", got)

		require.NoError(t, wallet.Save(ctx, "alpha", "token-2"))
		got, err = wallet.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "token-2", got)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, wallet.Save(ctx, "beta", "token-3"))
		names, err := wallet.List(ctx)
		require.NoError(t, err)
		sort.Strings(names)
		assert.Equal(t, []string{"alpha", "beta"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, wallet.Delete(ctx, "alpha"))
		_, err := wallet.Load(ctx, "alpha")
		assert.ErrorIs(t, err, domain.ErrWalletNotFound)

		// Idempotent
		assert.NoError(t, wallet.Delete(ctx, "alpha"))
	})
}

// RunResultCacheContract verifies that an adapter complies with ports.ResultCache.
func RunResultCacheContract(t *testing.T, cache ports.ResultCache) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Miss", func(t *testing.T) {
		_, err := cache.Get(ctx, "absent")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Set_Get", func(t *testing.T) {
		want := &domain.CachedResult{
			Program:       ",.",
			Output:        "",
			NextState:     "dG9rZW4=",
			AwaitingInput: true,
			Outcome:       domain.OutcomeSuspended,
			Steps:         1,
		}
		require.NoError(t, cache.Set(ctx, "k1", want, time.Minute))

		got, err := cache.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Set_NoExpiry", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k2", &domain.CachedResult{Outcome: domain.OutcomeFinished}, 0))
		got, err := cache.Get(ctx, "k2")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeFinished, got.Outcome)
	})
}
