package memory_test

import (
	"testing"

	"github.com/aretw0/tapevm/pkg/adapters/memory"
	"github.com/aretw0/tapevm/pkg/ports/tests"
)

func TestWallet_Contract(t *testing.T) {
	tests.RunTokenWalletContract(t, memory.NewWallet())
}
