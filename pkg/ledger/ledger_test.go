package ledger

import (
	"sync"
	"testing"

	"github.com/adxyz/admarket/pkg/errs"
	"github.com/adxyz/admarket/pkg/ids"
	"github.com/adxyz/admarket/pkg/log"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	l := New(log.NoOp())
	alice := ids.GenerateTestID()
	bob := ids.GenerateTestID()

	l.Deposit(alice, 1000)
	require.NoError(t, l.Transfer(alice, bob, 400))
	require.Equal(t, uint64(600), l.Balance(alice))
	require.Equal(t, uint64(400), l.Balance(bob))
}

func TestTransferInsufficient(t *testing.T) {
	l := New(log.NoOp())
	alice := ids.GenerateTestID()
	bob := ids.GenerateTestID()

	l.Deposit(alice, 100)
	err := l.Transfer(alice, bob, 101)
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	// Failed transfer has no effect.
	require.Equal(t, uint64(100), l.Balance(alice))
	require.Equal(t, uint64(0), l.Balance(bob))
}

func TestUnknownAccountIsZero(t *testing.T) {
	l := New(log.NoOp())
	require.Equal(t, uint64(0), l.Balance(ids.GenerateTestID()))
}

func TestConcurrentTransfersConserveSupply(t *testing.T) {
	l := New(log.NoOp())
	accounts := make([]ids.ID, 8)
	for i := range accounts {
		accounts[i] = ids.GenerateTestID()
		l.Deposit(accounts[i], 1000)
	}
	require.Equal(t, uint64(8000), l.TotalSupply())

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := accounts[i%len(accounts)]
			to := accounts[(i+1)%len(accounts)]
			// Some of these fail on insufficient balance; that is fine,
			// failures must simply have no effect.
			_ = l.Transfer(from, to, 300)
		}(i)
	}
	wg.Wait()

	require.Equal(t, uint64(8000), l.TotalSupply())
}
