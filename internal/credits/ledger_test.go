package credits

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoUser = errors.New("no such user")

type fakeStore struct {
	mu        sync.Mutex
	balances  map[string]int
	purchased map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{balances: map[string]int{}, purchased: map[string]int{}}
}

func (s *fakeStore) Balance(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[userID]
	if !ok {
		return 0, errNoUser
	}
	return b, nil
}

func (s *fakeStore) TryDeduct(ctx context.Context, userID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[userID]
	if !ok {
		return 0, errNoUser
	}
	if b < amount {
		return b, ErrInsufficientCredits
	}
	s.balances[userID] = b - amount
	return b - amount, nil
}

func (s *fakeStore) Refund(ctx context.Context, userID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[userID]
	if !ok {
		return 0, errNoUser
	}
	s.balances[userID] = b + amount
	return b + amount, nil
}

func (s *fakeStore) Add(ctx context.Context, userID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[userID]
	if !ok {
		return 0, errNoUser
	}
	s.balances[userID] = b + amount
	s.purchased[userID] += amount
	return b + amount, nil
}

func TestCheckBalance(t *testing.T) {
	store := newFakeStore()
	store.balances["u1"] = 2
	ledger := NewLedger(store)
	ctx := context.Background()

	check, err := ledger.CheckBalance(ctx, "u1", 3)
	require.NoError(t, err)
	assert.False(t, check.Sufficient)
	assert.Equal(t, 2, check.Balance)

	check, err = ledger.CheckBalance(ctx, "u1", 2)
	require.NoError(t, err)
	assert.True(t, check.Sufficient)

	check, err = ledger.CheckBalance(ctx, "missing", 1)
	assert.ErrorIs(t, err, errNoUser)
	assert.False(t, check.Sufficient)
	assert.Zero(t, check.Balance)
}

func TestDeductInsufficientKeepsBalance(t *testing.T) {
	store := newFakeStore()
	store.balances["u1"] = 2
	ledger := NewLedger(store)

	_, err := ledger.Deduct(context.Background(), "u1", 3)
	var insufficient *InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, 3, insufficient.Required)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, "Insufficient credits. Required: 3, Available: 2", err.Error())
	assert.Equal(t, 2, store.balances["u1"])
}

func TestDeductThenRefundRestoresBalance(t *testing.T) {
	ctx := context.Background()
	for amount := 0; amount <= 7; amount++ {
		store := newFakeStore()
		store.balances["u1"] = 7
		ledger := NewLedger(store)

		_, err := ledger.Deduct(ctx, "u1", amount)
		require.NoError(t, err)
		require.NoError(t, ledger.Refund(ctx, "u1", amount))
		assert.Equal(t, 7, store.balances["u1"], "amount %d", amount)
	}
}

func TestAddRaisesPurchasedTotal(t *testing.T) {
	store := newFakeStore()
	store.balances["u1"] = 1
	ledger := NewLedger(store)

	balance, err := ledger.Add(context.Background(), "u1", 40)
	require.NoError(t, err)
	assert.Equal(t, 41, balance)
	assert.Equal(t, 40, store.purchased["u1"])

	require.NoError(t, ledger.Refund(context.Background(), "u1", 2))
	assert.Equal(t, 40, store.purchased["u1"])
}

func TestNegativeAmountsRejected(t *testing.T) {
	store := newFakeStore()
	store.balances["u1"] = 5
	ledger := NewLedger(store)
	ctx := context.Background()

	_, err := ledger.Deduct(ctx, "u1", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.ErrorIs(t, ledger.Refund(ctx, "u1", -1), ErrInvalidAmount)
	_, err = ledger.Add(ctx, "u1", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, 5, store.balances["u1"])
}

func TestBalanceNeverNegative(t *testing.T) {
	store := newFakeStore()
	store.balances["u1"] = 3
	ledger := NewLedger(store)
	ctx := context.Background()

	ops := []struct {
		kind   string
		amount int
	}{
		{"deduct", 2}, {"deduct", 2}, {"refund", 1}, {"deduct", 3}, {"add", 4},
		{"deduct", 6}, {"deduct", 1}, {"refund", 2}, {"deduct", 5},
	}
	for _, op := range ops {
		switch op.kind {
		case "deduct":
			_, _ = ledger.Deduct(ctx, "u1", op.amount)
		case "refund":
			_ = ledger.Refund(ctx, "u1", op.amount)
		case "add":
			_, _ = ledger.Add(ctx, "u1", op.amount)
		}
		assert.GreaterOrEqual(t, store.balances["u1"], 0)
	}
}

func TestConcurrentDeductsExactlyOneWins(t *testing.T) {
	store := newFakeStore()
	store.balances["u1"] = 5
	ledger := NewLedger(store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Deduct(context.Background(), "u1", 3)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				failures++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 2, store.balances["u1"])
}
