package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
)

func newTestPayment(id, orderID, txID string) *dompay.Payment {
	return dompay.New(id, orderID, "user@example.com", decimal.NewFromInt(1000), dompay.MethodCreditCard, txID)
}

func TestPaymentRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()

	p := newTestPayment("pay1", "o1", "tx1")
	require.NoError(t, repo.Insert(ctx, p))

	found, err := repo.FindByTransactionID(ctx, "tx1")
	require.NoError(t, err)
	assert.Equal(t, "pay1", found.ID)
	assert.Equal(t, dompay.StatusInitiated, found.Status)
}

func TestPaymentRepositoryVersionedUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()
	require.NoError(t, repo.Insert(ctx, newTestPayment("pay1", "o1", "tx1")))

	first, err := repo.FindByTransactionID(ctx, "tx1")
	require.NoError(t, err)
	second, err := repo.FindByTransactionID(ctx, "tx1")
	require.NoError(t, err)

	first.MarkCompleted()
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 1, first.Version)

	// The second reader still holds version 0; its write must lose.
	second.MarkCanceled()
	assert.ErrorIs(t, repo.Update(ctx, second), dompay.ErrConflict)

	stored, err := repo.FindByTransactionID(ctx, "tx1")
	require.NoError(t, err)
	assert.Equal(t, dompay.StatusCompleted, stored.Status)
}

func TestPaymentRepositorySoftDeleteByOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()
	require.NoError(t, repo.Insert(ctx, newTestPayment("pay1", "o1", "tx1")))
	require.NoError(t, repo.Insert(ctx, newTestPayment("pay2", "o1", "tx2")))
	require.NoError(t, repo.Insert(ctx, newTestPayment("pay3", "o2", "tx3")))

	require.NoError(t, repo.SoftDeleteByOrder(ctx, "o1"))

	_, err := repo.FindByTransactionID(ctx, "tx1")
	assert.ErrorIs(t, err, dompay.ErrNotFound)
	_, err = repo.FindByTransactionID(ctx, "tx2")
	assert.ErrorIs(t, err, dompay.ErrNotFound)

	forOrder, err := repo.ListByOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Empty(t, forOrder)

	kept, err := repo.FindByTransactionID(ctx, "tx3")
	require.NoError(t, err)
	assert.Equal(t, "pay3", kept.ID)
}

func TestPaymentRepositoryListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()

	completed := newTestPayment("pay1", "o1", "tx1")
	completed.MarkCompleted()
	require.NoError(t, repo.Insert(ctx, completed))
	require.NoError(t, repo.Insert(ctx, newTestPayment("pay2", "o2", "tx2")))

	out, err := repo.ListByStatus(ctx, dompay.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "pay1", out[0].ID)
}
