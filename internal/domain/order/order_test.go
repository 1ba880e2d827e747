package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, id, productID string, price int64, qty int) Item {
	t.Helper()
	item, err := NewItem(id, productID, "product "+productID, decimal.NewFromInt(price), qty, "")
	require.NoError(t, err)
	return item
}

func TestNewItem(t *testing.T) {
	item, err := NewItem("i1", "p1", "Keyboard", decimal.NewFromInt(1000), 2, "https://img/1.png")
	require.NoError(t, err)
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(2000)))

	_, err = NewItem("i2", "p1", "Keyboard", decimal.NewFromInt(1000), 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewItem("i3", "p1", "Keyboard", decimal.NewFromInt(1000), -1, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReplaceItemsPricing(t *testing.T) {
	o := New("o1", "20260829120000-ABCD1234", "user@example.com")
	assert.Equal(t, StatusPending, o.Status)

	o.ReplaceItems([]Item{
		mustItem(t, "i1", "p1", 1000, 2),
		mustItem(t, "i2", "p2", 500, 1),
	})

	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(2500)))
	assert.True(t, o.ShippingFee.Equal(decimal.NewFromInt(600)))
	assert.True(t, o.Tax.Equal(decimal.NewFromInt(250)))
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(3350)))
}

func TestRepriceFloorsTax(t *testing.T) {
	o := New("o1", "n1", "user@example.com")
	o.ReplaceItems([]Item{mustItem(t, "i1", "p1", 105, 1)})

	// 10% of 105 is 10.5; the tax floors to 10.
	assert.True(t, o.Tax.Equal(decimal.NewFromInt(10)))
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(715)))
}

func TestSetSubtotal(t *testing.T) {
	o := New("o1", "n1", "user@example.com")
	o.SetSubtotal(decimal.NewFromInt(1000))

	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, o.Tax.Equal(decimal.NewFromInt(100)))
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(1700)))
}

func TestSetStatus(t *testing.T) {
	t.Run("delivered stamps timestamp", func(t *testing.T) {
		o := New("o1", "n1", "user@example.com")
		require.NoError(t, o.SetStatus(StatusDelivered))
		assert.Equal(t, StatusDelivered, o.Status)
		assert.NotNil(t, o.DeliveredAt)
		assert.Nil(t, o.CompletedAt)
	})

	t.Run("completed stamps timestamp", func(t *testing.T) {
		o := New("o1", "n1", "user@example.com")
		require.NoError(t, o.SetStatus(StatusCompleted))
		assert.Equal(t, StatusCompleted, o.Status)
		assert.NotNil(t, o.CompletedAt)
	})

	t.Run("lifecycle-owned statuses are rejected", func(t *testing.T) {
		for _, s := range []Status{StatusRefunded, StatusPartiallyRefunded, StatusCancelled, StatusPaymentFailed} {
			o := New("o1", "n1", "user@example.com")
			err := o.SetStatus(s)
			assert.ErrorIs(t, err, ErrStatusNotDirect, string(s))
			assert.Equal(t, StatusPending, o.Status)
		}
	})
}

func TestCancelable(t *testing.T) {
	cases := map[Status]bool{
		StatusPending:           true,
		StatusPaymentFailed:     true,
		StatusPartiallyRefunded: true,
		StatusShipped:           false,
		StatusDelivered:         false,
		StatusCompleted:         false,
	}
	for status, want := range cases {
		o := New("o1", "n1", "user@example.com")
		o.Status = status
		assert.Equal(t, want, o.Cancelable(), string(status))
	}
}

func TestMarkRefunded(t *testing.T) {
	o := New("o1", "n1", "user@example.com")
	o.MarkRefunded(false)
	assert.Equal(t, StatusPartiallyRefunded, o.Status)
	o.MarkRefunded(true)
	assert.Equal(t, StatusRefunded, o.Status)
}

func TestMarkDeleted(t *testing.T) {
	o := New("o1", "n1", "user@example.com")
	assert.False(t, o.IsDeleted())
	o.MarkDeleted()
	assert.True(t, o.IsDeleted())
	require.NotNil(t, o.DeletedAt)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("delivered")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, s)

	_, err = ParseStatus("TELEPORTED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCloneIsIndependent(t *testing.T) {
	o := New("o1", "n1", "user@example.com")
	o.ReplaceItems([]Item{mustItem(t, "i1", "p1", 1000, 1)})

	clone := o.Clone()
	clone.Items[0].Quantity = 99
	clone.MarkDeleted()

	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.False(t, o.IsDeleted())
}
