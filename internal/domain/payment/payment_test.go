package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundBreakdown(t *testing.T) {
	fee, credited := RefundBreakdown(decimal.NewFromInt(1000))
	assert.True(t, fee.Equal(decimal.NewFromInt(100)))
	assert.True(t, credited.Equal(decimal.NewFromInt(900)))
}

func TestApplyRefundPartial(t *testing.T) {
	p := New("pay1", "o1", "user@example.com", decimal.NewFromInt(5000), MethodCreditCard, "tx1")
	p.MarkCompleted()

	full, err := p.ApplyRefund(decimal.NewFromInt(900))
	require.NoError(t, err)
	assert.False(t, full)
	assert.Equal(t, StatusPartiallyRefunded, p.Status)
	assert.True(t, p.RefundAmount.Equal(decimal.NewFromInt(900)))
}

func TestApplyRefundReachesFull(t *testing.T) {
	p := New("pay1", "o1", "user@example.com", decimal.NewFromInt(1800), MethodPaypay, "tx1")
	p.MarkCompleted()

	full, err := p.ApplyRefund(decimal.NewFromInt(900))
	require.NoError(t, err)
	assert.False(t, full)

	full, err = p.ApplyRefund(decimal.NewFromInt(900))
	require.NoError(t, err)
	assert.True(t, full)
	assert.Equal(t, StatusRefunded, p.Status)
	assert.True(t, p.RefundAmount.Equal(p.Amount))
}

func TestApplyRefundExceeds(t *testing.T) {
	p := New("pay1", "o1", "user@example.com", decimal.NewFromInt(1000), MethodPoint, "tx1")
	p.MarkCompleted()

	_, err := p.ApplyRefund(decimal.NewFromInt(900))
	require.NoError(t, err)

	_, err = p.ApplyRefund(decimal.NewFromInt(200))
	assert.ErrorIs(t, err, ErrRefundExceedsAmount)
	assert.True(t, p.RefundAmount.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, StatusPartiallyRefunded, p.Status)
}

func TestApplyRefundAfterFull(t *testing.T) {
	p := New("pay1", "o1", "user@example.com", decimal.NewFromInt(900), MethodCreditCard, "tx1")
	p.MarkCompleted()

	full, err := p.ApplyRefund(decimal.NewFromInt(900))
	require.NoError(t, err)
	require.True(t, full)

	_, err = p.ApplyRefund(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("paypay")
	require.NoError(t, err)
	assert.Equal(t, MethodPaypay, m)

	_, err = ParseMethod("BARTER")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestCloneIsIndependent(t *testing.T) {
	p := New("pay1", "o1", "user@example.com", decimal.NewFromInt(1000), MethodCreditCard, "tx1")
	clone := p.Clone()
	clone.MarkDeleted()
	clone.Version = 7

	assert.False(t, p.IsDeleted())
	assert.Equal(t, 0, p.Version)
}
