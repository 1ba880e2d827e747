package id

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UUIDGenerator produces surrogate ids and payment transaction ids.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator { return &UUIDGenerator{} }

func (*UUIDGenerator) NewID() string { return uuid.NewString() }

// OrderNumberGenerator formats human-readable order numbers as
// <UTC timestamp>-<8 uppercase chars>, e.g. 20260829153012-3F9A81BC.
// Uniqueness is statistical only; callers that need a guarantee retry
// against their store.
type OrderNumberGenerator struct {
	now func() time.Time
}

func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{now: time.Now}
}

func (g *OrderNumberGenerator) NewOrderNumber() string {
	timestamp := g.now().UTC().Format("20060102150405")
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return timestamp + "-" + suffix
}
