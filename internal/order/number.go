package order

import (
	"context"
	"fmt"
	"time"

	"github.com/mimasafoods/storefront/internal/sequence"
)

// NumberGenerator hands out human-readable order numbers of the form
// ORD-YYYYMMDD-NNNN. The counter restarts each day because the date is the
// sequence partition key.
type NumberGenerator struct {
	seq sequence.Repository
	now func() time.Time
}

func NewNumberGenerator(seq sequence.Repository) *NumberGenerator {
	return &NumberGenerator{seq: seq, now: time.Now}
}

func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	day := g.now().Format("20060102")
	n, err := g.seq.NextSequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%04d", day, n), nil
}
