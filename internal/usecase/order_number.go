package usecase

import (
	"context"
	"fmt"
	"time"

	repo "camerastore/internal/repository"
)

// 1日あたりの上限。NNNN の4桁に収まる範囲
const maxDailyOrders = 9999

// ORD-YYYYMMDD-NNNN を発番する。連番は日付ごとのカウンタ行で原子的に進める
type OrderNumberGenerator struct {
	loc *time.Location
	now func() time.Time
}

func NewOrderNumberGenerator(loc *time.Location) *OrderNumberGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderNumberGenerator{loc: loc, now: time.Now}
}

// トランザクション内のカウンタrepoを渡す
func (g *OrderNumberGenerator) Next(ctx context.Context, counters repo.OrderCounterRepository) (string, error) {
	day := g.now().In(g.loc).Format("20060102")

	seq, err := counters.Next(ctx, day)
	if err != nil {
		return "", fmt.Errorf("next order sequence for %s: %w", day, err)
	}
	if seq < 1 || seq > maxDailyOrders {
		return "", fmt.Errorf("order sequence %d for %s is out of range 1-%d", seq, day, maxDailyOrders)
	}
	return fmt.Sprintf("ORD-%s-%04d", day, seq), nil
}
