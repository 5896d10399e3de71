package repository

import (
	"context"

	"camerastore/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderCounterGormRepository struct {
	db *gorm.DB
}

func NewOrderCounterGormRepository(db *gorm.DB) *OrderCounterGormRepository {
	return &OrderCounterGormRepository{db: db}
}

// Next はその日の連番を1つ進めて返す。
// INSERT ... ON CONFLICT DO UPDATE で行ロックを取るので、同時実行でも同じ番号は出ない。
func (r *OrderCounterGormRepository) Next(ctx context.Context, day string) (int64, error) {
	var seq int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter := model.OrderCounter{Day: day, Seq: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"seq": gorm.Expr("order_counters.seq + 1"),
			}),
		}).Create(&counter).Error
		if err != nil {
			return err
		}

		var current model.OrderCounter
		if err := tx.Where("day = ?", day).First(&current).Error; err != nil {
			return err
		}
		seq = current.Seq
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return seq, nil
}
