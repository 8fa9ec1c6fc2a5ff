package dao

import (
	"context"
	"fmt"
	"time"

	"pixgram-social/pkg/database"
	"pixgram-social/pkg/errs"
)

// 计数列白名单，表名和列名拼进SQL前先过这张表
var allowedCounterColumns = map[string]map[string]bool{
	"images": {
		"likes_count":     true,
		"favorites_count": true,
		"comments_count":  true,
		"repost_count":    true,
	},
	"users": {
		"followers_count": true,
		"following_count": true,
	},
}

// counterDAO 冗余计数维护实现
type counterDAO struct {
	db *database.PostgreSQL
}

// NewCounterDAO 创建计数DAO实例
func NewCounterDAO(db *database.PostgreSQL) CounterDAO {
	return &counterDAO{db: db}
}

// validateColumn 校验表名与列名
func validateColumn(table, column string) error {
	cols, ok := allowedCounterColumns[table]
	if !ok || !cols[column] {
		return fmt.Errorf("%w: unknown counter %s.%s", errs.ErrInvalidParam, table, column)
	}
	return nil
}

// Adjust 原子增减计数
// 单条UPDATE完成读改写，WHERE里的下界守卫保证计数永不为负；
// 守卫拦下的递减说明计数已经漂移，向上返回而不是悄悄钳到零
func (d *counterDAO) Adjust(ctx context.Context, table, column string, id, delta int64) error {
	if err := validateColumn(table, column); err != nil {
		return err
	}

	sql := fmt.Sprintf(
		"UPDATE %s SET %s = %s + ?, updated_at = ? WHERE id = ? AND %s + ? >= 0",
		table, column, column, column)

	result := d.db.WithContext(ctx).Exec(sql, delta, time.Now(), id, delta)
	if result.Error != nil {
		return fmt.Errorf("failed to adjust counter %s.%s: %w", table, column, result.Error)
	}
	if result.RowsAffected == 0 {
		if delta < 0 {
			return errs.ErrCounterUnderflow
		}
		return errs.ErrNotFound
	}
	return nil
}

// Get 读当前计数
func (d *counterDAO) Get(ctx context.Context, table, column string, id int64) (int64, error) {
	if err := validateColumn(table, column); err != nil {
		return 0, err
	}

	var value int64
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", column, table)
	result := d.db.WithContext(ctx).Raw(sql, id).Scan(&value)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to read counter %s.%s: %w", table, column, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, errs.ErrNotFound
	}
	return value, nil
}

// Set 覆盖计数，对账时以账本计数为准回写
func (d *counterDAO) Set(ctx context.Context, table, column string, id, value int64) error {
	if err := validateColumn(table, column); err != nil {
		return err
	}

	sql := fmt.Sprintf("UPDATE %s SET %s = ?, updated_at = ? WHERE id = ?", table, column)
	result := d.db.WithContext(ctx).Exec(sql, value, time.Now(), id)
	if result.Error != nil {
		return fmt.Errorf("failed to set counter %s.%s: %w", table, column, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
