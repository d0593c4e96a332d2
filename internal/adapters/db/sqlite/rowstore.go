package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roomlayout/inventorymap/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
}

// RowStore keeps every sheet as an ordered run of JSON rows in a single
// table. Positions are 1-based and contiguous per sheet.
type RowStore struct {
	db *gorm.DB
}

func NewRowStore(db *gorm.DB) *RowStore {
	return &RowStore{db: db}
}

func (r *RowStore) Read(ctx context.Context, sheet string) ([]domain.Row, error) {
	var models []SheetRowModel
	err := r.db.WithContext(ctx).
		Where("sheet = ?", sheet).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0, len(models))
	for _, m := range models {
		row, err := decodePayload(m.Payload)
		if err != nil {
			return nil, fmt.Errorf("sheet %s position %d: %w", sheet, m.Position, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *RowStore) Append(ctx context.Context, sheet string, row domain.Row) (int, error) {
	payload, err := encodePayload(row)
	if err != nil {
		return 0, err
	}

	var position int
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		err := tx.Model(&SheetRowModel{}).
			Where("sheet = ?", sheet).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error
		if err != nil {
			return err
		}
		position = maxPos + 1
		return tx.Create(&SheetRowModel{Sheet: sheet, Position: position, Payload: payload}).Error
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

func (r *RowStore) Update(ctx context.Context, sheet string, position int, row domain.Row) error {
	payload, err := encodePayload(row)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&SheetRowModel{}).
		Where("sheet = ? AND position = ?", sheet, position).
		Update("payload", payload)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sheet %s has no row at position %d", sheet, position)
	}
	return nil
}

func (r *RowStore) BatchUpdate(ctx context.Context, sheet string, updates []domain.RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			payload, err := encodePayload(u.Row)
			if err != nil {
				return err
			}
			res := tx.Model(&SheetRowModel{}).
				Where("sheet = ? AND position = ?", sheet, u.Position).
				Update("payload", payload)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("sheet %s has no row at position %d", sheet, u.Position)
			}
		}
		return nil
	})
}

// DeleteRows removes positions start..end inclusive and shifts every later
// row up so the sheet stays contiguous.
func (r *RowStore) DeleteRows(ctx context.Context, sheet string, start, end int) error {
	if start < 1 || end < start {
		return fmt.Errorf("invalid row range %d..%d", start, end)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("sheet = ? AND position BETWEEN ? AND ?", sheet, start, end).
			Delete(&SheetRowModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("sheet %s has no rows in range %d..%d", sheet, start, end)
		}
		shift := end - start + 1
		return tx.Model(&SheetRowModel{}).
			Where("sheet = ? AND position > ?", sheet, end).
			Update("position", gorm.Expr("position - ?", shift)).Error
	})
}

func encodePayload(row domain.Row) (string, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("encode row payload: %w", err)
	}
	return string(data), nil
}

func decodePayload(payload string) (domain.Row, error) {
	row := domain.Row{}
	if payload == "" {
		return row, nil
	}
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		return nil, fmt.Errorf("decode row payload: %w", err)
	}
	return row, nil
}
