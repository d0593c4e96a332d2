package sqlite

import "time"

type SheetRowModel struct {
	ID        uint   `gorm:"primaryKey"`
	Sheet     string `gorm:"index:idx_sheet_rows_sheet_position"`
	Position  int    `gorm:"index:idx_sheet_rows_sheet_position"`
	Payload   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SheetRowModel) TableName() string {
	return "sheet_rows"
}
