package domain

import "context"

// Row is one flat record of a remote sheet; keys are header names.
type Row map[string]string

type RowUpdate struct {
	Position int
	Row      Row
}

// RowStore is the abstract row-oriented remote store. Positions are
// 1-based and contiguous per sheet; deleting a range shifts later rows up.
type RowStore interface {
	Read(ctx context.Context, sheet string) ([]Row, error)
	Append(ctx context.Context, sheet string, row Row) (int, error)
	Update(ctx context.Context, sheet string, position int, row Row) error
	BatchUpdate(ctx context.Context, sheet string, updates []RowUpdate) error
	DeleteRows(ctx context.Context, sheet string, start, end int) error
}
