// Package history projects a change history into rows for display.
package history

import (
	"fmt"
	"time"

	"github.com/ontoserver/collabclient/pkg/models"
)

type Column int

const (
	ColumnDate Column = iota
	ColumnAuthor
	ColumnComment
)

var columnNames = [...]string{
	ColumnDate:    "Date",
	ColumnAuthor:  "Author",
	ColumnComment: "Comment",
}

// Columns returns every column in display order.
func Columns() []Column {
	return []Column{ColumnDate, ColumnAuthor, ColumnComment}
}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

func (c Column) value(meta models.ChangeMetadata) any {
	switch c {
	case ColumnDate:
		return meta.Date.Time
	case ColumnAuthor:
		return meta.Author
	default:
		return meta.Comment
	}
}

// Table is a read-only view over a change history with one row per
// recorded revision, oldest first.
type Table struct {
	history *models.ChangeHistory
}

func NewTable(h *models.ChangeHistory) *Table {
	return &Table{history: h}
}

// RowCount is the distance from the start to the head revision.
func (t *Table) RowCount() int {
	if t.history == nil {
		return 0
	}
	return t.history.Len()
}

func (t *Table) ColumnCount() int {
	return len(columnNames)
}

// Revision returns the revision displayed at row.
func (t *Table) Revision(row int) (models.DocumentRevision, error) {
	if row < 0 || row >= t.RowCount() {
		return 0, fmt.Errorf("row %d out of range [0, %d)", row, t.RowCount())
	}
	return t.history.StartRevision().Next(row), nil
}

// Metadata returns the metadata displayed at row.
func (t *Table) Metadata(row int) (models.ChangeMetadata, error) {
	rev, err := t.Revision(row)
	if err != nil {
		return models.ChangeMetadata{}, err
	}
	return t.history.MetadataFor(rev)
}

// Value returns the cell at row and col. Date cells are time.Time values,
// Author cells models.UserID and Comment cells strings.
func (t *Table) Value(row int, col Column) (any, error) {
	if col < 0 || int(col) >= len(columnNames) {
		return nil, fmt.Errorf("unknown column %d", int(col))
	}
	meta, err := t.Metadata(row)
	if err != nil {
		return nil, err
	}
	return col.value(meta), nil
}

// Text returns the cell formatted for plain text output.
func (t *Table) Text(row int, col Column) (string, error) {
	v, err := t.Value(row, col)
	if err != nil {
		return "", err
	}
	if ts, ok := v.(time.Time); ok {
		if ts.IsZero() {
			return "", nil
		}
		return ts.Format(time.RFC3339), nil
	}
	return fmt.Sprint(v), nil
}

// Row is one rendered line of the table.
type Row struct {
	Revision models.DocumentRevision `json:"revision"`
	Date     time.Time               `json:"date"`
	Author   models.UserID           `json:"author"`
	Comment  string                  `json:"comment"`
}

// Rows materializes the whole table.
func (t *Table) Rows() ([]Row, error) {
	rows := make([]Row, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		rev, err := t.Revision(i)
		if err != nil {
			return nil, err
		}
		meta, err := t.history.MetadataFor(rev)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			Revision: rev,
			Date:     meta.Date.Time,
			Author:   meta.Author,
			Comment:  meta.Comment,
		})
	}
	return rows, nil
}
