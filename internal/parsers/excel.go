package parsers

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finlens/internal/models"
)

// ExcelParser reads the first worksheet of an .xlsx statement. The first
// non-empty row is the header.
type ExcelParser struct {
	// Sheet overrides the worksheet to read
	Sheet string
}

// Parse implements Parser.
func (p *ExcelParser) Parse(r io.Reader, source string) ([]models.Transaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: open workbook: %w", source, err)
	}
	defer f.Close()

	sheet := p.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: workbook has no sheets", source)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: read sheet %q: %w", source, sheet, err)
	}

	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("%s: empty statement", source)
	}

	l, err := newLayout(rows[start], rows[start+1:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	var transactions []models.Transaction
	for i, row := range rows[start+1:] {
		if t, ok := l.transaction(row, source, start+i+2); ok {
			transactions = append(transactions, t)
		}
	}
	return transactions, nil
}
