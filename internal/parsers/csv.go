package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"finlens/internal/logging"
	"finlens/internal/models"
)

// CSVParser reads comma separated statement exports with a header row.
type CSVParser struct{}

// Parse implements Parser.
func (p *CSVParser) Parse(r io.Reader, source string) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty statement", source)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: error reading header: %w", source, err)
	}

	type numbered struct {
		record []string
		line   int
	}
	var rows []numbered
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logging.Component("parsers").Warn("error reading line", "source", source, "line", line, "err", err)
			continue
		}
		rows = append(rows, numbered{record: record, line: line})
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.record
	}
	l, err := newLayout(header, records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	var transactions []models.Transaction
	for _, row := range rows {
		if t, ok := l.transaction(row.record, source, row.line); ok {
			transactions = append(transactions, t)
		}
	}

	return transactions, nil
}
