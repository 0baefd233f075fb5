// Package parsers reads bank statement exports into transactions.
package parsers

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"finlens/internal/models"
)

// ErrUnsupportedFormat is returned for statement files no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

// SupportedExtensions lists the statement file extensions accepted for upload.
var SupportedExtensions = []string{".csv", ".xlsx"}

// Parser turns a statement export into transactions. source is recorded on
// every transaction as its SourceFile.
type Parser interface {
	Parse(r io.Reader, source string) ([]models.Transaction, error)
}

// ForFile picks a parser by file extension.
func ForFile(name string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return &CSVParser{}, nil
	case ".xlsx":
		return &ExcelParser{}, nil
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save the file as .xlsx", ErrUnsupportedFormat)
	case "":
		return nil, fmt.Errorf("%w: %q has no file extension", ErrUnsupportedFormat, name)
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
	}
}

// IsSupported reports whether name has an extension ForFile accepts.
func IsSupported(name string) bool {
	_, err := ForFile(name)
	return err == nil
}
