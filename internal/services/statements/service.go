// Package statements runs uploaded statements through parsing and analysis
// and keeps the results for the web pages that display them.
package statements

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"finlens/internal/analysis"
	"finlens/internal/logging"
	"finlens/internal/models"
	"finlens/internal/parsers"
	"finlens/internal/services/storage"
)

var (
	ErrTooLarge       = errors.New("statement exceeds the upload limit")
	ErrNoTransactions = errors.New("no transactions found in statement")
)

// Service parses, analyzes and remembers statements
type Service struct {
	store    *storage.Store
	analyzer *analysis.Analyzer
	cache    *Cache
	maxBytes int64
	logger   *log.Logger
}

// Options configures a Service
type Options struct {
	MaxBytes int64
	TTL      time.Duration
}

// New creates a service. store may be nil when uploads are never kept.
func New(store *storage.Store, analyzer *analysis.Analyzer, opts Options) *Service {
	if analyzer == nil {
		analyzer = analysis.New(nil)
	}
	return &Service{
		store:    store,
		analyzer: analyzer,
		cache:    NewCache(opts.TTL),
		maxBytes: opts.MaxBytes,
		logger:   logging.Component("statements"),
	}
}

// Upload saves an uploaded statement, analyzes it and caches the result.
func (s *Service) Upload(name string, r io.Reader) (*models.SpendingAnalysis, error) {
	parser, err := parsers.ForFile(name)
	if err != nil {
		return nil, err
	}

	data, err := s.readLimited(r)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if s.store != nil {
		file, err := s.store.Save(id, name, data)
		if err != nil {
			return nil, fmt.Errorf("store statement: %w", err)
		}
		s.logger.Info("saved statement", "id", id, "name", file.Name, "bytes", file.Size)
	}

	result, err := s.analyze(id, filepath.Base(strings.TrimSpace(name)), parser, data)
	if err != nil {
		if s.store != nil {
			_ = s.store.Delete(storedName(id, name))
		}
		return nil, err
	}
	return result, nil
}

// AnalyzeFile analyzes a statement on local disk without storing a copy
func (s *Service) AnalyzeFile(path string) (*models.SpendingAnalysis, error) {
	parser, err := parsers.ForFile(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	return s.analyze(uuid.NewString(), filepath.Base(path), parser, data)
}

func (s *Service) analyze(id, source string, parser parsers.Parser, data []byte) (*models.SpendingAnalysis, error) {
	transactions, err := parser.Parse(bytes.NewReader(data), source)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}
	if len(transactions) == 0 {
		return nil, ErrNoTransactions
	}

	result := s.analyzer.Analyze(source, transactions)
	result.ID = id
	result.CreatedAt = time.Now()
	s.cache.Put(result)

	s.logger.Info("analyzed statement",
		"id", id,
		"source", source,
		"transactions", result.TransactionCount(),
		"expenses", result.Expenses)
	return result, nil
}

// Get returns a cached analysis
func (s *Service) Get(id string) (*models.SpendingAnalysis, bool) {
	return s.cache.Get(id)
}

// Clear forgets an analysis and deletes its stored statement
func (s *Service) Clear(id string) bool {
	a, ok := s.cache.Get(id)
	if !ok {
		return false
	}
	s.cache.Delete(id)
	s.deleteStored(a)
	return true
}

func (s *Service) deleteStored(a *models.SpendingAnalysis) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(storedName(a.ID, a.SourceName)); err != nil {
		s.logger.Warn("could not delete statement", "id", a.ID, "err", err)
	}
}

// Statements lists the statements held in storage
func (s *Service) Statements() ([]models.StatementFile, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List()
}

// RunJanitor purges expired analyses every interval until ctx is done
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

// purgeExpired drops expired analyses along with their stored statements
func (s *Service) purgeExpired() int {
	removed := s.cache.Purge()
	for _, a := range removed {
		s.deleteStored(a)
	}
	if len(removed) > 0 {
		s.logger.Debug("expired analyses", "count", len(removed))
	}
	return len(removed)
}

func (s *Service) readLimited(r io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func storedName(id, name string) string {
	return id + "_" + filepath.Base(strings.TrimSpace(name))
}
