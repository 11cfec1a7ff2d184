package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wonny/momentum/pkg/logger"
)

// DirSource reads universes from a directory of <NAME>.csv files, one
// file per universe. Each file carries a Symbol column; this is the
// exchange format the universe spreadsheets are exported to.
type DirSource struct {
	dir    string
	logger *logger.Logger
}

// NewDirSource creates a new CSV directory source.
func NewDirSource(dir string, log *logger.Logger) *DirSource {
	return &DirSource{
		dir:    dir,
		logger: log,
	}
}

// Resolve reads the named universe file. Symbols keep file order; an
// exchange suffix like ".NS" is stripped so the universe holds raw
// symbols regardless of how the sheet was exported.
func (s *DirSource) Resolve(ctx context.Context, name string) ([]string, error) {
	path := filepath.Join(s.dir, name+".csv")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse universe file %s: %w", name, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingSymbolColumn)
	}

	symbolCol := -1
	for i, header := range records[0] {
		if strings.EqualFold(strings.TrimSpace(header), "Symbol") {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingSymbolColumn)
	}

	tickers := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		if symbolCol >= len(row) {
			continue
		}

		symbol := strings.TrimSpace(row[symbolCol])
		symbol = strings.TrimSuffix(symbol, ".NS")
		if symbol == "" {
			continue
		}

		tickers = append(tickers, symbol)
	}

	s.logger.WithFields(map[string]interface{}{
		"universe": name,
		"tickers":  len(tickers),
	}).Debug("Resolved universe")

	return tickers, nil
}

// List returns the universe names found in the directory.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read universe dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".csv"))
	}

	sort.Strings(names)
	return names, nil
}
