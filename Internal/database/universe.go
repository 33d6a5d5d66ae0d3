package datafeed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fazecat/niftyscreener/Internal/types"
)

const DefaultUniverseFile = "nifty500_instrument_keys.csv"

// CSVUniverse reads the instrument list from a CSV file with a header row
// naming the tradingsymbol and instrument_key columns. The file is re-read on
// every load so edits apply to the next scan.
type CSVUniverse struct {
	Path string
}

func NewCSVUniverse(path string) *CSVUniverse {
	if path == "" {
		path = DefaultUniverseFile
	}
	return &CSVUniverse{Path: path}
}

func (u *CSVUniverse) LoadInstruments(ctx context.Context) ([]types.Instrument, error) {
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe file: %w", err)
	}
	defer f.Close()
	return ParseInstruments(f)
}

// ParseInstruments keeps file order, which is the scan order. Rows with an
// empty symbol or key are skipped.
func ParseInstruments(r io.Reader) ([]types.Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read universe header: %w", err)
	}

	symbolCol, keyCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "tradingsymbol":
			symbolCol = i
		case "instrument_key":
			keyCol = i
		}
	}
	if symbolCol < 0 || keyCol < 0 {
		return nil, fmt.Errorf("universe header must name tradingsymbol and instrument_key, got %v", header)
	}

	var instruments []types.Instrument
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read universe row: %w", err)
		}
		if symbolCol >= len(record) || keyCol >= len(record) {
			continue
		}
		symbol := strings.TrimSpace(record[symbolCol])
		key := strings.TrimSpace(record[keyCol])
		if symbol == "" || key == "" {
			continue
		}
		instruments = append(instruments, types.Instrument{Symbol: symbol, InstrumentKey: key})
	}
	return instruments, nil
}
