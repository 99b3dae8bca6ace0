// Package loader reads profiles, log records and tabular datasets from disk
// or request bodies.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// DefaultLogFile is read when a log path names a directory.
const DefaultLogFile = "sample_logs.csv"

var (
	// ErrInputNotFound is returned when an input path does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrEmptyDataset is returned for input without a header row.
	ErrEmptyDataset = errors.New("no columns to parse from input")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// LoadProfile reads a profile JSON document from path.
func LoadProfile(path string) (model.Profile, error) {
	f, err := openInput(path)
	if err != nil {
		return model.Profile{}, err
	}
	defer f.Close()

	p, err := DecodeProfile(f)
	if err != nil {
		return model.Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DecodeProfile decodes one profile JSON document. Unknown keys are ignored.
func DecodeProfile(r io.Reader) (model.Profile, error) {
	var p model.Profile
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %v", model.ErrInvalidProfile, err)
	}
	return p, nil
}

// LoadLogRecords reads a log CSV. A directory path resolves to its
// sample_logs.csv.
func LoadLogRecords(path string) ([]model.LogRecord, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultLogFile)
	}

	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadLogRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadLogRecords parses a log CSV with a header row. Columns are matched by
// name; absent columns and short rows yield empty strings.
func ReadLogRecords(r io.Reader) ([]model.LogRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []model.LogRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]model.LogRecord, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read log row: %w", err)
		}
		records = append(records, model.LogRecord{
			Timestamp: field(row, "timestamp"),
			User:      field(row, "user"),
			EventType: field(row, "event_type"),
			SourceIP:  field(row, "source_ip"),
			Status:    field(row, "status"),
		})
	}
	return records, nil
}

// LoadDataset reads a CSV dataset from path.
func LoadDataset(path string) (model.Dataset, error) {
	f, err := openInput(path)
	if err != nil {
		return model.Dataset{}, err
	}
	defer f.Close()

	d, err := ReadDataset(f)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ReadDataset parses a CSV dataset with a header row. Input that is not
// valid UTF-8 is decoded as Latin-1. Duplicate column names get ".1", ".2"
// suffixes, short rows are padded with missing cells, and rows longer than
// the header are rejected.
func ReadDataset(r io.Reader) (model.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if !utf8.Valid(raw) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return model.Dataset{}, fmt.Errorf("decode latin-1: %w", err)
		}
		raw = decoded
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return model.Dataset{}, ErrEmptyDataset
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read header: %w", err)
	}

	d := model.Dataset{Columns: dedupeColumns(header)}
	width := len(d.Columns)

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Dataset{}, fmt.Errorf("read row: %w", err)
		}
		if len(row) > width {
			return model.Dataset{}, fmt.Errorf("row %d: expected %d fields, saw %d", line, width, len(row))
		}

		cells := make([]model.Cell, width)
		for i := range cells {
			if i < len(row) {
				cells[i] = model.NewCell(row[i])
			} else {
				cells[i] = model.Cell{Missing: true}
			}
		}
		d.Rows = append(d.Rows, cells)
	}

	return d, nil
}

func dedupeColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]struct{}, len(header))
	for _, name := range header {
		taken[name] = struct{}{}
	}

	for i, name := range header {
		n, dup := seen[name]
		seen[name] = n + 1
		if !dup {
			out[i] = name
			continue
		}
		candidate := name + "." + strconv.Itoa(n)
		for {
			if _, clash := taken[candidate]; !clash {
				break
			}
			n++
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[name] = n + 1
		taken[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}
