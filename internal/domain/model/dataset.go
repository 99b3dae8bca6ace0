package model

import "strings"

// nullTokens are the raw values treated as missing.
var nullTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNullToken reports whether raw denotes a missing value.
func IsNullToken(raw string) bool {
	_, ok := nullTokens[strings.TrimSpace(raw)]
	return ok
}

// Cell is a single raw dataset value.
type Cell struct {
	Raw     string
	Missing bool
}

// NewCell wraps a raw value, marking null tokens as missing.
func NewCell(raw string) Cell {
	return Cell{Raw: raw, Missing: IsNullToken(raw)}
}

// Dataset is a heterogeneous table with named columns. Every row has
// len(Columns) cells.
type Dataset struct {
	Columns []string
	Rows    [][]Cell
}

// NumRows returns the number of data rows.
func (d Dataset) NumRows() int {
	return len(d.Rows)
}

// ColumnIndex returns the index of the named column, or -1.
func (d Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of column i across all rows.
func (d Dataset) Column(i int) []Cell {
	out := make([]Cell, len(d.Rows))
	for r, row := range d.Rows {
		if i < len(row) {
			out[r] = row[i]
		} else {
			out[r] = Cell{Missing: true}
		}
	}
	return out
}

// KRISet holds the key risk indicators derived from a dataset.
type KRISet struct {
	ErrorRate               float64 `json:"error_rate"`
	VolumeSpikeRatio        float64 `json:"volume_spike_ratio"`
	Missingness             float64 `json:"missingness"`
	NumericOutlierIntensity float64 `json:"numeric_outlier_intensity"`
}

// DatasetMeta describes the analysed table.
type DatasetMeta struct {
	Columns []string `json:"columns"`
	Shape   [2]int   `json:"shape"`
}

// DatasetAnalysis is the outcome of the KRI pipeline over one dataset.
type DatasetAnalysis struct {
	Narrative   string      `json:"narrative"`
	Meta        DatasetMeta `json:"meta"`
	KRIs        KRISet      `json:"kris"`
	AnomalyRate float64     `json:"anomaly_rate"`
	RiskScore   float64     `json:"risk_score"`
}
