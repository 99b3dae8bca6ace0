package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
)

// fakeRow copies its values into Scan destinations in column order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *string:
			*p = r.values[i].(string)
		case *[]byte:
			*p = r.values[i].([]byte)
		case *float64:
			*p = r.values[i].(float64)
		case **float64:
			*p = r.values[i].(*float64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		case *int:
			*p = r.values[i].(int)
		default:
			return errors.New("unexpected scan target")
		}
	}
	return nil
}

func assessmentRow(band string, ruleScores, notes []byte) fakeRow {
	ml := 0.5
	at := time.Date(2025, 5, 1, 9, 30, 0, 0, time.FixedZone("BST", 3600))
	return fakeRow{values: []any{
		uuid.MustParse("7d4f1a52-3a5e-4c43-9d0e-2f1b0c9a8e11"),
		"applicant-002",
		ruleScores,
		15.0,
		&ml,
		91.5,
		band,
		notes,
		at,
		1,
		at,
	}}
}

func TestScanAssessment(t *testing.T) {
	row := assessmentRow("High",
		[]byte(`{"financial":35,"compliance":0}`),
		[]byte(`["[compliance] Sanctions match flagged."]`))

	a, err := scanAssessment(row)

	require.NoError(t, err)
	assert.Equal(t, "applicant-002", a.SubjectID())
	assert.Equal(t, map[string]int{"financial": 35, "compliance": 0}, a.Result().RuleScores)
	assert.Equal(t, []string{"[compliance] Sanctions match flagged."}, a.Result().Notes)
	assert.True(t, a.Result().RiskBand.Equal(valueobject.RiskBandHigh))
	require.NotNil(t, a.Result().MLScore)
	assert.InDelta(t, 0.5, *a.Result().MLScore, 1e-12)
	assert.Equal(t, time.UTC, a.AssessedAt().Location())
	assert.Equal(t, 1, a.Version())
}

func TestScanAssessment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		row     fakeRow
		wantErr string
	}{
		{name: "bad band", row: assessmentRow("Severe", []byte(`{}`), []byte(`[]`)), wantErr: "risk band"},
		{name: "bad rule scores", row: assessmentRow("Low", []byte(`{`), []byte(`[]`)), wantErr: "rule scores"},
		{name: "bad notes", row: assessmentRow("Low", []byte(`{}`), []byte(`"x"`)), wantErr: "notes"},
		{name: "scan failure", row: fakeRow{err: errors.New("conn reset")}, wantErr: "failed to scan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanAssessment(tt.row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScanAssessment_NoRowsPassesThrough(t *testing.T) {
	_, err := scanAssessment(fakeRow{err: pgx.ErrNoRows})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
