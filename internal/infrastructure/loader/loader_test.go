package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile(filepath.Join("testdata", "profile.json"))
	require.NoError(t, err)

	assert.Equal(t, "applicant-001", p.SubjectID)
	assert.InDelta(t, 1100.0, p.Financial.BankBalance, 1e-9)
	assert.InDelta(t, 1000.0, p.Financial.MinimumRequired, 1e-9)
	assert.Equal(t, 1, p.Behaviour.MissedDeadlines)
	assert.Nil(t, p.Behaviour.ResponseConsistencyScore)
	assert.False(t, p.Documentation.AllRequiredDocumentsProvided)
}

func TestLoadProfile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join("testdata", "nope.json"))
		require.ErrorIs(t, err, ErrInputNotFound)
		assert.Equal(t, "input file not found: "+filepath.Join("testdata", "nope.json"), err.Error())
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := DecodeProfile(strings.NewReader(`{"financial":{"bank_balance":"lots"}}`))
		require.ErrorIs(t, err, model.ErrInvalidProfile)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeProfile(strings.NewReader(`bank_balance=1`))
		require.ErrorIs(t, err, model.ErrInvalidProfile)
	})
}

func TestLoadLogRecords(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		records, err := LoadLogRecords(filepath.Join("testdata", "sample_logs.csv"))
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, model.LogRecord{
			Timestamp: "2024-05-01T09:05:00Z",
			User:      "bob",
			EventType: "Privilege_Escalation",
			SourceIP:  "10.0.0.2",
			Status:    "FAILED",
		}, records[1])
	})

	t.Run("directory resolves to sample_logs.csv", func(t *testing.T) {
		records, err := LoadLogRecords("testdata")
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("directory without sample file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := LoadLogRecords(dir)
		require.ErrorIs(t, err, ErrInputNotFound)
		assert.Contains(t, err.Error(), DefaultLogFile)
	})
}

func TestReadLogRecords_LooseColumns(t *testing.T) {
	in := "\ufeffuser,status,timestamp,extra\nalice,failed,t1,x\nbob\n"

	records, err := ReadLogRecords(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.LogRecord{User: "alice", Status: "failed", Timestamp: "t1"}, records[0])
	assert.Equal(t, model.LogRecord{User: "bob"}, records[1])
}

func TestReadLogRecords_Empty(t *testing.T) {
	records, err := ReadLogRecords(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadDataset(t *testing.T) {
	in := "timestamp,status_code,message\n" +
		"2024-05-01T09:00:00Z,200,ok\n" +
		"2024-05-01T09:30:00Z,NA,\n" +
		"2024-05-01T10:00:00Z,500\n"

	d, err := ReadDataset(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"timestamp", "status_code", "message"}, d.Columns)
	require.Equal(t, 3, d.NumRows())
	assert.Equal(t, model.Cell{Raw: "200"}, d.Rows[0][1])
	assert.True(t, d.Rows[1][1].Missing)
	assert.True(t, d.Rows[1][2].Missing)
	assert.True(t, d.Rows[2][2].Missing, "short rows are padded with missing cells")
}

func TestReadDataset_Latin1Fallback(t *testing.T) {
	in := []byte("name,city\nJos\xe9,M\xfcnchen\n")

	d, err := ReadDataset(strings.NewReader(string(in)))
	require.NoError(t, err)
	require.Equal(t, 1, d.NumRows())
	assert.Equal(t, "José", d.Rows[0][0].Raw)
	assert.Equal(t, "München", d.Rows[0][1].Raw)
}

func TestReadDataset_BOMAndDuplicates(t *testing.T) {
	in := "\xef\xbb\xbfa,b,a,a.1,a\n1,2,3,4,5\n"

	d, err := ReadDataset(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a.2", "a.1", "a.3"}, d.Columns)
}

func TestReadDataset_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader("\n\n"))
		require.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("row wider than header", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader("a,b\n1,2,3\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2 fields, saw 3")
	})
}

func TestLoadDataset_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	_, err := LoadDataset(path)
	require.ErrorIs(t, err, ErrInputNotFound)
}

func TestLoadDataset_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("latency_ms\n10\n12\n"), 0o600))

	d, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, 2, d.NumRows())
}
