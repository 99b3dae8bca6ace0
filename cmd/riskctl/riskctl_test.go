package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/auth"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/testutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeProfile(t *testing.T, dir, name string, p model.Profile) string {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestProfileCommand(t *testing.T) {
	dir := t.TempDir()
	low := writeProfile(t, dir, "low.json", testutil.LowRiskProfile())

	t.Run("prints the result without an ML score by default", func(t *testing.T) {
		t.Setenv("ML_PROVIDER", "")
		out, err := runCLI(t, "profile", "--input", low)
		require.NoError(t, err)

		var result model.AggregateResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.InDelta(t, 91.6, result.RuleBasedScore, 1e-9)
		assert.InDelta(t, 8.4, result.FinalRiskScore, 1e-9)
		assert.Equal(t, "Low", result.RiskBand.String())
		assert.Nil(t, result.MLScore)
		assert.Contains(t, out, "\n    \"rule_scores\"")
	})

	t.Run("blends the constant ML score", func(t *testing.T) {
		out, err := runCLI(t, "--ml-provider", "constant", "profile", "--input", low)
		require.NoError(t, err)

		var result model.AggregateResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		require.NotNil(t, result.MLScore)
		assert.InDelta(t, 25.04, result.FinalRiskScore, 1e-9)
	})

	t.Run("several inputs print an array in order", func(t *testing.T) {
		high := writeProfile(t, dir, "high.json", testutil.HighRiskProfile())
		out, err := runCLI(t, "--ml-provider", "none", "profile", "--input", high, "--input", low)
		require.NoError(t, err)

		var results []model.AggregateResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "High", results[0].RiskBand.String())
		assert.Equal(t, "Low", results[1].RiskBand.String())
	})

	t.Run("saves to output", func(t *testing.T) {
		target := filepath.Join(dir, "result.json")
		out, err := runCLI(t, "--ml-provider", "none", "profile", "--input", low, "--output", target)
		require.NoError(t, err)
		assert.Equal(t, "Risk scoring saved to "+target+"\n", out)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"risk_band": "Low"`)
	})

	t.Run("missing input", func(t *testing.T) {
		missing := filepath.Join(dir, "nope.json")
		_, err := runCLI(t, "profile", "--input", missing)
		require.Error(t, err)
		assert.Equal(t, "input file not found: "+missing, err.Error())
	})
}

func TestEventsCommand(t *testing.T) {
	dir := t.TempDir()
	logs := "timestamp,user,event_type,source_ip,status\n" +
		"2024-05-01T09:00:00Z,alice,login,10.0.0.1,success\n" +
		"2024-05-01T09:05:00Z,bob,privilege_escalation,10.0.0.2,failed\n" +
		"2024-05-01T09:12:00Z,dave,login,10.0.0.4,failed\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample_logs.csv"), []byte(logs), 0o600))

	t.Run("writes the html report", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "risk_report.html")
		out, err := runCLI(t, "events", "--input", dir, "--output", target)
		require.NoError(t, err)

		assert.Contains(t, out, "Loaded 3 log entries.\n")
		assert.Contains(t, out, "Detected 2 anomalies.\n")
		assert.Contains(t, out, "Risk report written to: "+target)

		html, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(html), "<td>bob</td>")
		assert.Contains(t, string(html), "<td>Critical</td>")
	})

	t.Run("json to stdout", func(t *testing.T) {
		out, err := runCLI(t, "events", "--input", dir, "--format", "json")
		require.NoError(t, err)

		body := out[strings.Index(out, "["):]
		var scored []model.ScoredEvent
		require.NoError(t, json.Unmarshal([]byte(body), &scored))
		require.Len(t, scored, 2)
		assert.Equal(t, 10, scored[0].Score)
		assert.Equal(t, 6, scored[1].Score)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runCLI(t, "events", "--input", dir, "--format", "pdf")
		require.Error(t, err)
	})

	t.Run("missing directory file", func(t *testing.T) {
		empty := t.TempDir()
		_, err := runCLI(t, "events", "--input", empty)
		require.Error(t, err)
		assert.Equal(t, "input file not found: "+filepath.Join(empty, "sample_logs.csv"), err.Error())
	})
}

func TestDatasetCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("status_code\n200\n500\n200\n404\n200\n200\n200\n200\n"), 0o600))

	t.Run("text report", func(t *testing.T) {
		out, err := runCLI(t, "dataset", "--input", path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "ENTERPRISE RISK INTELLIGENCE — DEMO REPORT\n"))
		assert.Contains(t, out, "Rows analysed: 8\n")
		assert.Contains(t, out, "- error_rate: 0.25\n")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "dataset", "--input", path, "--format", "json")
		require.NoError(t, err)

		var analysis model.DatasetAnalysis
		require.NoError(t, json.Unmarshal([]byte(out), &analysis))
		assert.InDelta(t, 0.25, analysis.KRIs.ErrorRate, 1e-12)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := runCLI(t, "dataset", "--input", path+".missing")
		require.Error(t, err)
		assert.Equal(t, "input file not found: "+path+".missing", err.Error())
	})
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := runCLI(t, "token", "--subject", "svc-ingest", "--role", auth.RoleService)
	require.NoError(t, err)

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "cli-secret", Issuer: "risk-engine"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "svc-ingest", claims.Subject)
	assert.True(t, claims.HasRole(auth.RoleService))

	t.Run("requires a secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := runCLI(t, "token", "--subject", "x")
		require.Error(t, err)
	})
}

func TestCertsCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")

	out, err := runCLI(t, "certs", "--out", dir, "--host", "riskd.local")
	require.NoError(t, err)

	assert.Contains(t, out, "TLS_CERT_FILE="+filepath.Join(dir, "server.pem"))
	assert.Contains(t, out, "TLS_CLIENT_CA_FILE="+filepath.Join(dir, "ca.pem"))
	for _, name := range []string{"ca.pem", "server.pem", "server-key.pem", "client.pem", "client-key.pem"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}
