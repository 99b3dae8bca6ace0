//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	riskgrpc "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/presentation/grpc"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/auth"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/testutil"
)

var (
	httpURL  string
	grpcAddr string
	token    string
)

func TestMain(m *testing.M) {
	httpURL = envOr("RISKD_HTTP_URL", "http://localhost:9090")
	grpcAddr = envOr("RISKD_GRPC_ADDR", "localhost:8090")

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		svc, err := auth.NewJWTService(auth.JWTConfig{Secret: secret, Issuer: "risk-engine"})
		if err == nil {
			token, _ = svc.GenerateToken("e2e", []string{auth.RoleAdmin})
		}
	}

	// Wait for riskd to be ready
	for i := 0; i < 30; i++ {
		resp, err := http.Get(httpURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}

func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(httpURL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestMetricsExposed(t *testing.T) {
	resp, err := http.Get(httpURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDatasetUpload(t *testing.T) {
	csv := "status_code\n200\n500\n200\n404\n200\n200\n200\n200\n"

	resp := postCSV(t, "/v1/datasets/analyze", csv)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var analysis model.DatasetAnalysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analysis))
	assert.InDelta(t, 0.25, analysis.KRIs.ErrorRate, 1e-12)

	text := postCSV(t, "/v1/datasets/analyze?format=text", csv)
	defer text.Body.Close()
	body, err := io.ReadAll(text.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "ENTERPRISE RISK INTELLIGENCE"))
}

func TestProfileFlow(t *testing.T) {
	conn, err := grpclib.NewClient(grpcAddr,
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(riskgrpc.CodecName)),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}

	// Step 1: Score a profile
	p := testutil.HighRiskProfile()
	var scored riskgrpc.ScoreProfileResponse
	require.NoError(t, conn.Invoke(ctx, riskgrpc.MethodScoreProfile, &riskgrpc.ScoreProfileRequest{Profile: &p}, &scored))
	assert.Equal(t, "High", scored.Assessment.Result.RiskBand.String())

	// Step 2: Read it back
	var got riskgrpc.GetAssessmentResponse
	require.NoError(t, conn.Invoke(ctx, riskgrpc.MethodGetAssessment, &riskgrpc.GetAssessmentRequest{ID: scored.Assessment.ID}, &got))
	assert.Equal(t, scored.Assessment.ID, got.Assessment.ID)
	assert.Equal(t, scored.Assessment.Result.FinalRiskScore, got.Assessment.Result.FinalRiskScore)

	// Step 3: It shows up in the subject's history
	var list riskgrpc.ListAssessmentsResponse
	require.NoError(t, conn.Invoke(ctx, riskgrpc.MethodListAssessments, &riskgrpc.ListAssessmentsRequest{SubjectID: p.SubjectID}, &list))
	assert.NotEmpty(t, list.Assessments)
}

func postCSV(t *testing.T, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, httpURL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
