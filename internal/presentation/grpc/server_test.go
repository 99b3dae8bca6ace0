package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/auth"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/testutil"
)

func startBufServer(t *testing.T, jwtService *auth.JWTService) *grpclib.ClientConn {
	t.Helper()

	srv, err := NewServer(buildTestHandler(), ServerConfig{}, testLogger(), jwtService)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func withToken(t *testing.T, jwtService *auth.JWTService, roles ...string) context.Context {
	t.Helper()
	token, err := jwtService.GenerateToken("tester", roles)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestServer_JSONRoundTrip(t *testing.T) {
	conn := startBufServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := testutil.LowRiskProfile()
	var resp ScoreProfileResponse
	err := conn.Invoke(ctx, MethodScoreProfile, &ScoreProfileRequest{Profile: &p}, &resp)
	require.NoError(t, err)

	require.NotNil(t, resp.Assessment)
	assert.InDelta(t, 8.4, resp.Assessment.Result.FinalRiskScore, 1e-9)
	assert.Equal(t, "Low", resp.Assessment.Result.RiskBand.String())
}

func TestServer_Auth(t *testing.T) {
	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "risk-engine"})
	require.NoError(t, err)
	conn := startBufServer(t, jwtService)

	p := testutil.LowRiskProfile()
	req := &ScoreProfileRequest{Profile: &p}

	t.Run("missing token is Unauthenticated", func(t *testing.T) {
		err := conn.Invoke(context.Background(), MethodScoreProfile, req, &ScoreProfileResponse{})
		requireGRPCCode(t, err, codes.Unauthenticated)
	})

	t.Run("service role may score", func(t *testing.T) {
		ctx := withToken(t, jwtService, auth.RoleService)
		err := conn.Invoke(ctx, MethodScoreProfile, req, &ScoreProfileResponse{})
		require.NoError(t, err)
	})

	t.Run("service role may not read assessments", func(t *testing.T) {
		ctx := withToken(t, jwtService, auth.RoleService)
		err := conn.Invoke(ctx, MethodListAssessments, &ListAssessmentsRequest{SubjectID: "x"}, &ListAssessmentsResponse{})
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("analyst may read assessments", func(t *testing.T) {
		ctx := withToken(t, jwtService, auth.RoleAnalyst)
		var resp ListAssessmentsResponse
		err := conn.Invoke(ctx, MethodListAssessments, &ListAssessmentsRequest{SubjectID: "x"}, &resp)
		require.NoError(t, err)
		assert.Empty(t, resp.Assessments)
	})

	t.Run("health check skips auth", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
			&healthpb.HealthCheckRequest{Service: HealthServiceName},
			grpclib.CallContentSubtype("proto"))
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	})
}
