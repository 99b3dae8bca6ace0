package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/usecase"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/loader"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/report"
)

// MaxBatchProfiles caps ScoreProfiles requests.
const MaxBatchProfiles = 500

// Compile-time assertion that RiskServiceHandler implements RiskServiceServer.
var _ RiskServiceServer = (*RiskServiceHandler)(nil)

// RiskServiceHandler implements the gRPC RiskServiceServer interface.
type RiskServiceHandler struct {
	UnimplementedRiskServiceServer
	scoreProfile    *usecase.ScoreProfile
	scoreEvents     *usecase.ScoreEvents
	analyzeDataset  *usecase.AnalyzeDataset
	getAssessment   *usecase.GetAssessment
	listAssessments *usecase.ListAssessments
	renderer        *report.Renderer
	logger          *slog.Logger
}

// NewRiskServiceHandler creates a new gRPC handler.
func NewRiskServiceHandler(
	scoreProfile *usecase.ScoreProfile,
	scoreEvents *usecase.ScoreEvents,
	analyzeDataset *usecase.AnalyzeDataset,
	getAssessment *usecase.GetAssessment,
	listAssessments *usecase.ListAssessments,
	renderer *report.Renderer,
	logger *slog.Logger,
) *RiskServiceHandler {
	if renderer == nil {
		renderer = report.NewRenderer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskServiceHandler{
		scoreProfile:    scoreProfile,
		scoreEvents:     scoreEvents,
		analyzeDataset:  analyzeDataset,
		getAssessment:   getAssessment,
		listAssessments: listAssessments,
		renderer:        renderer,
		logger:          logger,
	}
}

// Proto-aligned request/response message types.

// AssessmentMsg represents the proto ProfileAssessment message.
type AssessmentMsg struct {
	ID         string                `json:"id"`
	SubjectID  string                `json:"subject_id,omitempty"`
	AssessedAt string                `json:"assessed_at"`
	Result     model.AggregateResult `json:"result"`
	Version    int32                 `json:"version"`
}

// ScoreProfileRequest represents the proto ScoreProfileRequest message.
type ScoreProfileRequest struct {
	Profile *model.Profile `json:"profile"`
}

// ScoreProfileResponse represents the proto ScoreProfileResponse message.
type ScoreProfileResponse struct {
	Assessment *AssessmentMsg `json:"assessment"`
}

// ScoreProfilesRequest represents the proto ScoreProfilesRequest message.
type ScoreProfilesRequest struct {
	Profiles []model.Profile `json:"profiles"`
}

// ScoreProfilesResponse represents the proto ScoreProfilesResponse message.
type ScoreProfilesResponse struct {
	Assessments []*AssessmentMsg `json:"assessments"`
}

// ScoreEventsRequest represents the proto ScoreEventsRequest message.
type ScoreEventsRequest struct {
	Records []model.LogRecord `json:"records"`
}

// ScoreEventsResponse represents the proto ScoreEventsResponse message.
type ScoreEventsResponse struct {
	Events        []model.ScoredEvent `json:"events"`
	Examined      int32               `json:"examined"`
	CriticalCount int32               `json:"critical_count"`
}

// AnalyzeDatasetRequest represents the proto AnalyzeDatasetRequest message.
// CSV holds the raw file contents; Format "text" adds the rendered report.
type AnalyzeDatasetRequest struct {
	CSV    string `json:"csv"`
	Format string `json:"format,omitempty"`
}

// AnalyzeDatasetResponse represents the proto AnalyzeDatasetResponse message.
type AnalyzeDatasetResponse struct {
	Analysis model.DatasetAnalysis `json:"analysis"`
	Report   string                `json:"report,omitempty"`
}

// GetAssessmentRequest represents the proto GetAssessmentRequest message.
type GetAssessmentRequest struct {
	ID string `json:"id"`
}

// GetAssessmentResponse represents the proto GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *AssessmentMsg `json:"assessment"`
}

// ListAssessmentsRequest represents the proto ListAssessmentsRequest message.
type ListAssessmentsRequest struct {
	SubjectID string `json:"subject_id"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

// ListAssessmentsResponse represents the proto ListAssessmentsResponse message.
type ListAssessmentsResponse struct {
	Assessments []*AssessmentMsg `json:"assessments"`
}

// ScoreProfile handles a single profile scoring request.
func (h *RiskServiceHandler) ScoreProfile(ctx context.Context, req *ScoreProfileRequest) (*ScoreProfileResponse, error) {
	if req == nil || req.Profile == nil {
		return nil, status.Error(codes.InvalidArgument, "profile is required")
	}

	result, err := h.scoreProfile.Execute(ctx, dto.ScoreProfileRequest{Profile: *req.Profile})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to score profile", err)
	}

	return &ScoreProfileResponse{Assessment: toAssessmentMsg(result)}, nil
}

// ScoreProfiles handles a batch scoring request. Results keep request order.
func (h *RiskServiceHandler) ScoreProfiles(ctx context.Context, req *ScoreProfilesRequest) (*ScoreProfilesResponse, error) {
	if req == nil || len(req.Profiles) == 0 {
		return nil, status.Error(codes.InvalidArgument, "at least one profile is required")
	}
	if len(req.Profiles) > MaxBatchProfiles {
		return nil, status.Errorf(codes.InvalidArgument, "at most %d profiles per batch, got %d", MaxBatchProfiles, len(req.Profiles))
	}

	reqs := make([]dto.ScoreProfileRequest, len(req.Profiles))
	for i, p := range req.Profiles {
		reqs[i] = dto.ScoreProfileRequest{Profile: p}
	}

	results, err := h.scoreProfile.ExecuteBatch(ctx, reqs)
	if err != nil {
		return nil, h.toStatus(ctx, "failed to score profiles", err)
	}

	resp := &ScoreProfilesResponse{Assessments: make([]*AssessmentMsg, len(results))}
	for i, r := range results {
		resp.Assessments[i] = toAssessmentMsg(r)
	}
	return resp, nil
}

// ScoreEvents detects and scores anomalous log records.
func (h *RiskServiceHandler) ScoreEvents(ctx context.Context, req *ScoreEventsRequest) (*ScoreEventsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.scoreEvents.Execute(ctx, dto.ScoreEventsRequest{Records: req.Records})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to score events", err)
	}

	return &ScoreEventsResponse{
		Events:        result.Events,
		Examined:      int32(result.Examined),
		CriticalCount: int32(result.CriticalCount),
	}, nil
}

// AnalyzeDataset parses the CSV payload and runs the KRI pipeline over it.
func (h *RiskServiceHandler) AnalyzeDataset(ctx context.Context, req *AnalyzeDatasetRequest) (*AnalyzeDatasetResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	format := strings.ToLower(req.Format)
	if format != "" && format != "json" && format != "text" {
		return nil, status.Errorf(codes.InvalidArgument, "unsupported format %q", req.Format)
	}

	dataset, err := loader.ReadDataset(strings.NewReader(req.CSV))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid csv: %v", err)
	}

	analysis, err := h.analyzeDataset.Execute(ctx, dto.AnalyzeDatasetRequest{Dataset: dataset})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to analyse dataset", err)
	}

	resp := &AnalyzeDatasetResponse{Analysis: analysis}
	if format == "text" {
		text, err := h.renderer.Text(analysis)
		if err != nil {
			return nil, h.toStatus(ctx, "failed to render report", err)
		}
		resp.Report = text
	}
	return resp, nil
}

// GetAssessment handles a get assessment request.
func (h *RiskServiceHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	assessmentID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getAssessment.Execute(ctx, dto.GetAssessmentRequest{AssessmentID: assessmentID})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to get assessment", err)
	}

	return &GetAssessmentResponse{Assessment: toAssessmentMsg(result)}, nil
}

// ListAssessments pages through a subject's assessments, newest first.
func (h *RiskServiceHandler) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	if req == nil || req.SubjectID == "" {
		return nil, status.Error(codes.InvalidArgument, "subject_id is required")
	}

	results, err := h.listAssessments.Execute(ctx, dto.ListAssessmentsRequest{
		SubjectID: req.SubjectID,
		Limit:     int(req.Limit),
		Offset:    int(req.Offset),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to list assessments", err)
	}

	resp := &ListAssessmentsResponse{Assessments: make([]*AssessmentMsg, len(results))}
	for i, r := range results {
		resp.Assessments[i] = toAssessmentMsg(r)
	}
	return resp, nil
}

// toStatus maps use case errors onto gRPC status codes. Unexpected errors
// are logged and reported as Internal without detail.
func (h *RiskServiceHandler) toStatus(ctx context.Context, msg string, err error) error {
	switch {
	case errors.Is(err, model.ErrAssessmentNotFound):
		return status.Error(codes.NotFound, model.ErrAssessmentNotFound.Error())
	case errors.Is(err, model.ErrInvalidProfile):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	h.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
	return status.Error(codes.Internal, "internal error")
}

func toAssessmentMsg(r dto.AssessmentResponse) *AssessmentMsg {
	return &AssessmentMsg{
		ID:         r.ID.String(),
		SubjectID:  r.SubjectID,
		AssessedAt: r.AssessedAt.UTC().Format(time.RFC3339Nano),
		Result:     r.Result,
		Version:    int32(r.Version),
	}
}
