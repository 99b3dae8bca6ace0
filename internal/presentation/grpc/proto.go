package grpc

// proto.go defines the gRPC server interface for risk.v1.RiskService.
// Messages travel as JSON through the registered json codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "risk.v1.RiskService"

// Full method names, as seen by interceptors.
const (
	MethodScoreProfile    = "/" + ServiceName + "/ScoreProfile"
	MethodScoreProfiles   = "/" + ServiceName + "/ScoreProfiles"
	MethodScoreEvents     = "/" + ServiceName + "/ScoreEvents"
	MethodAnalyzeDataset  = "/" + ServiceName + "/AnalyzeDataset"
	MethodGetAssessment   = "/" + ServiceName + "/GetAssessment"
	MethodListAssessments = "/" + ServiceName + "/ListAssessments"
)

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	ScoreProfile(context.Context, *ScoreProfileRequest) (*ScoreProfileResponse, error)
	ScoreProfiles(context.Context, *ScoreProfilesRequest) (*ScoreProfilesResponse, error)
	ScoreEvents(context.Context, *ScoreEventsRequest) (*ScoreEventsResponse, error)
	AnalyzeDataset(context.Context, *AnalyzeDatasetRequest) (*AnalyzeDatasetResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error)
	mustEmbedUnimplementedRiskServiceServer()
}

// UnimplementedRiskServiceServer provides forward-compatible default implementations.
type UnimplementedRiskServiceServer struct{}

func (UnimplementedRiskServiceServer) ScoreProfile(context.Context, *ScoreProfileRequest) (*ScoreProfileResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreProfile not implemented")
}
func (UnimplementedRiskServiceServer) ScoreProfiles(context.Context, *ScoreProfilesRequest) (*ScoreProfilesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreProfiles not implemented")
}
func (UnimplementedRiskServiceServer) ScoreEvents(context.Context, *ScoreEventsRequest) (*ScoreEventsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreEvents not implemented")
}
func (UnimplementedRiskServiceServer) AnalyzeDataset(context.Context, *AnalyzeDatasetRequest) (*AnalyzeDatasetResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AnalyzeDataset not implemented")
}
func (UnimplementedRiskServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedRiskServiceServer) ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAssessments not implemented")
}
func (UnimplementedRiskServiceServer) mustEmbedUnimplementedRiskServiceServer() {}

// RegisterRiskServiceServer registers the RiskServiceServer with the gRPC server.
func RegisterRiskServiceServer(s grpclib.ServiceRegistrar, srv RiskServiceServer) {
	s.RegisterService(&_RiskService_serviceDesc, srv)
}

var _RiskService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ScoreProfile", Handler: _RiskService_ScoreProfile_Handler},
		{MethodName: "ScoreProfiles", Handler: _RiskService_ScoreProfiles_Handler},
		{MethodName: "ScoreEvents", Handler: _RiskService_ScoreEvents_Handler},
		{MethodName: "AnalyzeDataset", Handler: _RiskService_AnalyzeDataset_Handler},
		{MethodName: "GetAssessment", Handler: _RiskService_GetAssessment_Handler},
		{MethodName: "ListAssessments", Handler: _RiskService_ListAssessments_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

// unary decodes the request and runs it through the interceptor chain.
func unary[Req any](
	method string,
	call func(RiskServiceServer, context.Context, *Req) (interface{}, error),
) grpclib.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RiskServiceServer), ctx, req)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, r interface{}) (interface{}, error) {
			return call(srv.(RiskServiceServer), ctx, r.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var (
	_RiskService_ScoreProfile_Handler = unary(MethodScoreProfile,
		func(s RiskServiceServer, ctx context.Context, r *ScoreProfileRequest) (interface{}, error) {
			return s.ScoreProfile(ctx, r)
		})
	_RiskService_ScoreProfiles_Handler = unary(MethodScoreProfiles,
		func(s RiskServiceServer, ctx context.Context, r *ScoreProfilesRequest) (interface{}, error) {
			return s.ScoreProfiles(ctx, r)
		})
	_RiskService_ScoreEvents_Handler = unary(MethodScoreEvents,
		func(s RiskServiceServer, ctx context.Context, r *ScoreEventsRequest) (interface{}, error) {
			return s.ScoreEvents(ctx, r)
		})
	_RiskService_AnalyzeDataset_Handler = unary(MethodAnalyzeDataset,
		func(s RiskServiceServer, ctx context.Context, r *AnalyzeDatasetRequest) (interface{}, error) {
			return s.AnalyzeDataset(ctx, r)
		})
	_RiskService_GetAssessment_Handler = unary(MethodGetAssessment,
		func(s RiskServiceServer, ctx context.Context, r *GetAssessmentRequest) (interface{}, error) {
			return s.GetAssessment(ctx, r)
		})
	_RiskService_ListAssessments_Handler = unary(MethodListAssessments,
		func(s RiskServiceServer, ctx context.Context, r *ListAssessmentsRequest) (interface{}, error) {
			return s.ListAssessments(ctx, r)
		})
)
