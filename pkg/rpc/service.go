// Package rpc exposes the prediction pipeline over gRPC.
//
// The service is storecast.v1.Predictor with a single unary Predict method.
// Requests and responses are google.protobuf.Struct messages whose fields
// match the JSON API: the request carries the form inputs, the response the
// prediction.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HatiCode/storecast/pkg/api"
	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/pipeline"
	"github.com/HatiCode/storecast/pkg/web"
)

const (
	ServiceName   = "storecast.v1.Predictor"
	PredictMethod = "/" + ServiceName + "/Predict"
)

// PredictorServer is the server API for the Predictor service.
type PredictorServer interface {
	Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Predictor service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Predict",
			Handler:    predictHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storecast/v1/predictor.proto",
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictorServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PredictMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictorServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Register adds the Predictor service to s.
func Register(s grpc.ServiceRegistrar, srv PredictorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Predictor runs the stacked prediction for one set of inputs.
type Predictor interface {
	Predict(ctx context.Context, in features.RawInputs) (pipeline.Result, error)
}

// Server implements PredictorServer on top of the pipeline.
type Server struct {
	predictor Predictor
	logger    *slog.Logger
}

// NewServer creates a gRPC Predictor server.
func NewServer(predictor Predictor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{predictor: predictor, logger: logger}
}

// Predict decodes the inputs, runs the pipeline and encodes the result.
// Input problems map to InvalidArgument, model failures to Internal.
func (s *Server) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := decodeInputs(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.predictor.Predict(ctx, in)
	switch {
	case errors.Is(err, features.ErrInputRange):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		s.logger.Error("grpc prediction failed", "error", err)
		return nil, status.Error(codes.Internal, "prediction failed")
	}

	out, err := encode(api.NewPredictionResponse(res, web.FormatCurrency(res.SalesPred)))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// decodeInputs starts from the form defaults and overlays the request fields.
func decodeInputs(req *structpb.Struct) (features.RawInputs, error) {
	in := features.DefaultInputs()
	if req == nil {
		return in, nil
	}

	data, err := json.Marshal(req.AsMap())
	if err != nil {
		return in, fmt.Errorf("encode request: %w", err)
	}
	if err := decodeStrict(data, &in); err != nil {
		return in, fmt.Errorf("invalid request: %w", err)
	}
	return in, nil
}

func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// UnaryLoggingInterceptor logs method, status code and duration of every call.
func UnaryLoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
