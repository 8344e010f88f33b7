package imageryv1

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"storefront-imagery/internal/imaging"
)

// Synthesizer is the rendering backend served by Server.
type Synthesizer interface {
	Synthesize(ctx context.Context, req imaging.Request) (*imaging.Artifact, error)
}

// Server implements SynthesizerServer on top of a local synthesizer.
type Server struct {
	UnimplementedSynthesizerServer
	synth  Synthesizer
	logger *zap.Logger
}

func NewServer(synth Synthesizer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{synth: synth, logger: logger}
}

func (s *Server) Synthesize(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	req, err := requestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	artifact, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	header := metadata.Pairs(
		HeaderFilename, artifact.Filename,
		HeaderContentType, artifact.ContentType,
		HeaderWidth, strconv.Itoa(artifact.Width),
		HeaderHeight, strconv.Itoa(artifact.Height),
		HeaderCategory, artifact.Category,
		HeaderTemplate, artifact.Template,
		HeaderColor, artifact.Color,
		HeaderSeed, strconv.FormatInt(artifact.Seed, 10),
		HeaderPostprocessed, strconv.FormatBool(artifact.Postprocessed),
	)
	if err := grpc.SetHeader(ctx, header); err != nil {
		s.logger.Warn("set response header failed", zap.Error(err))
	}
	return wrapperspb.Bytes(artifact.Data), nil
}

func (s *Server) ListCategories(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	infos := imaging.Describe()
	list := make([]interface{}, 0, len(infos))
	defaultName := ""
	for _, info := range infos {
		list = append(list, map[string]interface{}{
			"name":       info.Name,
			"background": info.Background,
			"colors":     stringsToAny(info.Colors),
			"patterns":   stringsToAny(info.Patterns),
			"styles":     stringsToAny(info.Styles),
		})
		if info.Default {
			defaultName = info.Name
		}
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"categories": list,
		"default":    defaultName,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// UnaryLogger logs every unary call with its duration and status code.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("rpc",
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

func requestFromStruct(in *structpb.Struct) (imaging.Request, error) {
	var req imaging.Request
	if in == nil {
		return req, nil
	}
	fields := in.GetFields()
	req.ProductName = fields["product_name"].GetStringValue()
	req.Category = fields["category"].GetStringValue()
	req.Width = int(fields["width"].GetNumberValue())
	req.Height = int(fields["height"].GetNumberValue())
	req.Quality = int(fields["quality"].GetNumberValue())

	format, err := imaging.ParseFormat(fields["format"].GetStringValue())
	if err != nil {
		return req, err
	}
	req.Format = format

	if seed := fields["seed"].GetStringValue(); seed != "" {
		parsed, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return req, errors.New("seed must be a decimal integer")
		}
		req.Seed = parsed
	}
	return req, nil
}

func requestToStruct(req imaging.Request) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"product_name": req.ProductName,
		"category":     req.Category,
		"width":        req.Width,
		"height":       req.Height,
		"quality":      req.Quality,
		"format":       string(req.Format),
	}
	if req.Seed != 0 {
		fields["seed"] = strconv.FormatInt(req.Seed, 10)
	}
	return structpb.NewStruct(fields)
}

func toStatus(err error) error {
	var synthErr *imaging.SynthesisError
	switch {
	case errors.Is(err, imaging.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &synthErr):
		return status.Error(codes.Internal, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

func stringsToAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
