package imageryv1

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-imagery/internal/imaging"
)

// Client calls a remote synthesizer and maps its responses back onto the
// imaging types, so it can stand in for a local *imaging.Synthesizer.
type Client struct {
	rpc SynthesizerClient
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rpc: NewSynthesizerClient(cc)}
}

func (c *Client) Synthesize(ctx context.Context, req imaging.Request) (*imaging.Artifact, error) {
	in, err := requestToStruct(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imaging.ErrInvalidRequest, err)
	}

	var header metadata.MD
	out, err := c.rpc.Synthesize(ctx, in, grpc.Header(&header))
	if err != nil {
		return nil, fromStatus(req.Category, err)
	}

	artifact := &imaging.Artifact{
		Filename:      headerValue(header, HeaderFilename),
		ContentType:   headerValue(header, HeaderContentType),
		Data:          out.GetValue(),
		Width:         headerInt(header, HeaderWidth),
		Height:        headerInt(header, HeaderHeight),
		ProductName:   req.ProductName,
		Category:      headerValue(header, HeaderCategory),
		Template:      headerValue(header, HeaderTemplate),
		Color:         headerValue(header, HeaderColor),
		Postprocessed: headerValue(header, HeaderPostprocessed) == "true",
	}
	if seed, err := strconv.ParseInt(headerValue(header, HeaderSeed), 10, 64); err == nil {
		artifact.Seed = seed
	}
	if artifact.Filename == "" {
		return nil, &imaging.SynthesisError{Category: req.Category, Op: "remote", Err: fmt.Errorf("response has no filename")}
	}
	return artifact, nil
}

// ListCategories returns the remote category descriptions.
func (c *Client) ListCategories(ctx context.Context) ([]imaging.CategoryInfo, error) {
	out, err := c.rpc.ListCategories(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	defaultName := out.GetFields()["default"].GetStringValue()
	values := out.GetFields()["categories"].GetListValue().GetValues()
	infos := make([]imaging.CategoryInfo, 0, len(values))
	for _, v := range values {
		fields := v.GetStructValue().GetFields()
		name := fields["name"].GetStringValue()
		infos = append(infos, imaging.CategoryInfo{
			Name:       name,
			Background: fields["background"].GetStringValue(),
			Colors:     listStrings(fields["colors"].GetListValue().GetValues()),
			Patterns:   listStrings(fields["patterns"].GetListValue().GetValues()),
			Styles:     listStrings(fields["styles"].GetListValue().GetValues()),
			Default:    name == defaultName,
		})
	}
	return infos, nil
}

func fromStatus(category string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", imaging.ErrInvalidRequest, st.Message())
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return &imaging.SynthesisError{Category: category, Op: "remote", Err: err}
	}
}

func headerValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func headerInt(md metadata.MD, key string) int {
	parsed, err := strconv.Atoi(headerValue(md, key))
	if err != nil {
		return 0
	}
	return parsed
}

func listStrings(values []*structpb.Value) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.GetStringValue())
	}
	return out
}
