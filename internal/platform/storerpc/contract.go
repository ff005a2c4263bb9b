package storerpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	serviceName         = "kreosurvey.responses.v1.ResponseStore"
	jsonCodecName       = "json"
	methodUpsert        = "/" + serviceName + "/Upsert"
	methodMarkCompleted = "/" + serviceName + "/MarkCompleted"
	methodGet           = "/" + serviceName + "/Get"
	methodList          = "/" + serviceName + "/List"
	methodDelete        = "/" + serviceName + "/Delete"
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type UserInfo struct {
	SessionID            string `json:"session_id"`
	StartTime            string `json:"start_time"`
	LastUpdated          string `json:"last_updated"`
	CompletionStatus     string `json:"completion_status"`
	CompletionPercentage int32  `json:"completion_percentage"`
	CurrentSection       string `json:"current_section"`
	CompletionTime       string `json:"completion_time,omitempty"`
}

type Document struct {
	ID       string                    `json:"id"`
	UserInfo UserInfo                  `json:"user_info"`
	Sections map[string]map[string]any `json:"sections"`
}

type UpsertRequest struct {
	ID             string                    `json:"id"`
	Sections       map[string]map[string]any `json:"sections"`
	CurrentSection string                    `json:"current_section"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type ListResponse struct {
	Documents []Document `json:"documents"`
}

type ResponseStoreServer interface {
	Upsert(ctx context.Context, in *UpsertRequest) (*Document, error)
	MarkCompleted(ctx context.Context, in *IDRequest) (*Document, error)
	Get(ctx context.Context, in *IDRequest) (*Document, error)
	List(ctx context.Context, in *Empty) (*ListResponse, error)
	Delete(ctx context.Context, in *IDRequest) (*Empty, error)
}

type ResponseStoreClient interface {
	Upsert(ctx context.Context, in *UpsertRequest) (*Document, error)
	MarkCompleted(ctx context.Context, in *IDRequest) (*Document, error)
	Get(ctx context.Context, in *IDRequest) (*Document, error)
	List(ctx context.Context) (*ListResponse, error)
	Delete(ctx context.Context, in *IDRequest) error
}

type responseStoreClient struct {
	conn grpc.ClientConnInterface
}

func NewResponseStoreClient(conn grpc.ClientConnInterface) ResponseStoreClient {
	return &responseStoreClient{conn: conn}
}

func (c *responseStoreClient) Upsert(ctx context.Context, in *UpsertRequest) (*Document, error) {
	out := &Document{}
	if err := c.conn.Invoke(ctx, methodUpsert, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *responseStoreClient) MarkCompleted(ctx context.Context, in *IDRequest) (*Document, error) {
	out := &Document{}
	if err := c.conn.Invoke(ctx, methodMarkCompleted, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *responseStoreClient) Get(ctx context.Context, in *IDRequest) (*Document, error) {
	out := &Document{}
	if err := c.conn.Invoke(ctx, methodGet, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *responseStoreClient) List(ctx context.Context) (*ListResponse, error) {
	out := &ListResponse{}
	if err := c.conn.Invoke(ctx, methodList, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *responseStoreClient) Delete(ctx context.Context, in *IDRequest) error {
	return c.conn.Invoke(ctx, methodDelete, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

// unary adapts one typed method to grpc.MethodDesc, honouring interceptors.
func unary[Req any](fullMethod string, call func(ctx context.Context, in *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type")
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterResponseStoreServer(server grpc.ServiceRegistrar, impl ResponseStoreServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ResponseStoreServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Upsert",
				Handler: unary(methodUpsert, func(ctx context.Context, in *UpsertRequest) (any, error) {
					return impl.Upsert(ctx, in)
				}),
			},
			{
				MethodName: "MarkCompleted",
				Handler: unary(methodMarkCompleted, func(ctx context.Context, in *IDRequest) (any, error) {
					return impl.MarkCompleted(ctx, in)
				}),
			},
			{
				MethodName: "Get",
				Handler: unary(methodGet, func(ctx context.Context, in *IDRequest) (any, error) {
					return impl.Get(ctx, in)
				}),
			},
			{
				MethodName: "List",
				Handler: unary(methodList, func(ctx context.Context, in *Empty) (any, error) {
					return impl.List(ctx, in)
				}),
			},
			{
				MethodName: "Delete",
				Handler: unary(methodDelete, func(ctx context.Context, in *IDRequest) (any, error) {
					return impl.Delete(ctx, in)
				}),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/response-store-v1.proto",
	}, impl)
}
