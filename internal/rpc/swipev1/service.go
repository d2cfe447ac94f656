package swipev1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "matchmaking.swipe.v1.SwipeService"

// SwipeServiceServer is the server API for SwipeService.
type SwipeServiceServer interface {
	Swipe(context.Context, *SwipeRequest) (*SwipeResponse, error)
	UndoSwipe(context.Context, *UndoSwipeRequest) (*UndoSwipeResponse, error)
	InstantMatch(context.Context, *InstantMatchRequest) (*InstantMatchResponse, error)
	GetSwipeStats(context.Context, *GetSwipeStatsRequest) (*SwipeStats, error)
	UseHighlight(context.Context, *UseHighlightRequest) (*UseHighlightResponse, error)
	FulfillPurchase(context.Context, *FulfillPurchaseRequest) (*FulfillPurchaseResponse, error)
	ListLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error)
	CountLikedYou(context.Context, *CountLikedYouRequest) (*CountLikedYouResponse, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
}

func RegisterSwipeServiceServer(s grpc.ServiceRegistrar, srv SwipeServiceServer) {
	s.RegisterService(&SwipeService_ServiceDesc, srv)
}

// unary adapts a typed method into a grpc.MethodHandler.
func unary[Req any, Resp any](method string, call func(SwipeServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SwipeServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SwipeServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var SwipeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SwipeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Swipe", SwipeServiceServer.Swipe),
		unary("UndoSwipe", SwipeServiceServer.UndoSwipe),
		unary("InstantMatch", SwipeServiceServer.InstantMatch),
		unary("GetSwipeStats", SwipeServiceServer.GetSwipeStats),
		unary("UseHighlight", SwipeServiceServer.UseHighlight),
		unary("FulfillPurchase", SwipeServiceServer.FulfillPurchase),
		unary("ListLikedYou", SwipeServiceServer.ListLikedYou),
		unary("CountLikedYou", SwipeServiceServer.CountLikedYou),
		unary("ListMatches", SwipeServiceServer.ListMatches),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matchmaking/swipe/v1/swipe.json",
}

// SwipeServiceClient calls SwipeService over a connection using the json codec.
type SwipeServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSwipeServiceClient(cc grpc.ClientConnInterface) *SwipeServiceClient {
	return &SwipeServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SwipeServiceClient) Swipe(ctx context.Context, in *SwipeRequest, opts ...grpc.CallOption) (*SwipeResponse, error) {
	return invoke[SwipeResponse](ctx, c.cc, "Swipe", in, opts)
}

func (c *SwipeServiceClient) UndoSwipe(ctx context.Context, in *UndoSwipeRequest, opts ...grpc.CallOption) (*UndoSwipeResponse, error) {
	return invoke[UndoSwipeResponse](ctx, c.cc, "UndoSwipe", in, opts)
}

func (c *SwipeServiceClient) InstantMatch(ctx context.Context, in *InstantMatchRequest, opts ...grpc.CallOption) (*InstantMatchResponse, error) {
	return invoke[InstantMatchResponse](ctx, c.cc, "InstantMatch", in, opts)
}

func (c *SwipeServiceClient) GetSwipeStats(ctx context.Context, in *GetSwipeStatsRequest, opts ...grpc.CallOption) (*SwipeStats, error) {
	return invoke[SwipeStats](ctx, c.cc, "GetSwipeStats", in, opts)
}

func (c *SwipeServiceClient) UseHighlight(ctx context.Context, in *UseHighlightRequest, opts ...grpc.CallOption) (*UseHighlightResponse, error) {
	return invoke[UseHighlightResponse](ctx, c.cc, "UseHighlight", in, opts)
}

func (c *SwipeServiceClient) FulfillPurchase(ctx context.Context, in *FulfillPurchaseRequest, opts ...grpc.CallOption) (*FulfillPurchaseResponse, error) {
	return invoke[FulfillPurchaseResponse](ctx, c.cc, "FulfillPurchase", in, opts)
}

func (c *SwipeServiceClient) ListLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	return invoke[ListLikedYouResponse](ctx, c.cc, "ListLikedYou", in, opts)
}

func (c *SwipeServiceClient) CountLikedYou(ctx context.Context, in *CountLikedYouRequest, opts ...grpc.CallOption) (*CountLikedYouResponse, error) {
	return invoke[CountLikedYouResponse](ctx, c.cc, "CountLikedYou", in, opts)
}

func (c *SwipeServiceClient) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	return invoke[ListMatchesResponse](ctx, c.cc, "ListMatches", in, opts)
}
