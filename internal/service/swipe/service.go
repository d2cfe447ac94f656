package swipe

import (
	"context"

	"github.com/oggyb/matchmaking-core/internal/app"
	"github.com/oggyb/matchmaking-core/internal/auth"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/matching"
	pb "github.com/oggyb/matchmaking-core/internal/rpc/swipev1"
)

// Service implements the SwipeService gRPC API on top of the matching
// engine. The caller is always the authenticated identity; request
// messages never carry the acting user id.
type Service struct {
	appCtx *app.AppContext
	engine *matching.Engine
}

var _ pb.SwipeServiceServer = (*Service)(nil)

// NewSwipeService creates the service over a shared engine.
func NewSwipeService(appCtx *app.AppContext, engine *matching.Engine) *Service {
	return &Service{appCtx: appCtx, engine: engine}
}

func caller(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok || id.UserID == "" {
		return auth.Identity{}, svcErr.Map(svcErr.ErrUnauthorized)
	}
	return id, nil
}

// Swipe records a like, pass or superlike from the caller.
//
// Example:
//
//	svc.Swipe(ctx, &pb.SwipeRequest{TargetUserID: "u2", Action: "like"})
func (s *Service) Swipe(ctx context.Context, req *pb.SwipeRequest) (*pb.SwipeResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("Swipe called", "swiper", id.UserID, "target", req.TargetUserID, "action", req.Action)

	if err := Validate(req); err != nil {
		return nil, svcErr.Map(err)
	}
	res, err := s.engine.Swipe(ctx, id.UserID, req.TargetUserID, req.Action)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("Swipe result", "is_match", res.IsMatch, "remaining", res.SwipesRemaining)
	return ToSwipeResponse(res), nil
}

// UndoSwipe reverses the caller's latest swipe on the target.
func (s *Service) UndoSwipe(ctx context.Context, req *pb.UndoSwipeRequest) (*pb.UndoSwipeResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("UndoSwipe called", "user", id.UserID, "target", req.TargetUserID)

	if err := Validate(req); err != nil {
		return nil, svcErr.Map(err)
	}
	res, err := s.engine.Undo(ctx, id.UserID, req.TargetUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return ToUndoResponse(res), nil
}

func (s *Service) InstantMatch(ctx context.Context, req *pb.InstantMatchRequest) (*pb.InstantMatchResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, svcErr.Map(err)
	}
	res, err := s.engine.InstantMatch(ctx, id.UserID, req.TargetUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.InstantMatchResponse{MatchID: res.Match.ID, LikeRecorded: res.LikeRecorded}, nil
}

func (s *Service) GetSwipeStats(ctx context.Context, _ *pb.GetSwipeStatsRequest) (*pb.SwipeStats, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.engine.Stats(ctx, id.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return ToStats(stats), nil
}

func (s *Service) UseHighlight(ctx context.Context, _ *pb.UseHighlightRequest) (*pb.UseHighlightResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.UseHighlight(ctx, id.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.UseHighlightResponse{HighlightsRemaining: res.HighlightsRemaining, UsedToday: res.UsedToday}, nil
}

// FulfillPurchase applies a purchase event. Only service-role callers may
// use it; the user id comes from the request.
func (s *Service) FulfillPurchase(ctx context.Context, req *pb.FulfillPurchaseRequest) (*pb.FulfillPurchaseResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if !id.IsService() {
		return nil, svcErr.Map(svcErr.ErrForbidden)
	}
	s.appCtx.Logger.Debug("FulfillPurchase called", "purchase", req.PurchaseID, "user", req.UserID, "item", req.ItemType)

	if err := Validate(req); err != nil {
		return nil, svcErr.Map(err)
	}
	res, err := s.engine.FulfillPurchase(ctx, ToPurchase(req))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.FulfillPurchaseResponse{Applied: res.Applied, Duplicate: res.Duplicate}, nil
}

// ListLikedYou returns users who liked the caller.
//
// Behavior:
//   - Excludes users the caller passed.
//   - With PendingOnly, also excludes users the caller liked back.
//   - Supports cursor-based pagination with PaginationToken.
func (s *Service) ListLikedYou(ctx context.Context, req *pb.ListLikedYouRequest) (*pb.ListLikedYouResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("ListLikedYou called", "recipient", id.UserID, "pending_only", req.PendingOnly)

	if err := Validate(req); err != nil {
		return nil, svcErr.Map(err)
	}
	list := s.engine.ListLikedYou
	if req.PendingOnly {
		list = s.engine.ListPendingLikers
	}
	likers, next, err := list(ctx, id.UserID, req.PaginationToken, req.Limit)
	if err != nil {
		s.appCtx.Logger.Error("ListLikedYou failed", "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("ListLikedYou result", "liker_count", len(likers))
	return ToLikers(likers, next), nil
}

// CountLikedYou returns how many users liked the caller, cache first.
func (s *Service) CountLikedYou(ctx context.Context, _ *pb.CountLikedYouRequest) (*pb.CountLikedYouResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.engine.CountLikedYou(ctx, id.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CountLikedYouResponse{Count: n}, nil
}

func (s *Service) ListMatches(ctx context.Context, req *pb.ListMatchesRequest) (*pb.ListMatchesResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, svcErr.Map(err)
	}
	matches, next, err := s.engine.ListMatches(ctx, id.UserID, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return ToMatches(id.UserID, matches, next), nil
}
