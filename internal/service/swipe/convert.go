package swipe

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/matchmaking-core/internal/db"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/matching"
	pb "github.com/oggyb/matchmaking-core/internal/rpc/swipev1"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks req against its validate tags and returns an
// InvalidArgument error naming the first failing field.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return svcErr.Invalid(fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
	}
	return svcErr.Invalid("invalid request")
}

func ToSwipeResponse(res *matching.SwipeResult) *pb.SwipeResponse {
	out := &pb.SwipeResponse{
		SwipeID:         res.Swipe.ID,
		IsMatch:         res.IsMatch,
		Partial:         res.Partial,
		SwipesRemaining: res.SwipesRemaining,
	}
	if res.Match != nil {
		out.MatchID = res.Match.ID
	}
	return out
}

func ToUndoResponse(res *matching.UndoResult) *pb.UndoSwipeResponse {
	return &pb.UndoSwipeResponse{
		UndoneAction: res.UndoneAction,
		MatchRemoved: res.MatchRemoved,
		Partial:      res.Partial,
		FailedSteps:  res.FailedSteps,
	}
}

func ToStats(s *matching.Stats) *pb.SwipeStats {
	return &pb.SwipeStats{
		Plan:                s.Plan,
		Date:                s.Date,
		DailyLimit:          s.DailyLimit,
		SwipesUsed:          s.SwipesUsed,
		SwipesRemaining:     s.SwipesRemaining,
		SuperLikesAvailable: s.SuperLikesAvailable,
		SuperlikesUsed:      s.SuperlikesUsed,
		HighlightsAvailable: s.HighlightsAvailable,
		HighlightsUsed:      s.HighlightsUsed,
		IsVerified:          s.IsVerified,
		CanUndo:             s.CanUndo,
		CanInstantMatch:     s.CanInstantMatch,
		CanHighlight:        s.CanHighlight,
		LikedYouCount:       s.LikedYouCount,
	}
}

func ToPurchase(req *pb.FulfillPurchaseRequest) matching.Purchase {
	return matching.Purchase{
		PurchaseID: req.PurchaseID,
		UserID:     req.UserID,
		ItemType:   req.ItemType,
		Count:      req.Count,
		Plan:       req.Plan,
	}
}

func ToLikers(swipes []db.SwipeAction, next *string) *pb.ListLikedYouResponse {
	resp := &pb.ListLikedYouResponse{Likers: make([]pb.Liker, 0, len(swipes)), NextPaginationToken: next}
	for _, s := range swipes {
		resp.Likers = append(resp.Likers, pb.Liker{
			UserID:        s.SwiperID,
			Action:        s.Action,
			UnixTimestamp: s.CreatedAt.UnixMilli(),
		})
	}
	return resp
}

func ToMatches(userID string, matches []db.Match, next *string) *pb.ListMatchesResponse {
	resp := &pb.ListMatchesResponse{Matches: make([]pb.MatchSummary, 0, len(matches)), NextPaginationToken: next}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, pb.MatchSummary{
			MatchID:       m.ID,
			UserID:        m.Other(userID),
			UnixTimestamp: m.CreatedAt.UnixMilli(),
		})
	}
	return resp
}
