// Package swipev1 defines the matchmaking.swipe.v1 wire contract: request
// and response messages, the JSON codec they travel in, and the service
// descriptor registered on the gRPC server.
package swipev1

// Swipe actions accepted by SwipeRequest.Action.
const (
	ActionLike      = "like"
	ActionPass      = "pass"
	ActionSuperlike = "superlike"
)

type SwipeRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,max=64"`
	Action       string `json:"action" validate:"required,oneof=like pass superlike"`
}

type SwipeResponse struct {
	SwipeID string `json:"swipe_id"`
	IsMatch bool   `json:"is_match"`
	MatchID string `json:"match_id,omitempty"`
	// Partial is set when the swipe was recorded but match formation failed.
	Partial bool `json:"partial,omitempty"`
	// SwipesRemaining is -1 for unlimited plans.
	SwipesRemaining int `json:"swipes_remaining"`
}

type UndoSwipeRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,max=64"`
}

type UndoSwipeResponse struct {
	UndoneAction string   `json:"undone_action"`
	MatchRemoved bool     `json:"match_removed"`
	Partial      bool     `json:"partial,omitempty"`
	FailedSteps  []string `json:"failed_steps,omitempty"`
}

type InstantMatchRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,max=64"`
}

type InstantMatchResponse struct {
	MatchID      string `json:"match_id"`
	LikeRecorded bool   `json:"like_recorded"`
}

type GetSwipeStatsRequest struct{}

type SwipeStats struct {
	Plan                string `json:"plan"`
	Date                string `json:"date"`
	DailyLimit          int    `json:"daily_limit"`
	SwipesUsed          int    `json:"swipes_used"`
	SwipesRemaining     int    `json:"swipes_remaining"`
	SuperLikesAvailable int    `json:"superlikes_available"`
	SuperlikesUsed      int    `json:"superlikes_used"`
	HighlightsAvailable int    `json:"highlights_available"`
	HighlightsUsed      int    `json:"highlights_used"`
	IsVerified          bool   `json:"is_verified"`
	CanUndo             bool   `json:"can_undo"`
	CanInstantMatch     bool   `json:"can_instant_match"`
	CanHighlight        bool   `json:"can_highlight"`
	LikedYouCount       int64  `json:"liked_you_count"`
}

type UseHighlightRequest struct{}

type UseHighlightResponse struct {
	HighlightsRemaining int `json:"highlights_remaining"`
	UsedToday           int `json:"used_today"`
}

type FulfillPurchaseRequest struct {
	PurchaseID string `json:"purchase_id" validate:"required,max=128"`
	UserID     string `json:"user_id" validate:"required,max=64"`
	ItemType   string `json:"item_type" validate:"required,oneof=superlikes highlights plan"`
	Count      int    `json:"count" validate:"required_unless=ItemType plan,gte=0"`
	Plan       string `json:"plan,omitempty" validate:"required_if=ItemType plan"`
}

type FulfillPurchaseResponse struct {
	Applied   bool `json:"applied"`
	Duplicate bool `json:"duplicate"`
}

type ListLikedYouRequest struct {
	// PendingOnly drops likers the caller has already swiped on.
	PendingOnly     bool    `json:"pending_only,omitempty"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

type Liker struct {
	UserID        string `json:"user_id"`
	Action        string `json:"action"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

type ListLikedYouResponse struct {
	Likers              []Liker `json:"likers"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

type CountLikedYouRequest struct{}

type CountLikedYouResponse struct {
	Count int64 `json:"count"`
}

type ListMatchesRequest struct {
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

type MatchSummary struct {
	MatchID       string `json:"match_id"`
	UserID        string `json:"user_id"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

type ListMatchesResponse struct {
	Matches             []MatchSummary `json:"matches"`
	NextPaginationToken *string        `json:"next_pagination_token,omitempty"`
}
