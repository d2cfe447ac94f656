package db

import (
	"time"
)

// Swipe actions stored in SwipeAction.Action.
const (
	ActionLike      = "like"
	ActionPass      = "pass"
	ActionSuperlike = "superlike"
)

// User is the slice of the identity record the core reads and mutates.
//
// AccountStatus holds the plan tier. The two counters are purchased balances
// and are only changed through conditional UPDATEs in the repository layer.
type User struct {
	ID                     string    `gorm:"primaryKey;size:64"`
	DisplayName            string    `gorm:"size:128"`
	AccountStatus          string    `gorm:"size:32;not null"`
	IsVerified             bool      `gorm:"not null"`
	SuperLikesCount        int       `gorm:"not null"`
	MessageHighlightsCount int       `gorm:"not null"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`
}

// SwipeAction is one directional decision by SwiperID about SwipedID.
//
// Indexes:
//   - idx_swipe_pair (swiper_id, swiped_id) UNIQUE
//     At most one row per ordered pair; duplicate inserts surface as AlreadySwiped.
//   - idx_swiped_action_created (swiped_id, action, created_at DESC)
//     Serves reciprocal-like lookups and the "liked you" lists.
type SwipeAction struct {
	ID        string    `gorm:"primaryKey;size:36"`
	SwiperID  string    `gorm:"size:64;not null;uniqueIndex:idx_swipe_pair,priority:1"`
	SwipedID  string    `gorm:"size:64;not null;uniqueIndex:idx_swipe_pair,priority:2;index:idx_swiped_action_created,priority:1"`
	Action    string    `gorm:"size:16;not null;index:idx_swiped_action_created,priority:2"`
	CreatedAt time.Time `gorm:"not null;index:idx_swiped_action_created,priority:3,sort:desc"`
}

// IsPositive reports whether the action counts as interest (like or superlike).
func (s SwipeAction) IsPositive() bool {
	return s.Action == ActionLike || s.Action == ActionSuperlike
}

// Match is a mutual like between two users.
//
// User1ID < User2ID by string comparison, and idx_match_pair makes the
// canonical pair unique, so a pair maps to exactly one row whoever swiped first.
type Match struct {
	ID            string    `gorm:"primaryKey;size:36"`
	User1ID       string    `gorm:"size:64;not null;uniqueIndex:idx_match_pair,priority:1"`
	User2ID       string    `gorm:"size:64;not null;uniqueIndex:idx_match_pair,priority:2;index:idx_match_user2"`
	CreatedAt     time.Time `gorm:"not null"`
	LastMessageAt *time.Time
}

// Other returns the counterpart of userID in the match.
func (m Match) Other(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// DailyStats holds one user's usage counters for one UTC day (YYYY-MM-DD).
type DailyStats struct {
	UserID                string    `gorm:"primaryKey;size:64"`
	Date                  string    `gorm:"primaryKey;size:10"`
	SwipesUsed            int       `gorm:"not null"`
	SuperlikesUsed        int       `gorm:"not null"`
	MessageHighlightsUsed int       `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (DailyStats) TableName() string { return "user_daily_stats" }

// Purchase records a fulfilled gateway purchase so redelivered events are applied once.
type Purchase struct {
	ID        string    `gorm:"primaryKey;size:128"`
	UserID    string    `gorm:"size:64;not null;index"`
	ItemType  string    `gorm:"size:32;not null"`
	Count     int       `gorm:"not null"`
	Plan      string    `gorm:"size:32"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Purchase) TableName() string { return "fulfilled_purchases" }

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{&User{}, &SwipeAction{}, &Match{}, &DailyStats{}, &Purchase{}}
}
