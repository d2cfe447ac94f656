package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedPlans = []string{"free", "free", "free", "sparsh", "sangam", "samarpan"}

// SeedTestData resets the core tables and populates them with demo data.
//
// Behavior:
//  1. Clears swipe_actions, matches, user_daily_stats, fulfilled_purchases and users.
//  2. Creates 20 users spread over the plan tiers, some verified, with small
//     superlike and highlight balances.
//  3. Generates ~200 swipes (~70% likes); every 3rd pair is made mutual and
//     gets its canonical match row.
func SeedTestData(database *gorm.DB, log *slog.Logger) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(database); err != nil {
		return err
	}
	log.Info("cleared existing data")

	ids := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		user := User{
			ID:                     uuid.NewString(),
			DisplayName:            fmt.Sprintf("user%d", i),
			AccountStatus:          seedPlans[r.Intn(len(seedPlans))],
			IsVerified:             i%2 == 0,
			SuperLikesCount:        r.Intn(4),
			MessageHighlightsCount: r.Intn(3),
		}
		if err := database.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		ids = append(ids, user.ID)
	}
	log.Info("seeded users", "count", len(ids))

	swipes, matches := 0, 0
	counter := 0
	for _, swiper := range ids {
		for j := 0; j < 12; j++ {
			swiped := ids[r.Intn(len(ids))]
			if swiper == swiped {
				continue
			}

			action := ActionPass
			if r.Intn(100) < 70 {
				action = ActionLike
			}

			// guarantee a mutual like every 3rd pair
			if counter%3 == 0 {
				action = ActionLike
				if err := seedSwipe(database, swiped, swiper, ActionLike); err != nil {
					return err
				}
				if err := seedMatch(database, swiper, swiped); err != nil {
					return err
				}
				matches++
			}

			if err := seedSwipe(database, swiper, swiped, action); err != nil {
				return err
			}
			swipes++
			counter++
		}
	}
	log.Info("seeded swipes", "swipes", swipes, "matches", matches)

	return nil
}

// SeedMinimalTestData loads a fixed three-user fixture:
// u1 and u2 like each other (matched), u3 liked u1, u1 passed on u3.
func SeedMinimalTestData(database *gorm.DB) error {
	if err := clearAll(database); err != nil {
		return err
	}

	users := []User{
		{ID: "u1", DisplayName: "user1", AccountStatus: "free", IsVerified: true},
		{ID: "u2", DisplayName: "user2", AccountStatus: "sangam", IsVerified: true, SuperLikesCount: 1},
		{ID: "u3", DisplayName: "user3", AccountStatus: "sparsh"},
	}
	if err := database.Create(&users).Error; err != nil {
		return err
	}

	for _, s := range []struct{ from, to, action string }{
		{"u1", "u2", ActionLike},
		{"u2", "u1", ActionLike},
		{"u3", "u1", ActionLike},
		{"u1", "u3", ActionPass},
	} {
		if err := seedSwipe(database, s.from, s.to, s.action); err != nil {
			return err
		}
	}
	return seedMatch(database, "u1", "u2")
}

func clearAll(database *gorm.DB) error {
	for _, table := range []string{"swipe_actions", "matches", "user_daily_stats", "fulfilled_purchases", "users"} {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func seedSwipe(database *gorm.DB, swiper, swiped, action string) error {
	row := SwipeAction{ID: uuid.NewString(), SwiperID: swiper, SwipedID: swiped, Action: action}
	err := database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swiped_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"action"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to seed swipe: %w", err)
	}
	return nil
}

func seedMatch(database *gorm.DB, a, b string) error {
	if b < a {
		a, b = b, a
	}
	row := Match{ID: uuid.NewString(), User1ID: a, User2ID: b}
	err := database.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to seed match: %w", err)
	}
	return nil
}
