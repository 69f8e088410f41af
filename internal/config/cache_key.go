package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CatalogKey returns the hash key holding cached catalog records of a kind
// (subjects, topics, questions).
func (r *CacheKeyStruct) CatalogKey(kind string) string {
	return fmt.Sprintf("catalog:%s", kind)
}

// CatalogMetaKey returns the key holding the last refresh timestamp for a
// catalog kind. Used for the staleness check.
func (r *CacheKeyStruct) CatalogMetaKey(kind string) string {
	return fmt.Sprintf("catalog:%s:cached_at", kind)
}

// UserResultKey returns the key holding a user's most recent exam result.
func (r *CacheKeyStruct) UserResultKey(userID string) string {
	return fmt.Sprintf("user:%s:last_result", userID)
}

// LeaderboardKey returns the sorted-set key for a category leaderboard.
// Category "global" aggregates all users.
func (r *CacheKeyStruct) LeaderboardKey(category string) string {
	return fmt.Sprintf("leaderboard:%s", category)
}

// LeaderboardNameKey returns the hash key mapping user id → display name for
// a category leaderboard.
func (r *CacheKeyStruct) LeaderboardNameKey(category string) string {
	return fmt.Sprintf("leaderboard:%s:names", category)
}

// LeaderboardTimeKey returns the hash key mapping user id → cumulative time
// taken in seconds, shown as the leaderboard tiebreaker.
func (r *CacheKeyStruct) LeaderboardTimeKey(category string) string {
	return fmt.Sprintf("leaderboard:%s:time", category)
}

// LiveExamRegistrationsKey returns the set key of users registered to a live exam.
func (r *CacheKeyStruct) LiveExamRegistrationsKey(examID string) string {
	return fmt.Sprintf("live:%s:registrations", examID)
}

var CacheKey = NewCacheKeyStruct()
