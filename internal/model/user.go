package model

import (
	"time"
)

// ExamCategory is the exam track a user is preparing for.
type ExamCategory string

const (
	CategoryBCS         ExamCategory = "bcs"
	CategoryMedical     ExamCategory = "medical"
	CategoryEngineering ExamCategory = "engineering"
	CategoryVarsity     ExamCategory = "varsity"
	CategoryCadet       ExamCategory = "cadet"
	CategorySchool      ExamCategory = "school"
	CategoryBank        ExamCategory = "bank"
	CategoryPrimary     ExamCategory = "primary"
)

// Badge is a milestone award shown on the profile.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// Profile is the persisted user aggregate: identity plus progression.
// Every mutation is written through to storage.
type Profile struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Avatar       string       `json:"avatar,omitempty"`
	ExamCategory ExamCategory `json:"examCategory"`
	Streak       int          `json:"streak"`
	XP           int          `json:"xp"`
	Coins        int          `json:"coins"`
	Badges       []Badge      `json:"badges"`
	LastActiveAt *time.Time   `json:"lastActiveAt,omitempty"`
	JoinedAt     time.Time    `json:"joinedAt"`
}

// Settings are per-user app preferences.
type Settings struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
	SoundEffects  bool   `json:"soundEffects"`
}

// DefaultSettings returns the preferences applied to new profiles.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "light",
		Language:      "bn",
		Notifications: true,
		SoundEffects:  true,
	}
}

// UpdateProfileRequest is the payload for editing profile fields.
type UpdateProfileRequest struct {
	Name         string `json:"name" binding:"omitempty,min=2,max=100"`
	Avatar       string `json:"avatar" binding:"omitempty,max=255"`
	ExamCategory string `json:"examCategory" binding:"omitempty,oneof=bcs medical engineering varsity cadet school bank primary"`
}

// UpdateSettingsRequest is the payload for editing app settings.
type UpdateSettingsRequest struct {
	Theme         *string `json:"theme" binding:"omitempty,oneof=light dark system"`
	Language      *string `json:"language" binding:"omitempty,oneof=bn en"`
	Notifications *bool   `json:"notifications" binding:"omitempty"`
	SoundEffects  *bool   `json:"soundEffects" binding:"omitempty"`
}
