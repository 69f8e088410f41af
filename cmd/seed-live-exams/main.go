package main

import (
	"context"
	"fmt"
	"time"

	"github.com/crackit/crackit-backend/internal/config"
	"github.com/crackit/crackit-backend/internal/database"
	"github.com/crackit/crackit-backend/internal/logger"
)

// Seeds a week of scheduled exams so the live lobby has content in a
// fresh environment.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding Live Exams ===")

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	type seed struct {
		id        string
		title     string
		titleBn   string
		category  string
		at        time.Time
		duration  int
		questions int
		premium   bool
	}

	seeds := []seed{
		{"weekly-gk-1", "Weekly GK Challenge", "সাপ্তাহিক সাধারণ জ্ঞান", "bcs", today.Add(20 * time.Hour), 30 * 60, 30, false},
		{"medical-mock-1", "Medical Admission Mock", "মেডিকেল ভর্তি মক", "medical", today.Add(44 * time.Hour), 60 * 60, 100, false},
		{"varsity-science-1", "Varsity Science Sprint", "বিশ্ববিদ্যালয় বিজ্ঞান স্প্রিন্ট", "varsity", today.Add(68 * time.Hour), 45 * 60, 50, false},
		{"engineering-math-1", "Engineering Math Marathon", "ইঞ্জিনিয়ারিং গণিত ম্যারাথন", "engineering", today.Add(92 * time.Hour), 90 * 60, 100, true},
		{"bank-prep-1", "Bank Job Preliminary", "ব্যাংক জব প্রিলিমিনারি", "bank", today.Add(116 * time.Hour), 60 * 60, 80, false},
	}

	inserted := 0
	for _, s := range seeds {
		tag, err := pool.Exec(ctx,
			`INSERT INTO live_exams (id, title, title_bn, category, scheduled_at, duration_seconds, total_questions, is_premium)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO NOTHING`,
			s.id, s.title, s.titleBn, s.category, s.at, s.duration, s.questions, s.premium,
		)
		if err != nil {
			log.Fatal().Err(err).Str("exam_id", s.id).Msg("Insert failed")
		}
		inserted += int(tag.RowsAffected())
	}

	fmt.Printf("Inserted %d live exams (%d already present)\n", inserted, len(seeds)-inserted)
}
