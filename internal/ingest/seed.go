package ingest

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nutridex/backend/internal/logger"
	"github.com/nutridex/backend/internal/nutrition"
)

// TagSearcher looks up the "common" tag items for a search term.
type TagSearcher interface {
	InstantSearch(ctx context.Context, term string) ([]nutrition.SearchItem, error)
}

// Seeder populates the common_food backlog by walking a fixed term list
// through the instant-search endpoint. One transaction per term; a failing
// term rolls back only its own writes.
type Seeder struct {
	db    *gorm.DB
	api   TagSearcher
	log   *logger.Logger
	delay time.Duration
	now   func() time.Time
}

// NewSeeder builds a Seeder with the given inter-term delay.
func NewSeeder(db *gorm.DB, api TagSearcher, log *logger.Logger, delay time.Duration) *Seeder {
	return &Seeder{
		db:    db,
		api:   api,
		log:   log,
		delay: delay,
		now:   time.Now,
	}
}

// SeedStats counts per-term outcomes for one seed run.
type SeedStats struct {
	Terms  int
	Items  int
	Failed int
}

// Run ingests every term in order. Per-term failures are logged and counted;
// the run only stops early when the context is cancelled.
func (s *Seeder) Run(ctx context.Context, terms []string) (SeedStats, error) {
	var stats SeedStats

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Terms++
		termLog := s.log.With("term", term)

		items, err := s.api.InstantSearch(ctx, term)
		if err != nil {
			stats.Failed++
			termLog.Error("search failed", "error", err)
			continue
		}

		now := s.now()
		ingested := 0
		err = s.db.Transaction(func(tx *gorm.DB) error {
			for _, item := range items {
				row := NormalizeSearchItem(item, now)
				if row == nil {
					// no usable tag id; drop the item
					continue
				}
				if err := UpsertCommonFood(tx, row); err != nil {
					return err
				}
				ingested++
			}
			return nil
		})
		if err != nil {
			stats.Failed++
			termLog.Error("term ingest failed", "error", err)
			continue
		}

		stats.Items += ingested
		termLog.Info("term ingested", "items", ingested)
		sleepContext(ctx, s.delay)
	}

	return stats, nil
}
