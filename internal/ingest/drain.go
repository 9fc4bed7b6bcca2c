package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutridex/backend/internal/logger"
	"github.com/nutridex/backend/internal/models"
	"github.com/nutridex/backend/internal/nutrition"
)

// NaturalResolver resolves a free-text query into detailed food objects.
type NaturalResolver interface {
	NaturalNutrients(ctx context.Context, query string) ([]nutrition.Food, error)
}

// Drainer hydrates the common_food backlog: tags with no linkage row are
// resolved through the natural-nutrients endpoint and persisted as nutrient
// records plus linkage, one transaction per tag. Tags are processed strictly
// sequentially with a fixed pause between external calls.
type Drainer struct {
	db        *gorm.DB
	api       NaturalResolver
	log       *logger.Logger
	batchSize int
	delay     time.Duration
	now       func() time.Time
}

// NewDrainer builds a Drainer. batchSize bounds each backlog selection;
// delay is the pause after each successful resolution.
func NewDrainer(db *gorm.DB, api NaturalResolver, log *logger.Logger, batchSize int, delay time.Duration) *Drainer {
	return &Drainer{
		db:        db,
		api:       api,
		log:       log,
		batchSize: batchSize,
		delay:     delay,
		now:       time.Now,
	}
}

// DrainStats counts per-tag outcomes for one drain run.
type DrainStats struct {
	Resolved int
	Skipped  int
	Failed   int
}

// Run drains the backlog until a selection comes back empty. A tag whose
// resolution fails or returns nothing is recorded and not retried within this
// run; a later run re-evaluates the backlog from scratch. Only a failing
// backlog selection aborts the run.
func (d *Drainer) Run(ctx context.Context) (DrainStats, error) {
	var stats DrainStats
	attempted := make(map[int64]bool)

	for {
		batch, err := d.fetchBacklog(attempted)
		if err != nil {
			return stats, fmt.Errorf("failed to select backlog: %w", err)
		}
		if len(batch) == 0 {
			return stats, nil
		}

		for _, tag := range batch {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			attempted[tag.TagID] = true

			query := BuildQuery(tag)
			unitLog := d.log.With("tag_id", tag.TagID, "query", query)

			foods, err := d.api.NaturalNutrients(ctx, query)
			if err != nil {
				stats.Failed++
				unitLog.Error("tag resolution failed", "error", err)
				continue
			}
			if len(foods) == 0 {
				stats.Skipped++
				unitLog.Warn("no foods for query")
				continue
			}

			if err := d.persistTag(tag.TagID, foods); err != nil {
				stats.Failed++
				unitLog.Error("tag write failed", "error", err)
				continue
			}

			stats.Resolved++
			unitLog.Info("tag resolved", "foods", len(foods))
			sleepContext(ctx, d.delay)
		}
	}
}

// persistTag writes all nutrient records for one tag plus the linkage rows in
// a single transaction. Any failure rolls the whole unit of work back.
func (d *Drainer) persistTag(tagID int64, foods []nutrition.Food) error {
	now := d.now()
	return d.db.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(foods))
		for _, f := range foods {
			id, err := UpsertNutrientFood(tx, NormalizeFood(f, now))
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		for _, id := range ids {
			link := models.CommonNutrientMap{TagID: tagID, NutrientFoodID: id}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return fmt.Errorf("failed to insert linkage for food %d: %w", id, err)
			}
		}
		return nil
	})
}

// fetchBacklog selects up to batchSize tags with no linkage row, freshest
// first. Tags already attempted in this run are filtered out in memory after
// the selection, with the window widened by the attempted count so progress
// is still guaranteed; the statement stays a fixed shape no matter how many
// tags keep failing or resolving to nothing.
func (d *Drainer) fetchBacklog(attempted map[int64]bool) ([]models.CommonFood, error) {
	var rows []models.CommonFood
	err := d.db.Table("common_food AS cf").
		Select("cf.tag_id, cf.tag_name, cf.food_name, cf.serving_qty, cf.serving_unit").
		Joins("LEFT JOIN common_to_nutrient_map m ON m.tag_id = cf.tag_id").
		Where("m.tag_id IS NULL").
		Order("cf.updated_at DESC").
		Limit(d.batchSize + len(attempted)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	batch := make([]models.CommonFood, 0, d.batchSize)
	for _, row := range rows {
		if attempted[row.TagID] {
			continue
		}
		batch = append(batch, row)
		if len(batch) == d.batchSize {
			break
		}
	}
	return batch, nil
}

// BuildQuery renders a tag as the natural-language query the resolution API
// expects: "<qty> <unit> <name>" when both quantity and unit are present,
// otherwise just the name.
func BuildQuery(tag models.CommonFood) string {
	name := tag.TagName
	if name == "" && tag.FoodName != nil {
		name = *tag.FoodName
	}
	if tag.ServingQty != nil && tag.ServingUnit != nil && *tag.ServingUnit != "" {
		qty := strconv.FormatFloat(*tag.ServingQty, 'f', -1, 64)
		return strings.Join([]string{qty, *tag.ServingUnit, name}, " ")
	}
	return name
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
