package ingest

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutridex/backend/internal/models"
)

// nutrientFoodUpdateColumns lists every mutable parent column. A fingerprint
// collision replaces all of them with the incoming values (full replace, not
// merge); only the surrogate id and the fingerprint itself survive.
var nutrientFoodUpdateColumns = []string{
	"upc", "ndb_no", "nix_brand_id", "nix_item_id",
	"food_name", "brand_name", "serving_qty", "serving_unit", "serving_weight_grams",
	"nf_calories", "nf_total_fat", "nf_saturated_fat", "nf_cholesterol", "nf_sodium",
	"nf_total_carbohydrate", "nf_dietary_fiber", "nf_sugars", "nf_protein", "nf_potassium", "nf_p",
	"consumed_at", "meal_type", "source",
	"photo_thumb_url", "photo_highres_url",
	"tag_item", "tag_measure", "tag_quantity", "tag_food_group", "tag_id",
	"is_raw_food", "raw_payload", "updated_at",
}

// UpsertNutrientFood persists one normalized record: the parent row keyed by
// fingerprint, then alt-measure and nutrient-value children keyed against the
// parent's surrogate id. It runs entirely inside the caller's transaction and
// never commits; the caller owns the transaction boundary so that parent,
// children and linkage land atomically.
//
// The returned id is the same whether the parent row was inserted or updated.
func UpsertNutrientFood(tx *gorm.DB, nf NormalizedFood) (uint, error) {
	rec := nf.Record
	rec.ID = 0

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		DoUpdates: clause.AssignmentColumns(nutrientFoodUpdateColumns),
	}).Create(&rec).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert nutrient_food: %w", err)
	}

	// Resolve the surrogate id by fingerprint rather than trusting the
	// driver: not every driver reports the row id back on the conflict path.
	var row struct{ ID uint }
	err = tx.Model(&models.NutrientFood{}).
		Select("id").
		Where("fingerprint = ?", rec.Fingerprint).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to resolve nutrient_food id: %w", err)
	}
	if row.ID == 0 {
		return 0, fmt.Errorf("nutrient_food row missing after upsert (fingerprint %s)", rec.Fingerprint)
	}
	foodID := row.ID

	for _, m := range nf.AltMeasures {
		if m.Measure == nil || *m.Measure == "" {
			// measure is NOT NULL by schema contract; drop the row
			continue
		}
		seqKey := models.AltMeasureSeqSentinel
		if m.Seq != nil {
			seqKey = *m.Seq
		}
		child := models.NutrientAltMeasure{
			FoodID:        foodID,
			Measure:       *m.Measure,
			SeqKey:        seqKey,
			Seq:           m.Seq,
			Qty:           m.Qty,
			ServingWeight: m.ServingWeight,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}, {Name: "measure"}, {Name: "seq_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"qty", "serving_weight"}),
		}).Create(&child).Error
		if err != nil {
			return 0, fmt.Errorf("failed to upsert alt measure %q: %w", *m.Measure, err)
		}
	}

	for _, n := range nf.Nutrients {
		if n.AttrID == nil {
			continue
		}
		child := models.NutrientValue{
			FoodID: foodID,
			AttrID: *n.AttrID,
			Value:  n.Value,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}, {Name: "attr_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&child).Error
		if err != nil {
			return 0, fmt.Errorf("failed to upsert nutrient value %d: %w", *n.AttrID, err)
		}
	}

	return foodID, nil
}

// UpsertCommonFood persists one backlog tag, keyed by the externally assigned
// tag id. Re-ingests are last-write-wins on every column.
func UpsertCommonFood(tx *gorm.DB, row *models.CommonFood) error {
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tag_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tag_name", "food_name", "serving_qty", "serving_unit",
			"nf_calories", "locale", "photo_thumb_url", "raw_payload", "updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert common_food %d: %w", row.TagID, err)
	}
	return nil
}
