package models

import (
	"time"

	"gorm.io/datatypes"
)

// CommonFood is a backlog entry: a coarse food description pulled from the
// instant-search endpoint, awaiting resolution into nutrient_food rows.
// The tag id is assigned by the external API; re-ingesting the same tag is
// last-write-wins. Rows are never deleted by the pipeline.
type CommonFood struct {
	TagID         int64  `gorm:"column:tag_id;primaryKey;autoIncrement:false"`
	TagName       string `gorm:"column:tag_name;not null"`
	FoodName      *string
	ServingQty    *float64
	ServingUnit   *string
	NfCalories    *float64
	Locale        *string
	PhotoThumbURL *string `gorm:"column:photo_thumb_url"`
	RawPayload    datatypes.JSON
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

func (CommonFood) TableName() string { return "common_food" }

// CommonNutrientMap links a resolved tag to one of its nutrient records.
// Insert-only; duplicate inserts are a no-op. A tag with at least one row
// here is no longer part of the hydration backlog.
type CommonNutrientMap struct {
	TagID          int64 `gorm:"column:tag_id;primaryKey;autoIncrement:false"`
	NutrientFoodID uint  `gorm:"column:nutrient_food_id;primaryKey;autoIncrement:false"`
}

func (CommonNutrientMap) TableName() string { return "common_to_nutrient_map" }
