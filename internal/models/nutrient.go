package models

import (
	"time"

	"gorm.io/datatypes"
)

// NutrientFood is a fully resolved nutrition entry for one food/serving.
// Identity is the surrogate id plus the content fingerprint; the fingerprint
// is the conflict key for upserts, so semantically identical re-ingests
// update the existing row instead of duplicating it.
type NutrientFood struct {
	ID uint `gorm:"primaryKey"`

	// Identifying codes
	UPC        *string `gorm:"column:upc"`
	NdbNo      *int64  `gorm:"column:ndb_no"`
	NixBrandID *string `gorm:"column:nix_brand_id"`
	NixItemID  *string `gorm:"column:nix_item_id"`

	// Descriptive fields
	FoodName           *string
	BrandName          *string
	ServingQty         *float64
	ServingUnit        *string
	ServingWeightGrams *float64

	// Macro-nutrient quantities
	NfCalories          *float64 `gorm:"column:nf_calories"`
	NfTotalFat          *float64 `gorm:"column:nf_total_fat"`
	NfSaturatedFat      *float64 `gorm:"column:nf_saturated_fat"`
	NfCholesterol       *float64 `gorm:"column:nf_cholesterol"`
	NfSodium            *float64 `gorm:"column:nf_sodium"`
	NfTotalCarbohydrate *float64 `gorm:"column:nf_total_carbohydrate"`
	NfDietaryFiber      *float64 `gorm:"column:nf_dietary_fiber"`
	NfSugars            *float64 `gorm:"column:nf_sugars"`
	NfProtein           *float64 `gorm:"column:nf_protein"`
	NfPotassium         *float64 `gorm:"column:nf_potassium"`
	NfP                 *float64 `gorm:"column:nf_p"`

	// Provenance
	ConsumedAt *time.Time
	MealType   *int
	Source     *int

	// Photo URLs
	PhotoThumbURL   *string `gorm:"column:photo_thumb_url"`
	PhotoHighresURL *string `gorm:"column:photo_highres_url"`

	// Denormalized tag sub-object
	TagItem      *string `gorm:"column:tag_item"`
	TagMeasure   *string `gorm:"column:tag_measure"`
	TagQuantity  *string `gorm:"column:tag_quantity"`
	TagFoodGroup *int64  `gorm:"column:tag_food_group"`
	TagID        *string `gorm:"column:tag_id"`

	IsRawFood *bool

	Fingerprint string         `gorm:"size:64;not null;uniqueIndex:uq_nutrient_food_fingerprint"`
	RawPayload  datatypes.JSON // snapshot of the original API object, for audit
	UpdatedAt   time.Time      `gorm:"autoUpdateTime:false"`
}

func (NutrientFood) TableName() string { return "nutrient_food" }

// AltMeasureSeqSentinel stands in for a missing sequence number so the
// composite key (food_id, measure, seq_key) stays non-null.
const AltMeasureSeqSentinel = -1

// NutrientAltMeasure is an alternate serving description for a nutrient
// record. Upserts on the composite key rewrite quantity and weight only.
type NutrientAltMeasure struct {
	FoodID        uint   `gorm:"column:food_id;primaryKey;autoIncrement:false"`
	Measure       string `gorm:"primaryKey;not null"`
	SeqKey        int    `gorm:"column:seq_key;primaryKey;autoIncrement:false"`
	Seq           *int
	Qty           *float64
	ServingWeight *float64
}

func (NutrientAltMeasure) TableName() string { return "nutrient_alt_measure" }

// NutrientValue is one named nutrient attribute and its numeric value,
// keyed by (food_id, attr_id). Upserts rewrite the value only.
type NutrientValue struct {
	FoodID uint `gorm:"column:food_id;primaryKey;autoIncrement:false"`
	AttrID int  `gorm:"column:attr_id;primaryKey;autoIncrement:false"`
	Value  *float64
}

func (NutrientValue) TableName() string { return "nutrient_value" }

// All returns every model the pipeline persists, in migration order.
func All() []interface{} {
	return []interface{}{
		&CommonFood{},
		&NutrientFood{},
		&NutrientAltMeasure{},
		&NutrientValue{},
		&CommonNutrientMap{},
	}
}
