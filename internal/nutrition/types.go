package nutrition

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexString accepts JSON values that arrive as either a string or a number;
// the API is not consistent about scalar types for ids and quantities.
type FlexString struct {
	Value string
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = strconv.FormatFloat(num, 'f', -1, 64)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		f.Value = str
		return nil
	}

	return fmt.Errorf("invalid scalar format: %s", string(data))
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// Int64 parses the value as an integer identifier.
func (f FlexString) Int64() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(f.Value), 10, 64)
}

// Photo holds the image URLs attached to a food or search item.
type Photo struct {
	Thumb   *string `json:"thumb"`
	Highres *string `json:"highres"`
}

// FoodTags is the tag sub-object on a resolved food.
type FoodTags struct {
	Item      *string     `json:"item"`
	Measure   *string     `json:"measure"`
	Quantity  *FlexString `json:"quantity"`
	FoodGroup *int64      `json:"food_group"`
	TagID     *FlexString `json:"tag_id"`
}

// Metadata is the optional metadata sub-object on a resolved food.
type Metadata struct {
	IsRawFood *bool `json:"is_raw_food"`
}

// AltMeasure is an alternate serving entry on a resolved food.
type AltMeasure struct {
	ServingWeight *float64 `json:"serving_weight"`
	Measure       *string  `json:"measure"`
	Seq           *int     `json:"seq"`
	Qty           *float64 `json:"qty"`
}

// FullNutrient is one attribute/value pair from the full nutrient list.
type FullNutrient struct {
	AttrID *int     `json:"attr_id"`
	Value  *float64 `json:"value"`
}

// Food is one entry of the natural-nutrients response. Every field is
// optional; absent sub-objects stay nil and degrade to null columns.
type Food struct {
	FoodName           *string  `json:"food_name"`
	BrandName          *string  `json:"brand_name"`
	ServingQty         *float64 `json:"serving_qty"`
	ServingUnit        *string  `json:"serving_unit"`
	ServingWeightGrams *float64 `json:"serving_weight_grams"`

	NfCalories          *float64 `json:"nf_calories"`
	NfTotalFat          *float64 `json:"nf_total_fat"`
	NfSaturatedFat      *float64 `json:"nf_saturated_fat"`
	NfCholesterol       *float64 `json:"nf_cholesterol"`
	NfSodium            *float64 `json:"nf_sodium"`
	NfTotalCarbohydrate *float64 `json:"nf_total_carbohydrate"`
	NfDietaryFiber      *float64 `json:"nf_dietary_fiber"`
	NfSugars            *float64 `json:"nf_sugars"`
	NfProtein           *float64 `json:"nf_protein"`
	NfPotassium         *float64 `json:"nf_potassium"`
	NfP                 *float64 `json:"nf_p"`

	UPC        *string `json:"upc"`
	NdbNo      *int64  `json:"ndb_no"`
	NixBrandID *string `json:"nix_brand_id"`
	NixItemID  *string `json:"nix_item_id"`

	ConsumedAt *time.Time `json:"consumed_at"`
	MealType   *int       `json:"meal_type"`
	Source     *int       `json:"source"`

	Photo         *Photo         `json:"photo"`
	Tags          *FoodTags      `json:"tags"`
	Metadata      *Metadata      `json:"metadata"`
	AltMeasures   []AltMeasure   `json:"alt_measures"`
	FullNutrients []FullNutrient `json:"full_nutrients"`

	// Raw is the undecoded API object, kept for the audit column.
	Raw json.RawMessage `json:"-"`
}

// SearchItem is one entry of the instant-search "common" list.
type SearchItem struct {
	TagID       *FlexString `json:"tag_id"`
	TagName     *string     `json:"tag_name"`
	FoodName    *string     `json:"food_name"`
	ServingQty  *float64    `json:"serving_qty"`
	ServingUnit *string     `json:"serving_unit"`
	NfCalories  *float64    `json:"nf_calories"`
	Locale      *string     `json:"locale"`
	Photo       *Photo      `json:"photo"`

	Raw json.RawMessage `json:"-"`
}
