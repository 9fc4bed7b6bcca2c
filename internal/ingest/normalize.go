package ingest

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/nutridex/backend/internal/models"
	"github.com/nutridex/backend/internal/nutrition"
)

// NormalizedFood is a nutrient record flattened into the persisted row shape,
// together with the child rows still pending key validation. The writer
// applies the skip policy for children with missing keys.
type NormalizedFood struct {
	Record      models.NutrientFood
	AltMeasures []nutrition.AltMeasure
	Nutrients   []nutrition.FullNutrient
}

// NormalizeFood maps a nested API food object into the flat nutrient_food
// shape. All fields are optional and degrade to null; malformed or absent
// sub-objects never fail the mapping. The update timestamp is stamped here,
// at normalization time, so retried writes within one logical batch carry a
// consistent value.
func NormalizeFood(f nutrition.Food, now time.Time) NormalizedFood {
	rec := models.NutrientFood{
		UPC:        f.UPC,
		NdbNo:      f.NdbNo,
		NixBrandID: f.NixBrandID,
		NixItemID:  f.NixItemID,

		FoodName:           f.FoodName,
		BrandName:          f.BrandName,
		ServingQty:         f.ServingQty,
		ServingUnit:        f.ServingUnit,
		ServingWeightGrams: f.ServingWeightGrams,

		NfCalories:          f.NfCalories,
		NfTotalFat:          f.NfTotalFat,
		NfSaturatedFat:      f.NfSaturatedFat,
		NfCholesterol:       f.NfCholesterol,
		NfSodium:            f.NfSodium,
		NfTotalCarbohydrate: f.NfTotalCarbohydrate,
		NfDietaryFiber:      f.NfDietaryFiber,
		NfSugars:            f.NfSugars,
		NfProtein:           f.NfProtein,
		NfPotassium:         f.NfPotassium,
		NfP:                 f.NfP,

		ConsumedAt: f.ConsumedAt,
		MealType:   f.MealType,
		Source:     f.Source,

		Fingerprint: Fingerprint(f),
		RawPayload:  rawSnapshot(f),
		UpdatedAt:   now,
	}

	if f.Photo != nil {
		rec.PhotoThumbURL = f.Photo.Thumb
		rec.PhotoHighresURL = f.Photo.Highres
	}

	if f.Tags != nil {
		rec.TagItem = f.Tags.Item
		rec.TagMeasure = f.Tags.Measure
		rec.TagFoodGroup = f.Tags.FoodGroup
		if f.Tags.Quantity != nil {
			q := f.Tags.Quantity.Value
			rec.TagQuantity = &q
		}
		if f.Tags.TagID != nil {
			id := f.Tags.TagID.Value
			rec.TagID = &id
		}
	}

	if f.Metadata != nil {
		raw := f.Metadata.IsRawFood != nil && *f.Metadata.IsRawFood
		rec.IsRawFood = &raw
	}

	return NormalizedFood{
		Record:      rec,
		AltMeasures: f.AltMeasures,
		Nutrients:   f.FullNutrients,
	}
}

// NormalizeSearchItem maps an instant-search item into the common_food row
// shape. Returns nil when the item carries no usable tag identifier or no
// name at all; such items are dropped, they could never form a resolvable
// query.
func NormalizeSearchItem(item nutrition.SearchItem, now time.Time) *models.CommonFood {
	if item.TagID == nil {
		return nil
	}
	tagID, err := item.TagID.Int64()
	if err != nil {
		return nil
	}

	tagName := ""
	if item.TagName != nil && *item.TagName != "" {
		tagName = *item.TagName
	} else if item.FoodName != nil {
		tagName = *item.FoodName
	}
	if tagName == "" {
		return nil
	}

	row := &models.CommonFood{
		TagID:       tagID,
		TagName:     tagName,
		FoodName:    item.FoodName,
		ServingQty:  item.ServingQty,
		ServingUnit: item.ServingUnit,
		NfCalories:  item.NfCalories,
		Locale:      item.Locale,
		RawPayload:  rawSearchSnapshot(item),
		UpdatedAt:   now,
	}
	if item.Photo != nil {
		row.PhotoThumbURL = item.Photo.Thumb
	}
	return row
}

func rawSnapshot(f nutrition.Food) datatypes.JSON {
	if len(f.Raw) > 0 {
		return datatypes.JSON(f.Raw)
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func rawSearchSnapshot(item nutrition.SearchItem) datatypes.JSON {
	if len(item.Raw) > 0 {
		return datatypes.JSON(item.Raw)
	}
	data, err := json.Marshal(item)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
