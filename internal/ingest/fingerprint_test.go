package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutridex/backend/internal/nutrition"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func i64Ptr(i int64) *int64     { return &i }
func intPtr(i int) *int         { return &i }
func boolPtr(b bool) *bool      { return &b }

func sampleFood() nutrition.Food {
	return nutrition.Food{
		FoodName:    strPtr("oats"),
		BrandName:   strPtr("Quaker"),
		ServingQty:  f64Ptr(2),
		ServingUnit: strPtr("cup"),
		UPC:         strPtr("030000010204"),
		NdbNo:       i64Ptr(8120),
		NfCalories:  f64Ptr(607.1),
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	f := sampleFood()
	assert.Equal(t, Fingerprint(f), Fingerprint(f))
}

func TestFingerprintNormalization(t *testing.T) {
	a := sampleFood()
	b := sampleFood()
	b.FoodName = strPtr("  OATS ")
	b.BrandName = strPtr("quaker")

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintIgnoresNonKeyFields(t *testing.T) {
	a := sampleFood()
	b := sampleFood()
	b.NfCalories = f64Ptr(9999)
	b.NfProtein = f64Ptr(50)
	b.Photo = &nutrition.Photo{Thumb: strPtr("https://img.example/x.jpg")}
	b.ConsumedAt = nil

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintChangesWithKeyFields(t *testing.T) {
	base := sampleFood()

	variants := []nutrition.Food{}
	for _, mutate := range []func(*nutrition.Food){
		func(f *nutrition.Food) { f.FoodName = strPtr("rolled oats") },
		func(f *nutrition.Food) { f.BrandName = nil },
		func(f *nutrition.Food) { f.ServingUnit = strPtr("g") },
		func(f *nutrition.Food) { f.ServingQty = f64Ptr(1) },
		func(f *nutrition.Food) { f.UPC = strPtr("000000000000") },
		func(f *nutrition.Food) { f.NdbNo = i64Ptr(9999) },
	} {
		f := sampleFood()
		mutate(&f)
		variants = append(variants, f)
	}

	for i, v := range variants {
		assert.NotEqual(t, Fingerprint(base), Fingerprint(v), "variant %d should change the digest", i)
	}
}

func TestFingerprintAbsentFieldsValid(t *testing.T) {
	digest := Fingerprint(nutrition.Food{})
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, Fingerprint(nutrition.Food{}))
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	// Content shifted across adjacent fields must not collide.
	a := nutrition.Food{FoodName: strPtr("ab"), BrandName: strPtr("")}
	b := nutrition.Food{FoodName: strPtr("a"), BrandName: strPtr("b")}

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
