package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutridex/backend/internal/logger"
	"github.com/nutridex/backend/internal/models"
	"github.com/nutridex/backend/internal/nutrition"
)

type fakeResolver struct {
	foods map[string][]nutrition.Food
	errs  map[string]error
	calls []string
}

func (f *fakeResolver) NaturalNutrients(_ context.Context, query string) ([]nutrition.Food, error) {
	f.calls = append(f.calls, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.foods[query], nil
}

func seedTag(t *testing.T, db *gorm.DB, tagID int64, name string, updatedAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.CommonFood{
		TagID:     tagID,
		TagName:   name,
		UpdatedAt: updatedAt,
	}).Error)
}

func namedFood(name string) nutrition.Food {
	f := nutrition.Food{
		FoodName:   strPtr(name),
		NfCalories: f64Ptr(100),
	}
	f.FullNutrients = []nutrition.FullNutrient{{AttrID: intPtr(208), Value: f64Ptr(100)}}
	return f
}

func newTestDrainer(db *gorm.DB, api NaturalResolver, batchSize int) *Drainer {
	return NewDrainer(db, api, logger.NewNop(), batchSize, 0)
}

func TestDrainPartialFailureIsolation(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	seedTag(t, db, 1, "apple", now)
	seedTag(t, db, 2, "banana", now)
	seedTag(t, db, 3, "carrot", now)

	api := &fakeResolver{
		foods: map[string][]nutrition.Food{
			"apple":  {namedFood("apple")},
			"carrot": {namedFood("carrot"), namedFood("baby carrot")},
		},
		errs: map[string]error{
			"banana": errors.New("upstream timeout"),
		},
	}

	stats, err := newTestDrainer(db, api, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Skipped)

	var links []models.CommonNutrientMap
	require.NoError(t, db.Find(&links).Error)
	assert.Len(t, links, 3) // one for apple, two for carrot
	for _, link := range links {
		assert.NotEqual(t, int64(2), link.TagID)
	}

	// the failing tag left no nutrient records behind
	var count int64
	db.Model(&models.NutrientFood{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestDrainZeroResultsIsSkipNotError(t *testing.T) {
	db := setupTestDB(t)
	seedTag(t, db, 7, "unobtainium", time.Now().UTC())

	api := &fakeResolver{}
	stats, err := newTestDrainer(db, api, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Resolved)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Failed)

	var count int64
	db.Model(&models.CommonNutrientMap{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDrainTerminatesAndReevaluatesNextRun(t *testing.T) {
	db := setupTestDB(t)
	seedTag(t, db, 7, "mystery", time.Now().UTC())

	api := &fakeResolver{}
	drainer := newTestDrainer(db, api, 10)

	_, err := drainer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"mystery"}, api.calls)

	// the tag became resolvable between runs; a fresh run must pick it up
	api.foods = map[string][]nutrition.Food{"mystery": {namedFood("mystery")}}
	stats, err := drainer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, []string{"mystery", "mystery"}, api.calls)
}

func TestDrainFailingTagsNotReselectedWithinRun(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	api := &fakeResolver{errs: map[string]error{}}
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		seedTag(t, db, int64(i+1), name, now.Add(time.Duration(i)*time.Minute))
		api.errs[name] = errors.New("upstream down")
	}
	// one tag resolves; the rest keep failing and stay in the backlog
	delete(api.errs, "c")
	api.foods = map[string][]nutrition.Food{"c": {namedFood("c")}}

	// batchSize smaller than the backlog forces repeated selections while
	// the failed tags are still unlinked
	stats, err := newTestDrainer(db, api, 2).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 4, stats.Failed)

	assert.Len(t, api.calls, 5)
	seen := make(map[string]bool)
	for _, q := range api.calls {
		assert.False(t, seen[q], "tag %q queried twice in one run", q)
		seen[q] = true
	}
}

func TestDrainBatchesUntilBacklogEmpty(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	api := &fakeResolver{foods: map[string][]nutrition.Food{}}
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		seedTag(t, db, int64(i+1), name, now.Add(time.Duration(i)*time.Minute))
		api.foods[name] = []nutrition.Food{namedFood(name)}
	}

	stats, err := newTestDrainer(db, api, 2).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Resolved)
	assert.Len(t, api.calls, 5)

	var remaining []models.CommonFood
	err = db.Table("common_food AS cf").
		Joins("LEFT JOIN common_to_nutrient_map m ON m.tag_id = cf.tag_id").
		Where("m.tag_id IS NULL").
		Scan(&remaining).Error
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDrainPrioritizesFreshTags(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	seedTag(t, db, 1, "stale", now.Add(-time.Hour))
	seedTag(t, db, 2, "fresh", now)

	api := &fakeResolver{foods: map[string][]nutrition.Food{
		"stale": {namedFood("stale")},
		"fresh": {namedFood("fresh")},
	}}

	_, err := newTestDrainer(db, api, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "stale"}, api.calls)
}

func TestDrainLinkageInsertIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	seedTag(t, db, 1, "apple", now)
	seedTag(t, db, 2, "green apple", now)

	// both tags resolve to the same food, so both link to one record
	api := &fakeResolver{foods: map[string][]nutrition.Food{
		"apple":       {namedFood("apple")},
		"green apple": {namedFood("apple")},
	}}

	stats, err := newTestDrainer(db, api, 10).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Resolved)

	var foodCount, linkCount int64
	db.Model(&models.NutrientFood{}).Count(&foodCount)
	db.Model(&models.CommonNutrientMap{}).Count(&linkCount)
	assert.Equal(t, int64(1), foodCount)
	assert.Equal(t, int64(2), linkCount)
}

func TestDrainStopsOnContextCancel(t *testing.T) {
	db := setupTestDB(t)
	seedTag(t, db, 1, "apple", time.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &fakeResolver{}
	_, err := newTestDrainer(db, api, 10).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.calls)
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		tag  models.CommonFood
		want string
	}{
		{
			name: "quantity and unit present",
			tag:  models.CommonFood{TagName: "oats", ServingQty: f64Ptr(2), ServingUnit: strPtr("cup")},
			want: "2 cup oats",
		},
		{
			name: "quantity and unit absent",
			tag:  models.CommonFood{TagName: "oats"},
			want: "oats",
		},
		{
			name: "unit absent",
			tag:  models.CommonFood{TagName: "oats", ServingQty: f64Ptr(2)},
			want: "oats",
		},
		{
			name: "fractional quantity",
			tag:  models.CommonFood{TagName: "milk", ServingQty: f64Ptr(0.5), ServingUnit: strPtr("cup")},
			want: "0.5 cup milk",
		},
		{
			name: "tag name falls back to food name",
			tag:  models.CommonFood{FoodName: strPtr("greek yogurt")},
			want: "greek yogurt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.tag))
		})
	}
}
