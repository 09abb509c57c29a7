package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/internal/catalog"
	"github.com/uniarchive/photoarchive/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Image{}))
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type fixture struct {
	db     *gorm.DB
	repo   *catalog.Repo
	alice  models.User
	bob    models.User
	events models.Category
	sports models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		db:     db,
		repo:   catalog.NewRepo(db),
		alice:  models.User{Name: "Alice", Email: "alice@uni.edu", PasswordHash: "x", Role: models.RoleUser},
		bob:    models.User{Name: "Bob", Email: "bob@uni.edu", PasswordHash: "x", Role: models.RoleUser},
		events: models.Category{Name: "Events"},
		sports: models.Category{Name: "Sports"},
	}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)
	require.NoError(t, db.Create(&f.events).Error)
	require.NoError(t, db.Create(&f.sports).Error)
	return f
}

// addImage persists an image with an explicit creation time so ordering
// assertions stay deterministic.
func (f *fixture) addImage(t *testing.T, img models.Image, createdAt time.Time) models.Image {
	t.Helper()
	img.CreatedAt = createdAt
	if img.ImagePath == "" {
		img.ImagePath = "/uploads/images/" + img.Title + ".jpg"
	}
	if img.UploadedBy == nil {
		img.UploadedBy = &f.alice.ID
	}
	require.NoError(t, f.db.Create(&img).Error)
	return img
}

func (f *fixture) seedCatalog(t *testing.T) []models.Image {
	t.Helper()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	imgs := []models.Image{
		{Title: "Convocation 2020", CategoryID: &f.events.ID, Year: intPtr(2020),
			Keywords: strPtr("ceremony,graduation"), Department: strPtr("Engineering"),
			Location: strPtr("Main Hall")},
		{Title: "Annual Sports Meet", CategoryID: &f.sports.ID, Year: intPtr(2021),
			Keywords: strPtr("athletics"), Department: strPtr("Physical Education"),
			Location: strPtr("Stadium")},
		{Title: "Library Opening", CategoryID: &f.events.ID, Year: intPtr(2019),
			Keywords: strPtr("inauguration"), Department: strPtr("Library Science"),
			Location: strPtr("Central Library"), UploadedBy: &f.bob.ID},
		{Title: "Robotics Lab", Year: intPtr(2021),
			Keywords: strPtr("research,robots"), Department: strPtr("Engineering")},
	}
	out := make([]models.Image, 0, len(imgs))
	for i, img := range imgs {
		out = append(out, f.addImage(t, img, base.Add(time.Duration(i)*time.Hour)))
	}
	return out
}

func TestList_OrdersByRecency(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedCatalog(t)
	ctx := context.Background()

	page, err := f.repo.List(ctx, catalog.ListParams{})
	require.NoError(t, err)

	require.Len(t, page.Items, len(seeded))
	assert.Equal(t, int64(len(seeded)), page.Total)
	assert.Equal(t, 1, page.Pages)
	// Newest first.
	assert.Equal(t, "Robotics Lab", page.Items[0].Title)
	assert.Equal(t, "Convocation 2020", page.Items[len(page.Items)-1].Title)
}

func TestList_JoinsCategoryAndUploaderNames(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	page, err := f.repo.List(context.Background(), catalog.ListParams{})
	require.NoError(t, err)

	byTitle := map[string]catalog.ImageRow{}
	for _, row := range page.Items {
		byTitle[row.Title] = row
	}

	conv := byTitle["Convocation 2020"]
	require.NotNil(t, conv.CategoryName)
	assert.Equal(t, "Events", *conv.CategoryName)
	require.NotNil(t, conv.UploaderName)
	assert.Equal(t, "Alice", *conv.UploaderName)

	lab := byTitle["Robotics Lab"]
	assert.Nil(t, lab.CategoryName)
}

func TestList_Pagination(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	first, err := f.repo.List(ctx, catalog.ListParams{Page: 1, Limit: 3})
	require.NoError(t, err)
	second, err := f.repo.List(ctx, catalog.ListParams{Page: 2, Limit: 3})
	require.NoError(t, err)

	assert.Len(t, first.Items, 3)
	assert.Len(t, second.Items, 1)
	assert.Equal(t, int64(4), first.Total)
	assert.Equal(t, 2, first.Pages)
	assert.Equal(t, 2, second.Pages)

	// Out-of-range pages are empty but keep consistent metadata.
	third, err := f.repo.List(ctx, catalog.ListParams{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, third.Items)
	assert.Equal(t, int64(4), third.Total)
}

func TestList_DegenerateInputsFallBackToDefaults(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	page, err := f.repo.List(context.Background(), catalog.ListParams{Page: -2, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultPage, page.Page)
	assert.Equal(t, catalog.DefaultLimit, page.Limit)
	assert.Len(t, page.Items, 4)
}

func TestList_FilterWithoutQueryIsModeA(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	page, err := f.repo.List(context.Background(), catalog.ListParams{
		Query:      "",
		CategoryID: &f.events.ID,
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	for _, row := range page.Items {
		require.NotNil(t, row.CategoryID)
		assert.Equal(t, f.events.ID, *row.CategoryID)
	}
}

func TestList_ShortQueryDegradesToListing(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	// Two runes: below the minimum, so no text predicate applies and the
	// category filter alone decides the result.
	page, err := f.repo.List(context.Background(), catalog.ListParams{
		Query:      "zz",
		CategoryID: &f.events.ID,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestList_TextSearch(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	page, err := f.repo.List(context.Background(), catalog.ListParams{Query: "ceremony"})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Convocation 2020", page.Items[0].Title)
	assert.Equal(t, int64(1), page.Total)
}

func TestList_TextSearchKeepsRecencyOrdering(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	page, err := f.repo.List(context.Background(), catalog.ListParams{Query: "Engineering"})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "Robotics Lab", page.Items[0].Title)
	assert.Equal(t, "Convocation 2020", page.Items[1].Title)
}

func TestList_TextSearchCombinesWithFilters(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	page, err := f.repo.List(context.Background(), catalog.ListParams{
		Query: "Engineering",
		Year:  intPtr(2021),
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Robotics Lab", page.Items[0].Title)
}

func TestList_SubstringFiltersAreCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	page, err := f.repo.List(context.Background(), catalog.ListParams{Department: "engineer"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.repo.List(context.Background(), catalog.ListParams{Location: "library"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Library Opening", page.Items[0].Title)
}

func TestList_CountAgreesWithPredicate(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	// No matches: total and items must agree on emptiness.
	page, err := f.repo.List(ctx, catalog.ListParams{Query: "nonexistent-term"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Pages)

	// Matches spread over pages must sum to the total.
	var got int
	for p := 1; ; p++ {
		page, err := f.repo.List(ctx, catalog.ListParams{Department: "e", Page: p, Limit: 2})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), 2)
		got += len(page.Items)
		if p >= page.Pages {
			assert.EqualValues(t, page.Total, got)
			break
		}
	}
}

func TestFindByID(t *testing.T) {
	f := newFixture(t)
	imgs := f.seedCatalog(t)

	row, err := f.repo.FindByID(context.Background(), imgs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Convocation 2020", row.Title)
	require.NotNil(t, row.CategoryName)
	assert.Equal(t, "Events", *row.CategoryName)

	_, err = f.repo.FindByID(context.Background(), 9999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdate_PartialPatchLeavesOtherFieldsAlone(t *testing.T) {
	f := newFixture(t)
	img := f.addImage(t, models.Image{Title: "A", Year: intPtr(1990)}, time.Now())

	patch := catalog.ImagePatch{Location: catalog.Set(strPtr("X"))}
	updated, err := f.repo.Update(context.Background(), img.ID, patch)
	require.NoError(t, err)
	assert.True(t, updated)

	row, err := f.repo.FindByID(context.Background(), img.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", row.Title)
	require.NotNil(t, row.Year)
	assert.Equal(t, 1990, *row.Year)
	require.NotNil(t, row.Location)
	assert.Equal(t, "X", *row.Location)
}

func TestUpdate_ExplicitNullClearsColumn(t *testing.T) {
	f := newFixture(t)
	img := f.addImage(t, models.Image{Title: "A", CategoryID: &f.events.ID, Year: intPtr(1990)}, time.Now())

	patch := catalog.ImagePatch{CategoryID: catalog.Set[*uint](nil)}
	updated, err := f.repo.Update(context.Background(), img.ID, patch)
	require.NoError(t, err)
	assert.True(t, updated)

	row, err := f.repo.FindByID(context.Background(), img.ID)
	require.NoError(t, err)
	assert.Nil(t, row.CategoryID)
	require.NotNil(t, row.Year)
	assert.Equal(t, 1990, *row.Year)
}

func TestUpdate_EmptyPatchRejected(t *testing.T) {
	f := newFixture(t)
	img := f.addImage(t, models.Image{Title: "A"}, time.Now())

	_, err := f.repo.Update(context.Background(), img.ID, catalog.ImagePatch{})
	assert.True(t, apperr.IsValidation(err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	img := f.addImage(t, models.Image{Title: "A"}, time.Now())
	ctx := context.Background()

	deleted, err := f.repo.Delete(ctx, img.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.repo.Delete(ctx, img.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRelated(t *testing.T) {
	f := newFixture(t)
	base := time.Now()
	var anchor models.Image
	for i := 0; i < 12; i++ {
		img := f.addImage(t, models.Image{
			Title:      "Event shot",
			CategoryID: &f.events.ID,
		}, base.Add(time.Duration(i)*time.Minute))
		if i == 0 {
			anchor = img
		}
	}
	uncategorized := f.addImage(t, models.Image{Title: "Loose shot"}, base)
	ctx := context.Background()

	rows, err := f.repo.Related(ctx, anchor.ID, 0)
	require.NoError(t, err)
	assert.Len(t, rows, catalog.DefaultRelatedLimit)
	for _, row := range rows {
		assert.NotEqual(t, anchor.ID, row.ID)
		require.NotNil(t, row.CategoryID)
		assert.Equal(t, f.events.ID, *row.CategoryID)
	}

	_, err = f.repo.Related(ctx, uncategorized.ID, 0)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.repo.Related(ctx, 9999, 0)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDistinct(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	opts, err := f.repo.Distinct(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2021, 2020, 2019}, opts.Years)
	assert.Equal(t, []string{"Engineering", "Library Science", "Physical Education"}, opts.Departments)
	assert.Equal(t, []string{"Central Library", "Main Hall", "Stadium"}, opts.Locations)
}

func TestDeleteCategory_DetachesImages(t *testing.T) {
	f := newFixture(t)
	img := f.addImage(t, models.Image{Title: "Convocation 2020", CategoryID: &f.events.ID}, time.Now())
	ctx := context.Background()

	require.NoError(t, f.repo.DeleteCategory(ctx, f.events.ID))

	row, err := f.repo.FindByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Nil(t, row.CategoryID)
	assert.Nil(t, row.CategoryName)

	err = f.repo.DeleteCategory(ctx, f.events.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cats, err := f.repo.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Events", cats[0].Name)
	assert.Equal(t, "Sports", cats[1].Name)

	_, err = f.repo.CreateCategory(ctx, "  ", nil)
	assert.True(t, apperr.IsValidation(err))

	cat, err := f.repo.CreateCategory(ctx, "Archives", strPtr("old photographs"))
	require.NoError(t, err)
	require.NotZero(t, cat.ID)

	require.NoError(t, f.repo.UpdateCategory(ctx, cat.ID, "Archive", nil))
	got, err := f.repo.CategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Archive", got.Name)
	assert.Nil(t, got.Description)

	err = f.repo.UpdateCategory(ctx, 9999, "Nope", nil)
	assert.True(t, apperr.IsNotFound(err))
}
