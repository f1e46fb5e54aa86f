package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storelocator/internal/model"
)

func TestBrandPlaceCreate(t *testing.T) {
	db := setupDB(t)
	h := NewBrandPlaceHandler(db, testGeoConfig())

	brand := seedBrand(t, db, "Chain", "owner_1")
	seedMember(t, db, brand.ID, "member_1", model.RoleMember)

	c, rec := newContext(t, http.MethodPost, "/brands/1/places", map[string]interface{}{
		"name": "Branch A",
		"lat":  12.9716,
		"lng":  77.5946,
	})
	asUser(c, "member_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Place
	decodeBody(t, rec, &created)
	require.NotNil(t, created.BrandID)
	assert.Equal(t, brand.ID, *created.BrandID)
	assert.Nil(t, created.UserID)
}

func TestBrandPlaceCreateForbiddenForNonMember(t *testing.T) {
	db := setupDB(t)
	h := NewBrandPlaceHandler(db, testGeoConfig())

	brand := seedBrand(t, db, "Chain", "owner_1")

	c, rec := newContext(t, http.MethodPost, "/brands/1/places", map[string]interface{}{
		"name": "Branch A",
		"lat":  12.9716,
		"lng":  77.5946,
	})
	asUser(c, "stranger")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBrandPlaceCreateAllowsDuplicateCoordinates(t *testing.T) {
	db := setupDB(t)
	h := NewBrandPlaceHandler(db, testGeoConfig())

	brand := seedBrand(t, db, "Chain", "owner_1")
	body := map[string]interface{}{"name": "Kiosk", "lat": 12.9716, "lng": 77.5946}

	for i := 0; i < 2; i++ {
		c, rec := newContext(t, http.MethodPost, "/brands/1/places", body)
		asUser(c, "owner_1")
		setBrandParam(c, brand.ID)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	var count int64
	require.NoError(t, db.Model(&model.Place{}).Where("brand_id = ?", brand.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestBrandPlaceNearScopedToBrand(t *testing.T) {
	db := setupDB(t)
	h := NewBrandPlaceHandler(db, testGeoConfig())

	brand := seedBrand(t, db, "Chain", "owner_1")
	other := seedBrand(t, db, "Rival", "owner_2")

	inBrand := model.NewPlace("ours", "", "", "", 12.9716, 77.5946, model.BrandScope(brand.ID))
	require.NoError(t, db.Create(&inBrand).Error)
	inOther := model.NewPlace("theirs", "", "", "", 12.9716, 77.5946, model.BrandScope(other.ID))
	require.NoError(t, db.Create(&inOther).Error)
	personal := model.NewPlace("personal", "", "", "", 12.9716, 77.5946, model.PersonalScope("owner_1"))
	require.NoError(t, db.Create(&personal).Error)

	c, rec := newContext(t, http.MethodGet, "/brands/1/places/near?lat=12.9716&lng=77.5946", nil)
	asUser(c, "owner_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Near(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var results []PlaceWithDistance
	decodeBody(t, rec, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "ours", results[0].Name)
}

func TestBrandPlaceNearForbiddenForNonMember(t *testing.T) {
	db := setupDB(t)
	h := NewBrandPlaceHandler(db, testGeoConfig())

	brand := seedBrand(t, db, "Chain", "owner_1")

	c, rec := newContext(t, http.MethodGet, "/brands/1/places/near?lat=1&lng=2", nil)
	asUser(c, "stranger")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Near(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBrandPlaceNearMissingCoordinates(t *testing.T) {
	db := setupDB(t)
	h := NewBrandPlaceHandler(db, testGeoConfig())

	brand := seedBrand(t, db, "Chain", "owner_1")

	c, rec := newContext(t, http.MethodGet, "/brands/1/places/near", nil)
	asUser(c, "owner_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Near(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
