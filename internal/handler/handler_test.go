package handler

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storelocator/internal/middleware"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/config"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.APIKey{},
		&model.Brand{},
		&model.BrandMember{},
		&model.Place{},
	))
	return db
}

func testGeoConfig() *config.GeoConfig {
	return &config.GeoConfig{DefaultRadiusKm: 5, DefaultLimit: 20, MaxLimit: 100}
}

// newContext builds an Echo context carrying an optional JSON body.
func newContext(t *testing.T, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// asUser attaches a resolved session identity to the context, standing in
// for the dual-auth middleware.
func asUser(c echo.Context, userID string) {
	c.Set("auth", &middleware.AuthResult{UserID: userID, IsAPIKey: false})
}

// asAPIKeyUser attaches an API-key-resolved identity.
func asAPIKeyUser(c echo.Context, userID string) {
	c.Set("auth", &middleware.AuthResult{UserID: userID, IsAPIKey: true})
}

func setBrandParam(c echo.Context, brandID uint) {
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", brandID))
}

func setBrandMemberParams(c echo.Context, brandID uint, userID string) {
	c.SetParamNames("id", "userId")
	c.SetParamValues(fmt.Sprintf("%d", brandID), userID)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// seedBrand creates a brand with an owner membership and returns it.
func seedBrand(t *testing.T, db *gorm.DB, name, ownerID string) model.Brand {
	t.Helper()

	brand := model.Brand{Name: name, OwnerID: ownerID}
	require.NoError(t, db.Create(&brand).Error)
	require.NoError(t, db.Create(&model.BrandMember{
		BrandID: brand.ID,
		UserID:  ownerID,
		Role:    model.RoleOwner,
	}).Error)
	return brand
}

// seedMember adds a member with the given role to a brand.
func seedMember(t *testing.T, db *gorm.DB, brandID uint, userID, role string) {
	t.Helper()
	require.NoError(t, db.Create(&model.BrandMember{
		BrandID: brandID,
		UserID:  userID,
		Role:    role,
	}).Error)
}
