package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GeoPoint is a GeoJSON Point stored as jsonb. Coordinates are
// [longitude, latitude] — the inverse of the flat lat/lng columns.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a Point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Value implements driver.Valuer, serializing the point as JSON
func (p GeoPoint) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *GeoPoint) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = GeoPoint{}
		return nil
	}
	return fmt.Errorf("unsupported type %T for GeoPoint", value)
}

// Place is a point-of-interest record scoped to either a brand or, on the
// legacy path, a single user. Location mirrors Lat/Lng and is maintained by
// the write path; nothing else keeps the two in sync.
type Place struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Address   string    `json:"address,omitempty" gorm:"type:varchar(300)"`
	City      string    `json:"city,omitempty" gorm:"type:varchar(100)"`
	State     string    `json:"state,omitempty" gorm:"type:varchar(100)"`
	Lat       float64   `json:"lat" gorm:"not null"`
	Lng       float64   `json:"lng" gorm:"not null"`
	Location  GeoPoint  `json:"location" gorm:"type:jsonb"`
	BrandID   *uint     `json:"brandId,omitempty" gorm:"index"`
	UserID    *string   `json:"userId,omitempty" gorm:"type:varchar(100);index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaceScope selects the single dimension a place belongs to, chosen at
// construction time so the two nullable columns can never both be set.
type PlaceScope struct {
	brandID *uint
	userID  *string
}

// BrandScope scopes a place to a brand.
func BrandScope(brandID uint) PlaceScope {
	return PlaceScope{brandID: &brandID}
}

// PersonalScope scopes a place to a legacy per-user owner.
func PersonalScope(userID string) PlaceScope {
	return PlaceScope{userID: &userID}
}

// Apply sets the scope columns on a place.
func (s PlaceScope) Apply(p *Place) {
	p.BrandID = s.brandID
	p.UserID = s.userID
}

// Filter restricts a query to places within this scope.
func (s PlaceScope) Filter(db *gorm.DB) *gorm.DB {
	if s.brandID != nil {
		return db.Where("brand_id = ?", *s.brandID)
	}
	if s.userID != nil {
		return db.Where("user_id = ?", *s.userID)
	}
	return db
}

// NewPlace builds a place with its denormalized geometry. The geometry takes
// (lng, lat) order per GeoJSON.
func NewPlace(name, address, city, state string, lat, lng float64, scope PlaceScope) Place {
	p := Place{
		Name:     name,
		Address:  address,
		City:     city,
		State:    state,
		Lat:      lat,
		Lng:      lng,
		Location: NewGeoPoint(lng, lat),
	}
	scope.Apply(&p)
	return p
}
