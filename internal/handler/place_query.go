package handler

import (
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storelocator/internal/geo"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/config"
	"gorm.io/gorm"
)

// PlaceWithDistance is a place annotated with its computed distance from the
// query point.
type PlaceWithDistance struct {
	model.Place
	DistanceMeters float64 `json:"distanceMeters"`
}

// placeRequest is the request body shared by both place creation routes.
// Lat/Lng are pointers so missing fields can be told apart from zero values.
type placeRequest struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	City    string   `json:"city"`
	State   string   `json:"state"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// validatePlaceRequest checks the declared shape and returns per-field errors.
func validatePlaceRequest(req *placeRequest) map[string]string {
	fields := map[string]string{}

	if req.Name == "" {
		fields["name"] = "name is required"
	}
	if req.Lat == nil {
		fields["lat"] = "lat is required"
	} else if *req.Lat < -90 || *req.Lat > 90 {
		fields["lat"] = "lat must be between -90 and 90"
	}
	if req.Lng == nil {
		fields["lng"] = "lng is required"
	} else if *req.Lng < -180 || *req.Lng > 180 {
		fields["lng"] = "lng must be between -180 and 180"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// nearParams holds the parsed parameters of a proximity query.
type nearParams struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
}

// parseNearParams reads lat/lng/radiusKm/limit from the query string,
// applying the configured defaults and the hard limit cap. ok is false when
// lat or lng is missing or not a number. An unparsable or non-positive limit
// falls back to the default.
func parseNearParams(c echo.Context, geoConf *config.GeoConfig) (nearParams, bool) {
	params := nearParams{
		RadiusKm: geoConf.DefaultRadiusKm,
		Limit:    geoConf.DefaultLimit,
	}

	lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if errLat != nil || errLng != nil {
		return params, false
	}
	params.Lat = lat
	params.Lng = lng

	if raw := c.QueryParam("radiusKm"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			params.RadiusKm = v
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			params.Limit = v
		}
	}
	if params.Limit > geoConf.MaxLimit {
		params.Limit = geoConf.MaxLimit
	}

	return params, true
}

// findNearbyPlaces runs the proximity query for one scope: a bounding-box
// prefilter in SQL, then exact haversine distances, nearest first, truncated
// to the limit.
func findNearbyPlaces(db *gorm.DB, scope model.PlaceScope, params nearParams) ([]PlaceWithDistance, error) {
	radiusMeters := params.RadiusKm * 1000
	box := geo.BoundingBoxAround(params.Lat, params.Lng, radiusMeters)

	query := scope.Filter(db.Model(&model.Place{})).
		Where("lat BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.FullLngScan {
		query = query.Where("lng BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	var places []model.Place
	if result := query.Find(&places); result.Error != nil {
		return nil, result.Error
	}

	results := make([]PlaceWithDistance, 0, len(places))
	for _, p := range places {
		distance := geo.Haversine(params.Lat, params.Lng, p.Lat, p.Lng)
		if distance > radiusMeters {
			continue
		}
		results = append(results, PlaceWithDistance{Place: p, DistanceMeters: distance})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})

	if len(results) > params.Limit {
		results = results[:params.Limit]
	}
	return results, nil
}
