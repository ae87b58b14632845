package photo

// GeoQuery is the query string of GET /images. Refs are optional and passed
// through unchecked.
type GeoQuery struct {
	MinLat string `form:"min_lat" validate:"required"`
	MinLon string `form:"min_lon" validate:"required"`
	MaxLat string `form:"max_lat" validate:"required"`
	MaxLon string `form:"max_lon" validate:"required"`
	LatRef string `form:"lat_ref"`
	LonRef string `form:"lon_ref"`
}

type UploadResponse struct {
	Message    string   `json:"message"`
	Signatures []string `json:"signatures"`
}
