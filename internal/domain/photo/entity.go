package photo

import (
	"time"

	"geoimages/internal/pkg/coord"
)

// ImageRecord is the index row for one stored image. Coordinates are kept as
// non-negative DMS magnitudes; the hemisphere lives only in LatRef/LonRef.
type ImageRecord struct {
	ID         int64     `gorm:"column:id;primaryKey" json:"-"`
	Signature  string    `gorm:"column:signature;size:64;uniqueIndex;not null" json:"signature"`
	Filename   string    `gorm:"column:filename;not null" json:"filename"`
	StorageDir string    `gorm:"column:storage_dir;not null" json:"storage_dir"`
	LatDegrees int       `gorm:"column:lat_degrees;index" json:"lat_degrees"`
	LatMinutes int       `gorm:"column:lat_minutes;index" json:"lat_minutes"`
	LatSeconds float64   `gorm:"column:lat_seconds;index" json:"lat_seconds"`
	LatRef     string    `gorm:"column:lat_ref;size:8;index" json:"lat_ref"`
	LonDegrees int       `gorm:"column:lon_degrees;index" json:"lon_degrees"`
	LonMinutes int       `gorm:"column:lon_minutes;index" json:"lon_minutes"`
	LonSeconds float64   `gorm:"column:lon_seconds;index" json:"lon_seconds"`
	LonRef     string    `gorm:"column:lon_ref;size:8;index" json:"lon_ref"`
	Checksum   string    `gorm:"column:checksum;size:64" json:"checksum"`
	Size       int64     `gorm:"column:size" json:"size"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ImageRecord) TableName() string { return "images" }

func (r *ImageRecord) Latitude() coord.DMS {
	return coord.DMS{Degrees: r.LatDegrees, Minutes: r.LatMinutes, Seconds: r.LatSeconds}
}

func (r *ImageRecord) Longitude() coord.DMS {
	return coord.DMS{Degrees: r.LonDegrees, Minutes: r.LonMinutes, Seconds: r.LonSeconds}
}

func (r *ImageRecord) setLatitude(d coord.DMS) {
	r.LatDegrees, r.LatMinutes, r.LatSeconds = d.Degrees, d.Minutes, d.Seconds
}

func (r *ImageRecord) setLongitude(d coord.DMS) {
	r.LonDegrees, r.LonMinutes, r.LonSeconds = d.Degrees, d.Minutes, d.Seconds
}

// BoundingBox selects records by independent per-field DMS ranges within one
// hemisphere pair. See Repository.RangeQuery.
type BoundingBox struct {
	MinLat coord.DMS
	MinLon coord.DMS
	MaxLat coord.DMS
	MaxLon coord.DMS
	LatRef string
	LonRef string
}
