package photo

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the geo index over stored images.
type Repository interface {
	Create(ctx context.Context, rec *ImageRecord) error
	GetBySignature(ctx context.Context, signature string) (*ImageRecord, error)
	DeleteBySignature(ctx context.Context, signature string) error
	RangeQuery(ctx context.Context, box BoundingBox) iter.Seq2[*ImageRecord, error]
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rec *ImageRecord) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicateSignature
	}
	return err
}

func (r *repository) GetBySignature(ctx context.Context, signature string) (*ImageRecord, error) {
	var rec ImageRecord
	err := r.db.WithContext(ctx).Where("signature = ?", signature).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) DeleteBySignature(ctx context.Context, signature string) error {
	res := r.db.WithContext(ctx).Where("signature = ?", signature).Delete(&ImageRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RangeQuery streams every record in the box's hemisphere pair whose degrees,
// minutes and seconds each fall, independently, within the box's min/max for
// that field. This is not an angular comparison: 1°59'59" is outside
// [1°0'0", 1°30'0"] because 59 > 30 minutes, and a box spanning a degree
// boundary only matches minutes inside both corners' minute range.
// Records are yielded in signature order.
func (r *repository) RangeQuery(ctx context.Context, box BoundingBox) iter.Seq2[*ImageRecord, error] {
	return func(yield func(*ImageRecord, error) bool) {
		rows, err := r.db.WithContext(ctx).Model(&ImageRecord{}).
			Where("lat_ref = ? AND lon_ref = ?", box.LatRef, box.LonRef).
			Where("lat_degrees >= ? AND lat_degrees <= ?", box.MinLat.Degrees, box.MaxLat.Degrees).
			Where("lat_minutes >= ? AND lat_minutes <= ?", box.MinLat.Minutes, box.MaxLat.Minutes).
			Where("lat_seconds >= ? AND lat_seconds <= ?", box.MinLat.Seconds, box.MaxLat.Seconds).
			Where("lon_degrees >= ? AND lon_degrees <= ?", box.MinLon.Degrees, box.MaxLon.Degrees).
			Where("lon_minutes >= ? AND lon_minutes <= ?", box.MinLon.Minutes, box.MaxLon.Minutes).
			Where("lon_seconds >= ? AND lon_seconds <= ?", box.MinLon.Seconds, box.MaxLon.Seconds).
			Order("signature").
			Rows()
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var rec ImageRecord
			if err := r.db.ScanRows(rows, &rec); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ImageRecord{}).Count(&n).Error
	return n, err
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
