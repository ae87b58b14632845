package photo

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"path"

	"geoimages/internal/pkg/coord"
	"geoimages/internal/storage"
)

// ArchiveDir is the folder every matched image is placed under in a query archive.
const ArchiveDir = "images_archive"

// ParseBoundingBox builds a box from four "D-M-S" corners. latRef and lonRef
// are taken as given: they are compared verbatim against stored refs and are
// not checked against N/S/E/W, so an unknown ref simply matches nothing.
func ParseBoundingBox(minLat, minLon, maxLat, maxLon, latRef, lonRef string) (BoundingBox, error) {
	var box BoundingBox
	corners := []struct {
		name string
		in   string
		out  *coord.DMS
	}{
		{"min_lat", minLat, &box.MinLat},
		{"min_lon", minLon, &box.MinLon},
		{"max_lat", maxLat, &box.MaxLat},
		{"max_lon", maxLon, &box.MaxLon},
	}

	for _, c := range corners {
		d, err := coord.Parse(c.in)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.out = d
	}

	box.LatRef = latRef
	box.LonRef = lonRef
	return box, nil
}

// CollectMatches streams the index records inside box.
func (s *Service) CollectMatches(ctx context.Context, box BoundingBox) iter.Seq2[*ImageRecord, error] {
	return s.repo.RangeQuery(ctx, box)
}

// BuildArchive zips the backing file of every record into ArchiveDir and
// returns the archive bytes with the number of entries. A record whose file is
// missing aborts the whole archive with a *MissingBackingFileError.
func (s *Service) BuildArchive(ctx context.Context, records iter.Seq2[*ImageRecord, error]) ([]byte, int, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	n := 0
	for rec, err := range records {
		if err != nil {
			return nil, 0, err
		}
		if err := s.addToArchive(ctx, zw, rec); err != nil {
			return nil, 0, err
		}
		n++
	}

	if err := zw.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), n, nil
}

func (s *Service) addToArchive(ctx context.Context, zw *zip.Writer, rec *ImageRecord) error {
	obj, err := s.store.Open(ctx, rec.StorageDir, rec.Filename)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return &MissingBackingFileError{Signature: rec.Signature, Path: path.Join(rec.StorageDir, rec.Filename)}
	}
	if err != nil {
		return err
	}
	defer obj.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     path.Join(ArchiveDir, rec.Filename),
		Method:   zip.Store,
		Modified: obj.ModTime,
	})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, obj); err != nil {
		return fmt.Errorf("failed to archive %s: %w", rec.Signature, err)
	}
	return nil
}

// Archive runs the bounding-box query and archives every match.
func (s *Service) Archive(ctx context.Context, box BoundingBox) ([]byte, int, error) {
	data, n, err := s.BuildArchive(ctx, s.CollectMatches(ctx, box))
	if err != nil {
		return nil, 0, err
	}

	s.logger.Info("geo query archived",
		slog.String("lat", fmt.Sprintf("%s..%s %s", box.MinLat, box.MaxLat, box.LatRef)),
		slog.String("lon", fmt.Sprintf("%s..%s %s", box.MinLon, box.MaxLon, box.LonRef)),
		slog.Int("matches", n),
		slog.Int("bytes", len(data)),
	)
	return data, n, nil
}
