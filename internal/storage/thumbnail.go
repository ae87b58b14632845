package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const DefaultThumbnailSize = 256

// ThumbnailName is the cached thumbnail's name for an original file.
func ThumbnailName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "_thumb.jpg"
}

// Thumbnail returns the name of a JPEG thumbnail of dir/name whose longest
// side is at most maxSide, creating and caching it next to the original on
// first use. Images already within bounds are re-encoded, never upscaled.
func Thumbnail(ctx context.Context, s Store, dir, name string, maxSide int) (string, error) {
	if maxSide <= 0 {
		maxSide = DefaultThumbnailSize
	}

	thumbName := ThumbnailName(name)
	exists, err := s.Exists(ctx, dir, thumbName)
	if err != nil {
		return "", err
	}
	if exists {
		return thumbName, nil
	}

	obj, err := s.Open(ctx, dir, name)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(obj)
	_ = obj.Close()
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleToFit(src, maxSide), &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := s.Put(ctx, dir, thumbName, buf.Bytes()); err != nil {
		return "", err
	}
	return thumbName, nil
}

func scaleToFit(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
