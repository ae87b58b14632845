// Package testutil builds JPEG fixtures carrying EXIF timestamp and GPS tags.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"sort"
	"testing"
)

// EXIF describes the tags written into a fixture. Zero values omit the tag.
type EXIF struct {
	DateTime string
	LatRef   string
	Lat      [][2]uint32
	LonRef   string
	Lon      [][2]uint32
}

// Fixture returns a complete EXIF description for dateTime at the given
// coordinates, each given as [deg, min, sec*1000].
func Fixture(dateTime, latRef string, lat [3]uint32, lonRef string, lon [3]uint32) *EXIF {
	return &EXIF{
		DateTime: dateTime,
		LatRef:   latRef,
		Lat:      [][2]uint32{{lat[0], 1}, {lat[1], 1}, {lat[2], 1000}},
		LonRef:   lonRef,
		Lon:      [][2]uint32{{lon[0], 1}, {lon[1], 1}, {lon[2], 1000}},
	}
}

// JPEG encodes a width x height image and splices an APP1 EXIF segment built
// from meta right after the SOI marker. A nil meta yields a plain JPEG.
func JPEG(t testing.TB, width, height int, meta *EXIF) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	raw := buf.Bytes()
	if meta == nil {
		return raw
	}

	payload := append([]byte("Exif\x00\x00"), tiffBlock(meta)...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(raw)+len(seg))
	out = append(out, raw[:2]...)
	out = append(out, seg...)
	out = append(out, raw[2:]...)
	return out
}

const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5

	tagDateTime  = 0x0132
	tagGPSIFD    = 0x8825
	tagLatRef    = 0x0001
	tagLat       = 0x0002
	tagLonRef    = 0x0003
	tagLon       = 0x0004
	tiffHeadSize = 8
)

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func tiffBlock(meta *EXIF) []byte {
	var gps []entry
	if meta.LatRef != "" {
		gps = append(gps, asciiEntry(tagLatRef, meta.LatRef))
	}
	if len(meta.Lat) > 0 {
		gps = append(gps, rationalEntry(tagLat, meta.Lat))
	}
	if meta.LonRef != "" {
		gps = append(gps, asciiEntry(tagLonRef, meta.LonRef))
	}
	if len(meta.Lon) > 0 {
		gps = append(gps, rationalEntry(tagLon, meta.Lon))
	}

	var ifd0Entries []entry
	if meta.DateTime != "" {
		ifd0Entries = append(ifd0Entries, asciiEntry(tagDateTime, meta.DateTime))
	}
	if len(gps) > 0 {
		ifd0Entries = append(ifd0Entries, longEntry(tagGPSIFD, 0))
	}

	ifd0 := ifdBlock(tiffHeadSize, ifd0Entries)
	gpsOffset := uint32(tiffHeadSize + len(ifd0))
	if len(gps) > 0 {
		ifd0Entries[len(ifd0Entries)-1] = longEntry(tagGPSIFD, gpsOffset)
		ifd0 = ifdBlock(tiffHeadSize, ifd0Entries)
	}

	out := []byte{'I', 'I', 42, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(out[4:], tiffHeadSize)
	out = append(out, ifd0...)
	if len(gps) > 0 {
		out = append(out, ifdBlock(gpsOffset, gps)...)
	}
	return out
}

func ifdBlock(offset uint32, entries []entry) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	dataOffset := offset + 2 + 12*uint32(len(entries)) + 4
	var head, data bytes.Buffer
	le := binary.LittleEndian

	_ = binary.Write(&head, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&head, le, e.tag)
		_ = binary.Write(&head, le, e.typ)
		_ = binary.Write(&head, le, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			head.Write(inline)
			continue
		}
		_ = binary.Write(&head, le, dataOffset+uint32(data.Len()))
		data.Write(e.data)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(&head, le, uint32(0))

	return append(head.Bytes(), data.Bytes()...)
}

func asciiEntry(tag uint16, s string) entry {
	b := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func longEntry(tag uint16, v uint32) entry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return entry{tag: tag, typ: typeLong, count: 1, data: b}
}

func rationalEntry(tag uint16, values [][2]uint32) entry {
	b := make([]byte, 0, 8*len(values))
	for _, v := range values {
		b = binary.LittleEndian.AppendUint32(b, v[0])
		b = binary.LittleEndian.AppendUint32(b, v[1])
	}
	return entry{tag: tag, typ: typeRational, count: uint32(len(values)), data: b}
}
