// Package xyz handles RPG Maker 2003 distributions: a passthrough over
// the fixed asset directory layout plus conversion of the legacy XYZ
// indexed-image format to PNG.
package xyz

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"reliquary/internal/assets"
	"reliquary/internal/binread"
	"reliquary/internal/fileset"
)

var magic = []byte("XYZ1")

const paletteSize = 768 // 256 RGB triplets

// assetDirs is the standard 2003 project layout; only files under these
// directories are treated as assets.
var assetDirs = map[string]struct{}{
	"backdrop":      {},
	"battle":        {},
	"battle2":       {},
	"battlecharset": {},
	"battleweapon":  {},
	"charset":       {},
	"chipset":       {},
	"faceset":       {},
	"frame":         {},
	"gameover":      {},
	"monster":       {},
	"movie":         {},
	"music":         {},
	"panorama":      {},
	"picture":       {},
	"sound":         {},
	"system":        {},
	"system2":       {},
	"title":         {},
}

// Convert rasterizes an XYZ image: 4-byte magic, u16 width and height, a
// zlib-deflated body holding a 768-byte RGB palette followed by one
// palette index per pixel. Alpha is forced opaque.
func Convert(data []byte) ([]byte, error) {
	cur := binread.New(data)
	head, err := cur.ReadBytes(4)
	if err != nil || !bytes.Equal(head, magic) {
		return nil, fmt.Errorf("not an XYZ image")
	}
	width, err := cur.ReadU16()
	if err != nil {
		return nil, err
	}
	height, err := cur.ReadU16()
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(cur.Peek(cur.Remaining())))
	if err != nil {
		return nil, fmt.Errorf("inflate body: %w", err)
	}
	defer zr.Close()
	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate body: %w", err)
	}

	pixels := int(width) * int(height)
	if len(body) != paletteSize+pixels {
		return nil, fmt.Errorf("body is %d bytes, want %d", len(body), paletteSize+pixels)
	}

	palette := body[:paletteSize]
	indices := body[paletteSize:]
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for i, idx := range indices {
		img.SetRGBA(i%int(width), i/int(width), color.RGBA{
			R: palette[int(idx)*3],
			G: palette[int(idx)*3+1],
			B: palette[int(idx)*3+2],
			A: 0xFF,
		})
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

// Stream passes through files under the standard asset directories and
// the database/map files, converting XYZ images along the way. A file
// that fails conversion is skipped, never aborting the batch.
type Stream struct {
	set     *fileset.Set
	paths   []string
	index   int
	skipped int
}

func NewStream(set *fileset.Set) *Stream {
	s := &Stream{set: set}
	for _, p := range set.Paths() {
		if wanted(p) {
			s.paths = append(s.paths, p)
		}
	}
	return s
}

func (s *Stream) Next() (assets.Asset, error) {
	for s.index < len(s.paths) {
		p := s.paths[s.index]
		s.index++
		data, err := s.set.Read(p)
		if err != nil {
			s.skipped++
			continue
		}
		if strings.HasSuffix(p, ".xyz") {
			converted, err := Convert(data)
			if err != nil {
				s.skipped++
				continue
			}
			target := assets.ReplaceExt(p, ".png")
			return assets.Asset{Path: target, Content: converted, MIME: "image/png"}, nil
		}
		return assets.Asset{Path: p, Content: data, MIME: assets.MIMEForPath(p)}, nil
	}
	return assets.Asset{}, io.EOF
}

func (s *Stream) Total() int { return len(s.paths) }

func (s *Stream) Skipped() int { return s.skipped }

func wanted(p string) bool {
	if p == "rpg_rt.ldb" || p == "rpg_rt.lmt" || strings.HasSuffix(p, ".lmu") {
		return true
	}
	dir, _, ok := strings.Cut(p, "/")
	if !ok {
		return false
	}
	_, allowed := assetDirs[dir]
	return allowed
}
