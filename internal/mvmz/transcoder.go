package mvmz

import (
	"io"
	"path"
	"strings"

	"reliquary/internal/assets"
	"reliquary/internal/fileset"
)

// HeaderLen is the size of the proprietary header prepended to every
// encrypted file. It is dropped outright, never decrypted.
const HeaderLen = 16

// extRemap translates encrypted media extensions (MV's rpgmv* family and
// MZ's trailing-underscore family) to the true media extension.
var extRemap = map[string]string{
	".rpgmvp": ".png",
	".rpgmvo": ".ogg",
	".rpgmvm": ".m4a",
	".png_":   ".png",
	".ogg_":   ".ogg",
	".m4a_":   ".m4a",
}

// IsEncryptedExt reports whether ext names an encrypted media file.
func IsEncryptedExt(ext string) bool {
	_, ok := extRemap[strings.ToLower(ext)]
	return ok
}

// Decrypt strips the proprietary header and XORs the first
// min(KeyLen, remaining) bytes against key, leaving everything beyond
// that offset untouched. The input slice is not modified.
func Decrypt(data []byte, key [KeyLen]byte) []byte {
	if len(data) <= HeaderLen {
		return []byte{}
	}
	body := make([]byte, len(data)-HeaderLen)
	copy(body, data[HeaderLen:])
	n := len(body)
	if n > KeyLen {
		n = KeyLen
	}
	for i := 0; i < n; i++ {
		body[i] ^= key[i]
	}
	return body
}

// Stream walks a file set, transcoding encrypted media and passing other
// files through with canonical paths. Encrypted files encountered before
// a key is available are skipped unless they are PNGs, which trigger
// known-plaintext recovery for themselves and every later file.
type Stream struct {
	set       *fileset.Set
	keys      *KeyState
	assetRoot string
	paths     []string
	index     int
	skipped   int
}

// NewStream builds a transcoding stream over the snapshot. keys is owned
// by the caller; resolution progress is visible to it.
func NewStream(set *fileset.Set, keys *KeyState, assetRoot string) *Stream {
	return &Stream{set: set, keys: keys, assetRoot: assetRoot, paths: set.Paths()}
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

		ext := path.Ext(p)
		target, encrypted := extRemap[ext]
		if !encrypted {
			canonical := assets.NormalizePath(p, s.assetRoot)
			return assets.Asset{
				Path:    canonical,
				Content: data,
				MIME:    assets.MIMEForPath(canonical),
			}, nil
		}

		key, ok := s.keys.Key()
		if !ok && target == ".png" && len(data) > HeaderLen {
			if s.keys.RecoverFromPNG(data[HeaderLen:]) {
				key, ok = s.keys.Key()
			}
		}
		if !ok {
			s.skipped++
			continue
		}

		canonical := assets.ReplaceExt(assets.NormalizePath(p, s.assetRoot), target)
		return assets.Asset{
			Path:    canonical,
			Content: Decrypt(data, key),
			MIME:    assets.MIMEForPath(canonical),
		}, nil
	}
	return assets.Asset{}, io.EOF
}

func (s *Stream) Total() int { return len(s.paths) }

func (s *Stream) Skipped() int { return s.skipped }
