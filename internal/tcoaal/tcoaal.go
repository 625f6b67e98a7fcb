// Package tcoaal decodes the evolving-mask obfuscation used by the
// k9a-packaged engine. Each file's cipher is seeded from its own
// basename and the mask mutates with every ciphertext byte, so decoding
// is strictly sequential.
package tcoaal

import (
	"bytes"
	"io"
	"path"
	"strings"

	"reliquary/internal/assets"
	"reliquary/internal/fileset"
)

// Signature marks an obfuscated file. The byte after it declares how
// many leading bytes of the remainder are ciphertext; zero means all.
var Signature = []byte{'K', '9', 'A', 0x00, 0x01, 0x00}

// Mask is the one-byte cipher state. It evolves from the ciphertext, not
// the plaintext, which makes decoding order-dependent.
type Mask struct {
	state byte
}

// NewMask seeds the mask from the upper-cased file basename, extension
// stripped.
func NewMask(basename string) Mask {
	var m byte
	for _, c := range strings.ToUpper(basename) {
		m = m*2 ^ byte(c)
	}
	return Mask{state: m}
}

// DecryptByte recovers one plaintext byte and advances the mask using
// the ciphertext value.
func (m *Mask) DecryptByte(c byte) byte {
	p := c ^ m.state
	m.state = m.state<<1 ^ c
	return p
}

// IsEncrypted reports whether data starts with the obfuscation signature.
func IsEncrypted(data []byte) bool {
	return len(data) > len(Signature) && bytes.Equal(data[:len(Signature)], Signature)
}

// Decrypt strips the signature and length byte, then unmasks the
// declared number of leading bytes, leaving any trailing cleartext
// intact. Unencrypted input is returned as-is.
func Decrypt(name string, data []byte) []byte {
	if !IsEncrypted(data) {
		return data
	}
	declared := data[len(Signature)]
	body := make([]byte, len(data)-len(Signature)-1)
	copy(body, data[len(Signature)+1:])

	limit := len(body)
	if declared != 0 && int(declared) < limit {
		limit = int(declared)
	}
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	mask := NewMask(base)
	for i := 0; i < limit; i++ {
		body[i] = mask.DecryptByte(body[i])
	}
	return body
}

// extByDir maps the top-level asset directory to the true extension; the
// packer strips extensions before obfuscating, so the original name
// carries no type information.
var extByDir = map[string]string{
	"img":   ".png",
	"audio": ".ogg",
	"data":  ".json",
}

// TargetExt infers the decoded extension from a canonical (root-stripped)
// path. Unknown directories keep their current extension.
func TargetExt(canonical string) string {
	dir, _, ok := strings.Cut(canonical, "/")
	if !ok {
		return path.Ext(canonical)
	}
	if ext, mapped := extByDir[dir]; mapped {
		return ext
	}
	return path.Ext(canonical)
}

// Stream walks a file set, unmasking obfuscated files and passing
// everything else through with canonical paths.
type Stream struct {
	set       *fileset.Set
	assetRoot string
	paths     []string
	index     int
	skipped   int
}

func NewStream(set *fileset.Set, assetRoot string) *Stream {
	return &Stream{set: set, assetRoot: assetRoot, paths: set.Paths()}
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
		canonical := assets.NormalizePath(p, s.assetRoot)
		if IsEncrypted(data) {
			canonical = assets.ReplaceExt(canonical, TargetExt(canonical))
			return assets.Asset{
				Path:    canonical,
				Content: Decrypt(p, data),
				MIME:    assets.MIMEForPath(canonical),
			}, nil
		}
		return assets.Asset{
			Path:    canonical,
			Content: data,
			MIME:    assets.MIMEForPath(canonical),
		}, nil
	}
	return assets.Asset{}, io.EOF
}

func (s *Stream) Total() int { return len(s.paths) }

func (s *Stream) Skipped() int { return s.skipped }
