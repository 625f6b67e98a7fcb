// Package rgss decodes RGSSAD v1 and RGSS3A v3 packed archives. Both
// containers share one stream cipher: successive 32-bit keys produced by
// a linear recurrence, XORed against the ciphertext.
package rgss

import "encoding/binary"

// V1Seed is the fixed initial key for version 1 directory tables.
const V1Seed uint32 = 0xDEADCAFE

// KeyStream holds the evolving 32-bit cipher key. The zero value is not
// useful; seed it with V1Seed or a per-file key from a directory entry.
type KeyStream struct {
	key uint32
}

// NewKeyStream returns a stream seeded with key.
func NewKeyStream(key uint32) KeyStream {
	return KeyStream{key: key}
}

// Key reports the current key value.
func (s *KeyStream) Key() uint32 { return s.key }

// Advance steps the recurrence once.
func (s *KeyStream) Advance() {
	s.key = s.key*7 + 3
}

// DecryptU32 XORs v against the current key and advances once.
func (s *KeyStream) DecryptU32(v uint32) uint32 {
	r := v ^ s.key
	s.Advance()
	return r
}

// DecryptByte XORs b against the low 8 bits of the current key and
// advances once.
func (s *KeyStream) DecryptByte(b byte) byte {
	r := b ^ byte(s.key)
	s.Advance()
	return r
}

// DecryptBlocks decrypts data in place in 4-byte little-endian blocks,
// advancing the key once per block. The final partial block uses only as
// many key bytes as remain.
func (s *KeyStream) DecryptBlocks(data []byte) {
	var kb [4]byte
	for i := 0; i < len(data); i += 4 {
		binary.LittleEndian.PutUint32(kb[:], s.key)
		n := len(data) - i
		if n > 4 {
			n = 4
		}
		for j := 0; j < n; j++ {
			data[i+j] ^= kb[j]
		}
		s.Advance()
	}
}

// MasterKey derives the version 3 directory key from the raw key stored
// in the archive header.
func MasterKey(raw uint32) uint32 {
	return raw*9 + 3
}
