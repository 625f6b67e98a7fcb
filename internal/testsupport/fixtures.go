// Package testsupport builds synthetic engine files for tests: the
// encrypt side of each container scheme the decoders reverse.
package testsupport

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"strings"

	"reliquary/internal/rgss"
	"reliquary/internal/tcoaal"
)

// ArchiveFile is one named payload for an archive builder.
type ArchiveFile struct {
	Name    string
	Content []byte
}

// BuildRGSSADv1 packs files into a version 1 archive using the evolving
// directory cipher.
func BuildRGSSADv1(files []ArchiveFile) []byte {
	var buf bytes.Buffer
	buf.WriteString("RGSSAD\x00\x01")

	stream := rgss.NewKeyStream(rgss.V1Seed)
	for _, f := range files {
		name := []byte(f.Name)
		writeU32(&buf, stream.DecryptU32(uint32(len(name))))
		for _, b := range name {
			buf.WriteByte(stream.DecryptByte(b))
		}
		writeU32(&buf, stream.DecryptU32(uint32(len(f.Content))))

		enc := make([]byte, len(f.Content))
		copy(enc, f.Content)
		content := rgss.NewKeyStream(stream.Key())
		content.DecryptBlocks(enc)
		buf.Write(enc)
	}
	return buf.Bytes()
}

// BuildRGSS3A packs files into a version 3 archive seeded with rawKey.
// Per-file keys are synthesized deterministically from the entry index.
func BuildRGSS3A(rawKey uint32, files []ArchiveFile) []byte {
	master := rgss.MasterKey(rawKey)
	masterBytes := [4]byte{byte(master), byte(master >> 8), byte(master >> 16), byte(master >> 24)}

	dirSize := 0
	for _, f := range files {
		dirSize += 16 + len(f.Name)
	}
	dataStart := 8 + 4 + dirSize + 4

	var dir, data bytes.Buffer
	offset := dataStart
	for i, f := range files {
		fileKey := uint32(0x1000001*i + 0x51A9)
		writeU32(&dir, uint32(offset)^master)
		writeU32(&dir, uint32(len(f.Content))^master)
		writeU32(&dir, fileKey^master)
		writeU32(&dir, uint32(len(f.Name))^master)
		for j, b := range []byte(f.Name) {
			dir.WriteByte(b ^ masterBytes[j%4])
		}

		enc := make([]byte, len(f.Content))
		copy(enc, f.Content)
		content := rgss.NewKeyStream(fileKey)
		content.DecryptBlocks(enc)
		data.Write(enc)
		offset += len(f.Content)
	}
	writeU32(&dir, master) // terminator: decrypts to offset zero

	var buf bytes.Buffer
	buf.WriteString("RGSSAD\x00\x03")
	writeU32(&buf, rawKey)
	buf.Write(dir.Bytes())
	buf.Write(data.Bytes())
	return buf.Bytes()
}

// mvHeader is the proprietary 16-byte header on MV/MZ encrypted files.
var mvHeader = []byte{
	0x52, 0x50, 0x47, 0x4D, 0x56, 0x00, 0x00, 0x00,
	0x00, 0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// EncryptMVMZ prepends the proprietary header and XORs the first
// min(16, len) plaintext bytes against key.
func EncryptMVMZ(plain []byte, key [16]byte) []byte {
	out := make([]byte, 0, len(mvHeader)+len(plain))
	out = append(out, mvHeader...)
	body := make([]byte, len(plain))
	copy(body, plain)
	n := len(body)
	if n > len(key) {
		n = len(key)
	}
	for i := 0; i < n; i++ {
		body[i] ^= key[i]
	}
	return append(out, body...)
}

// PNGPrefix is a minimal plausible start of a PNG file, long enough for
// known-plaintext key recovery.
func PNGPrefix(tail []byte) []byte {
	prefix := []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52,
	}
	return append(prefix, tail...)
}

// BuildXYZ assembles an XYZ image from a 768-byte palette and one index
// per pixel.
func BuildXYZ(width, height int, palette, indices []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("XYZ1")
	var dims [4]byte
	binary.LittleEndian.PutUint16(dims[0:2], uint16(width))
	binary.LittleEndian.PutUint16(dims[2:4], uint16(height))
	buf.Write(dims[:])

	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(palette)
	_, _ = zw.Write(indices)
	_ = zw.Close()
	return buf.Bytes()
}

// MaskK9A obfuscates plain under the evolving-mask scheme. declared is
// written verbatim as the ciphertext-length byte; zero masks everything.
func MaskK9A(basename string, plain []byte, declared byte) []byte {
	var out bytes.Buffer
	out.Write(tcoaal.Signature)
	out.WriteByte(declared)

	var mask byte
	for _, c := range strings.ToUpper(basename) {
		mask = mask*2 ^ byte(c)
	}
	limit := len(plain)
	if declared != 0 && int(declared) < limit {
		limit = int(declared)
	}
	for i, p := range plain {
		if i >= limit {
			out.WriteByte(p)
			continue
		}
		c := p ^ mask
		mask = mask<<1 ^ c
		out.WriteByte(c)
	}
	return out.Bytes()
}

// BuildStoredZip writes a sequence of stored (method 0) local file
// records. Names ending in "/" become directory markers with no content.
func BuildStoredZip(files []ArchiveFile) []byte {
	var buf bytes.Buffer
	for _, f := range files {
		writeU32(&buf, 0x04034b50)
		writeU16(&buf, 20) // version needed
		writeU16(&buf, 0)  // flags
		writeU16(&buf, 0)  // method: stored
		writeU16(&buf, 0)  // mod time
		writeU16(&buf, 0)  // mod date
		writeU32(&buf, crc32.ChecksumIEEE(f.Content))
		writeU32(&buf, uint32(len(f.Content)))
		writeU32(&buf, uint32(len(f.Content)))
		writeU16(&buf, uint16(len(f.Name)))
		writeU16(&buf, 0) // extra length
		buf.WriteString(f.Name)
		buf.Write(f.Content)
	}
	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
