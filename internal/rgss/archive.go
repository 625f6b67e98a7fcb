package rgss

import (
	"fmt"
	"io"

	"reliquary/internal/assets"
	"reliquary/internal/binread"
	"reliquary/internal/imerr"
)

var magic = []byte("RGSSAD\x00")

// maxNameLen bounds a plausible directory filename. Anything larger
// means the cursor has run off the table into file data.
const maxNameLen = 1024

// Entry is one directory record: where the ciphertext lives and the key
// value captured while parsing the table.
type Entry struct {
	Path   string
	Size   int
	Offset int
	Key    uint32
}

// Archive is a parsed RGSSAD/RGSS3A container. Entries are decrypted
// lazily, one at a time, by the stream returned from Stream.
type Archive struct {
	data    []byte
	entries []Entry
}

// Version sniffs the archive version byte, reporting ok=false when the
// buffer does not start with the RGSSAD magic.
func Version(data []byte) (byte, bool) {
	if len(data) < 8 {
		return 0, false
	}
	for i, b := range magic {
		if data[i] != b {
			return 0, false
		}
	}
	return data[7], true
}

// Open validates the header and parses the directory table for either
// supported version.
func Open(data []byte) (*Archive, error) {
	version, ok := Version(data)
	if !ok {
		return nil, imerr.Wrap(imerr.ErrBadArchiveHeader, "rgss", "missing RGSSAD magic", nil)
	}
	switch version {
	case 1:
		return openV1(data)
	case 3:
		return openV3(data)
	default:
		return nil, imerr.Wrap(imerr.ErrBadArchiveHeader, "rgss",
			fmt.Sprintf("unsupported version %d", version), nil)
	}
}

// openV1 walks the interleaved directory of a version 1 archive. The
// table has no terminator; an implausible decrypted length marks its end.
func openV1(data []byte) (*Archive, error) {
	cur := binread.New(data)
	_ = cur.Skip(8)

	stream := NewKeyStream(V1Seed)
	archive := &Archive{data: data}
	for !cur.EOF() {
		raw, err := cur.ReadU32()
		if err != nil {
			break
		}
		nameLen := stream.DecryptU32(raw)
		if nameLen == 0 || nameLen > maxNameLen || int(nameLen) > cur.Remaining() {
			break
		}
		nameBytes, err := cur.ReadBytes(int(nameLen))
		if err != nil {
			break
		}
		name := make([]byte, nameLen)
		for i, b := range nameBytes {
			name[i] = stream.DecryptByte(b)
		}
		raw, err = cur.ReadU32()
		if err != nil {
			break
		}
		size := stream.DecryptU32(raw)
		if int(size) > cur.Remaining() {
			break
		}
		archive.entries = append(archive.entries, Entry{
			Path:   assets.NormalizePath(string(name), ""),
			Size:   int(size),
			Offset: cur.Pos(),
			Key:    stream.Key(),
		})
		if err := cur.Skip(int(size)); err != nil {
			break
		}
	}
	return archive, nil
}

// openV3 reads the fixed-field directory of a version 3 archive. Every
// u32 field XORs directly against the master key; a zero offset
// terminates the table.
func openV3(data []byte) (*Archive, error) {
	cur := binread.New(data)
	_ = cur.Skip(8)

	raw, err := cur.ReadU32()
	if err != nil {
		return nil, imerr.Wrap(imerr.ErrBadArchiveHeader, "rgss", "truncated v3 key", err)
	}
	master := MasterKey(raw)
	masterBytes := [4]byte{byte(master), byte(master >> 8), byte(master >> 16), byte(master >> 24)}

	archive := &Archive{data: data}
	for {
		offset, err := cur.ReadU32()
		if err != nil {
			break
		}
		offset ^= master
		if offset == 0 {
			break
		}
		size, err := cur.ReadU32()
		if err != nil {
			break
		}
		key, err := cur.ReadU32()
		if err != nil {
			break
		}
		nameLenRaw, err := cur.ReadU32()
		if err != nil {
			break
		}
		nameLen := nameLenRaw ^ master
		if nameLen == 0 || nameLen > maxNameLen || int(nameLen) > cur.Remaining() {
			break
		}
		nameBytes, err := cur.ReadBytes(int(nameLen))
		if err != nil {
			break
		}
		name := make([]byte, nameLen)
		for i, b := range nameBytes {
			name[i] = b ^ masterBytes[i%4]
		}
		archive.entries = append(archive.entries, Entry{
			Path:   assets.NormalizePath(string(name), ""),
			Size:   int(size ^ master),
			Offset: int(offset),
			Key:    key ^ master,
		})
	}
	return archive, nil
}

// Entries exposes the parsed directory, mainly for tests and listings.
func (a *Archive) Entries() []Entry { return a.entries }

// Stream returns a pull-based sequence decrypting one entry per Next
// call. Entries whose recorded range falls outside the buffer are
// skipped, not surfaced.
func (a *Archive) Stream() assets.Stream {
	return &archiveStream{archive: a}
}

type archiveStream struct {
	archive *Archive
	index   int
	skipped int
}

func (s *archiveStream) Next() (assets.Asset, error) {
	for s.index < len(s.archive.entries) {
		e := s.archive.entries[s.index]
		s.index++
		if e.Offset < 0 || e.Size < 0 || e.Offset+e.Size > len(s.archive.data) {
			s.skipped++
			continue
		}
		content := make([]byte, e.Size)
		copy(content, s.archive.data[e.Offset:e.Offset+e.Size])
		stream := NewKeyStream(e.Key)
		stream.DecryptBlocks(content)
		return assets.Asset{
			Path:    e.Path,
			Content: content,
			MIME:    assets.MIMEForPath(e.Path),
		}, nil
	}
	return assets.Asset{}, io.EOF
}

func (s *archiveStream) Total() int { return len(s.archive.entries) }

func (s *archiveStream) Skipped() int { return s.skipped }
