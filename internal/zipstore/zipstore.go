// Package zipstore reads stored-only ZIP archives by scanning local file
// headers sequentially. Runtime-package blobs are chained after other
// archives with no trustworthy central directory, so the usual
// end-of-file directory walk does not apply; only the uncompressed
// storage method is supported and anything else is skipped by its
// declared size.
package zipstore

import (
	"strings"

	"reliquary/internal/assets"
	"reliquary/internal/binread"
	"reliquary/internal/imerr"
)

const localHeaderSig = 0x04034b50

// Sniff reports whether data begins with a local file header.
func Sniff(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	cur := binread.New(data)
	sig, err := cur.ReadU32()
	return err == nil && sig == localHeaderSig
}

// Entry is one stored file extracted from the archive.
type Entry struct {
	Name    string
	Content []byte
}

// Read scans local file headers until the first non-header record (the
// central directory, or end of buffer). Stored files are collected;
// compressed entries and directory markers are skipped past.
func Read(data []byte) ([]Entry, error) {
	if !Sniff(data) {
		return nil, imerr.Wrap(imerr.ErrBadArchiveHeader, "zipstore", "missing local file header", nil)
	}
	cur := binread.New(data)
	var entries []Entry
	for {
		sig, err := cur.ReadU32()
		if err != nil || sig != localHeaderSig {
			break
		}
		// version(2) flags(2) method(2) modtime(2) moddate(2) crc(4)
		if err := cur.Skip(2); err != nil {
			break
		}
		flags, err := cur.ReadU16()
		if err != nil {
			break
		}
		method, err := cur.ReadU16()
		if err != nil {
			break
		}
		if err := cur.Skip(8); err != nil {
			break
		}
		compSize, err := cur.ReadU32()
		if err != nil {
			break
		}
		if err := cur.Skip(4); err != nil {
			break
		}
		nameLen, err := cur.ReadU16()
		if err != nil {
			break
		}
		extraLen, err := cur.ReadU16()
		if err != nil {
			break
		}
		nameBytes, err := cur.ReadBytes(int(nameLen))
		if err != nil {
			break
		}
		if err := cur.Skip(int(extraLen)); err != nil {
			break
		}
		// Sizes in a trailing data descriptor are unknowable in a
		// sequential scan; stop rather than misparse.
		if flags&0x08 != 0 && compSize == 0 {
			break
		}
		name := string(nameBytes)
		if method != 0 || strings.HasSuffix(name, "/") {
			if err := cur.Skip(int(compSize)); err != nil {
				break
			}
			continue
		}
		content, err := cur.ReadBytes(int(compSize))
		if err != nil {
			break
		}
		stored := make([]byte, len(content))
		copy(stored, content)
		entries = append(entries, Entry{Name: name, Content: stored})
	}
	return entries, nil
}

// Stream adapts the archive contents to the asset stream contract,
// normalizing entry names.
func Stream(data []byte) (assets.Stream, error) {
	entries, err := Read(data)
	if err != nil {
		return nil, err
	}
	out := make([]assets.Asset, 0, len(entries))
	for _, e := range entries {
		canonical := assets.NormalizePath(e.Name, "")
		out = append(out, assets.Asset{
			Path:    canonical,
			Content: e.Content,
			MIME:    assets.MIMEForPath(canonical),
		})
	}
	return &assets.SliceStream{Assets: out}, nil
}
