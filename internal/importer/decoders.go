package importer

import (
	"reliquary/internal/assets"
	"reliquary/internal/imerr"
	"reliquary/internal/rgss"
	"reliquary/internal/zipstore"
)

func openArchive(data []byte) (assets.Stream, error) {
	archive, err := rgss.Open(data)
	if err != nil {
		return nil, err
	}
	return archive.Stream(), nil
}

// sniffArchive routes a blob to the decoder matching its magic bytes.
func sniffArchive(data []byte) (assets.Stream, error) {
	if _, ok := rgss.Version(data); ok {
		return openArchive(data)
	}
	if zipstore.Sniff(data) {
		return zipstore.Stream(data)
	}
	return nil, imerr.Wrap(imerr.ErrBadArchiveHeader, "importer", "unrecognized archive magic", nil)
}
