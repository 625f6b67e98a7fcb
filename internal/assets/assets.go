// Package assets defines the unit of work flowing through the import
// pipeline: a decrypted asset addressed by its canonical path.
package assets

import (
	"path"
	"strings"
)

// Asset is one decoded file ready for storage. Content is owned by the
// receiver once yielded by a decoder.
type Asset struct {
	Path    string
	Content []byte
	MIME    string
}

// NormalizePath converts an engine-relative file name to canonical form:
// forward slashes, lower case, no leading "./", and the given asset-root
// prefix stripped. All lookups across the pipeline use this form.
func NormalizePath(name, assetRoot string) string {
	p := strings.ReplaceAll(name, "\\", "/")
	p = strings.ToLower(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if assetRoot != "" {
		p = strings.TrimPrefix(p, strings.ToLower(assetRoot))
	}
	return p
}

// ReplaceExt swaps the extension of a canonical path. ext includes the dot.
func ReplaceExt(p, ext string) string {
	old := path.Ext(p)
	return p[:len(p)-len(old)] + ext
}

var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".mid":  "audio/midi",
	".midi": "audio/midi",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".json": "application/json",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".ttf":  "font/ttf",
	".otf":  "font/otf",
	".woff": "font/woff",
}

// MIMEForPath derives a MIME type from a canonical path's extension.
// Unknown extensions map to application/octet-stream.
func MIMEForPath(p string) string {
	if mime, ok := mimeByExt[strings.ToLower(path.Ext(p))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// dataExts marks structured game-data files that are extracted but not
// browsable media; the orchestrator drops them before storage.
var dataExts = map[string]struct{}{
	".json":    {},
	".rxdata":  {},
	".rvdata":  {},
	".rvdata2": {},
	".ldb":     {},
	".lmt":     {},
	".lmu":     {},
	".lsd":     {},
	".ini":     {},
	".js":      {},
	".exe":     {},
	".dll":     {},
	".dat":     {},
	".txt":     {},
	".csv":     {},
}

// IsData reports whether the path's extension marks structured data
// rather than browsable media.
func IsData(p string) bool {
	_, ok := dataExts[strings.ToLower(path.Ext(p))]
	return ok
}
