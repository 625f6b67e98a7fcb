package engine

import (
	"path"
	"strings"
)

const (
	// MaskedExt marks files obfuscated by the evolving-mask scheme.
	MaskedExt = ".k9a"
	// maskedProbePath is an obfuscated window skin present in every
	// distribution of the masked engine; some builds strip the marker
	// extension elsewhere but always ship this file.
	maskedProbePath = "www/img/system/window.k9a"

	mvSystemPath = "www/data/system.json"
	mzSystemPath = "data/system.json"
	mzCorePath   = "js/rmmz_core.js"
)

var mvCryptExts = map[string]struct{}{
	".rpgmvp": {},
	".rpgmvo": {},
	".rpgmvm": {},
}

var mzCryptExts = map[string]struct{}{
	".png_": {},
	".ogg_": {},
	".m4a_": {},
}

// Detect inspects a normalized path set and resolves the producing
// engine. Rules are ordered; the first match wins regardless of how many
// later rules would also match, so a folder carrying both Game.rgssad
// and an MV tree is always rmXP.
func Detect(paths []string) Detection {
	idx := newIndex(paths)

	switch {
	case idx.hasExt(MaskedExt) || idx.has(maskedProbePath):
		return Detection{Engine: TagTCOAAL, AssetRoot: "www/", Encrypted: true}
	case idx.hasExt(".rgssad"):
		return Detection{Engine: TagRMXP, Encrypted: true}
	case idx.hasExt(".rgss2a"):
		return Detection{Engine: TagRMVX, Encrypted: true}
	case idx.hasExt(".rgss3a"):
		return Detection{Engine: TagRMVXAce, Encrypted: true}
	case idx.hasRootedCryptMedia():
		return Detection{Engine: TagRMMVCrypt, AssetRoot: "www/", Encrypted: true}
	case idx.has(mvSystemPath):
		return Detection{Engine: TagRMMV, AssetRoot: "www/"}
	case idx.hasAnyExt(mzCryptExts):
		return Detection{Engine: TagRMMZCrypt, Encrypted: true}
	case idx.has(mzSystemPath) && idx.has(mzCorePath):
		return Detection{Engine: TagRMMZ}
	case idx.hasExt(".ldb") && idx.hasExt(".lmt"):
		return Detection{Engine: TagRM2003}
	case idx.has(mzSystemPath):
		// Catch-all for a bare system config with no runtime scripts;
		// the rooted variant is already handled above.
		return Detection{Engine: TagRMMZ}
	default:
		return Detection{Engine: TagAuto}
	}
}

type index struct {
	paths map[string]struct{}
	exts  map[string]struct{}
	list  []string
}

func newIndex(paths []string) *index {
	idx := &index{
		paths: make(map[string]struct{}, len(paths)),
		exts:  make(map[string]struct{}),
		list:  paths,
	}
	for _, p := range paths {
		idx.paths[p] = struct{}{}
		if ext := path.Ext(p); ext != "" {
			idx.exts[ext] = struct{}{}
		}
	}
	return idx
}

func (idx *index) has(p string) bool {
	_, ok := idx.paths[p]
	return ok
}

func (idx *index) hasExt(ext string) bool {
	_, ok := idx.exts[ext]
	return ok
}

func (idx *index) hasAnyExt(exts map[string]struct{}) bool {
	for ext := range exts {
		if idx.hasExt(ext) {
			return true
		}
	}
	return false
}

func (idx *index) hasRootedCryptMedia() bool {
	for _, p := range idx.list {
		if !strings.HasPrefix(p, "www/") {
			continue
		}
		if _, ok := mvCryptExts[path.Ext(p)]; ok {
			return true
		}
	}
	return false
}
