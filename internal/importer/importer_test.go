package importer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"reliquary/internal/assets"
	"reliquary/internal/engine"
	"reliquary/internal/fileset"
	"reliquary/internal/imerr"
	"reliquary/internal/importer"
	"reliquary/internal/testsupport"
	"reliquary/internal/vault"
)

// fakeStore records batches in memory.
type fakeStore struct {
	mu      sync.Mutex
	batches [][]assets.Asset
	meta    *vault.Metadata
}

func (f *fakeStore) PutBatch(_ context.Context, batch []assets.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make([]assets.Asset, len(batch))
	copy(copied, batch)
	f.batches = append(f.batches, copied)
	return nil
}

func (f *fakeStore) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.batches {
		n += int64(len(b))
	}
	return n, nil
}

func (f *fakeStore) SetImportMetadata(_ context.Context, meta vault.Metadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meta = &meta
	return nil
}

func (f *fakeStore) stored() []assets.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []assets.Asset
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

func TestRunFailsWhenEngineUndetectable(t *testing.T) {
	store := &fakeStore{}
	imp := importer.New(store, nil)
	set := fileset.FromMemory(map[string][]byte{"readme.txt": []byte("hi")})

	_, err := imp.Run(context.Background(), set, importer.Options{})
	if !errors.Is(err, imerr.ErrEngineUndetectable) {
		t.Fatalf("expected ErrEngineUndetectable, got %v", err)
	}
	if imerr.Kind(err) != "engine-undetectable" {
		t.Fatalf("kind = %q", imerr.Kind(err))
	}
}

func TestRunEndToEndRGSS3A(t *testing.T) {
	// One data entry and one media entry: the decoder yields both, the
	// orchestrator stores only the media.
	archive := testsupport.BuildRGSS3A(0x31337, []testsupport.ArchiveFile{
		{Name: `Data\Actors.rvdata2`, Content: []byte("marshalled actors")},
		{Name: `Graphics\Faces\Hero.png`, Content: []byte("face bytes")},
	})
	set := fileset.FromMemory(map[string][]byte{
		"Game.rgss3a": archive,
		"Game.ini":    []byte("[Game]\r\nTitle=Synthetic Quest\r\n"),
	})

	store := &fakeStore{}
	imp := importer.New(store, nil)

	var phases []importer.Phase
	result, err := imp.Run(context.Background(), set, importer.Options{
		FolderName: "synthetic-quest",
		OnProgress: func(p importer.Progress) { phases = append(phases, p.Phase) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Engine != engine.TagRMVXAce {
		t.Fatalf("engine = %s", result.Engine)
	}
	if result.GameTitle != "Synthetic Quest" {
		t.Fatalf("title = %q", result.GameTitle)
	}
	if result.AssetCount != 1 {
		t.Fatalf("asset count = %d", result.AssetCount)
	}

	stored := store.stored()
	if len(stored) != 1 || stored[0].Path != "graphics/faces/hero.png" {
		t.Fatalf("stored = %+v", stored)
	}
	if store.meta == nil || store.meta.AssetCount != 1 || store.meta.Engine != "rmVXAce" {
		t.Fatalf("metadata = %+v", store.meta)
	}

	if phases[0] != importer.PhaseDetecting {
		t.Fatalf("first phase = %s", phases[0])
	}
	if phases[len(phases)-1] != importer.PhaseDone {
		t.Fatalf("last phase = %s", phases[len(phases)-1])
	}
}

func TestRunMissingPrimaryArchiveIsFatal(t *testing.T) {
	set := fileset.FromMemory(map[string][]byte{
		"game.ini": []byte("[Game]\nTitle=X\n"),
	})
	store := &fakeStore{}
	imp := importer.New(store, nil)

	_, err := imp.Run(context.Background(), set, importer.Options{Engine: engine.TagRMXP})
	if !errors.Is(err, imerr.ErrBadArchiveHeader) {
		t.Fatalf("expected ErrBadArchiveHeader, got %v", err)
	}
}

func TestRunChainsDeclaredRuntimePackages(t *testing.T) {
	primary := testsupport.BuildRGSSADv1([]testsupport.ArchiveFile{
		{Name: `Graphics\Titles\Main.png`, Content: []byte("main title")},
	})
	rtp := testsupport.BuildStoredZip([]testsupport.ArchiveFile{
		{Name: "Graphics/Battlers/Slime.png", Content: []byte("slime")},
	})
	set := fileset.FromMemory(map[string][]byte{
		"Game.rgssad":  primary,
		"Game.ini":     []byte("[Game]\r\nTitle=Chained\r\nRTP1=Standard\r\nRTP2=Missing\r\n"),
		"Standard.zip": rtp,
	})

	store := &fakeStore{}
	imp := importer.New(store, nil)
	result, err := imp.Run(context.Background(), set, importer.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Engine != engine.TagRMXP {
		t.Fatalf("engine = %s", result.Engine)
	}

	stored := store.stored()
	if len(stored) != 2 {
		t.Fatalf("stored %d assets: %+v", len(stored), stored)
	}
	// Primary archive assets come before auxiliary ones.
	if stored[0].Path != "graphics/titles/main.png" || stored[1].Path != "graphics/battlers/slime.png" {
		t.Fatalf("order = %q, %q", stored[0].Path, stored[1].Path)
	}
	// The missing RTP2 package counts as skipped, not fatal.
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d", result.Skipped)
	}
}

func TestRunFallbackRetriesWithDetectedEngine(t *testing.T) {
	// A 2003 override against an MV tree matches nothing: the 2003
	// decoder only walks its fixed asset directories. Zero processed
	// assets plus a disagreeing detection triggers one retry.
	set := fileset.FromMemory(map[string][]byte{
		"www/data/system.json":   []byte(`{"gameTitle":"Fallback Manor"}`),
		"www/img/pictures/a.png": []byte("png"),
		"www/img/pictures/b.png": []byte("png2"),
	})

	store := &fakeStore{}
	imp := importer.New(store, nil)
	result, err := imp.Run(context.Background(), set, importer.Options{Engine: engine.TagRM2003})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Engine != engine.TagRMMV {
		t.Fatalf("engine after fallback = %s", result.Engine)
	}
	if result.GameTitle != "Fallback Manor" {
		t.Fatalf("title = %q", result.GameTitle)
	}
	if len(store.stored()) != 2 {
		t.Fatalf("stored = %+v", store.stored())
	}
}

func TestRunCancellationKeepsCommittedBatches(t *testing.T) {
	files := make([]testsupport.ArchiveFile, 6)
	for i := range files {
		files[i] = testsupport.ArchiveFile{
			Name:    "Graphics/Pictures/p" + string(rune('a'+i)) + ".png",
			Content: []byte{byte(i)},
		}
	}
	set := fileset.FromMemory(map[string][]byte{
		"Game.rgssad": testsupport.BuildRGSSADv1(files),
	})

	store := &fakeStore{}
	imp := importer.New(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	_, err := imp.Run(ctx, set, importer.Options{
		BatchSize: 2,
		OnProgress: func(p importer.Progress) {
			if p.Phase == importer.PhaseDecrypting {
				seen++
				if seen == 4 {
					cancel()
				}
			}
		},
	})
	if !errors.Is(err, imerr.ErrImportCancelled) {
		t.Fatalf("expected ErrImportCancelled, got %v", err)
	}
	if imerr.Kind(err) != "import-cancelled" {
		t.Fatalf("kind = %q", imerr.Kind(err))
	}
	// Two full batches fit before the cancellation was observed; at
	// least the first must have been committed and stay committed.
	if len(store.stored()) == 0 {
		t.Fatal("committed batches must survive cancellation")
	}
	if store.meta != nil {
		t.Fatal("metadata must not be written for a cancelled import")
	}
}

func TestRunRejectsBadKeyOverride(t *testing.T) {
	set := fileset.FromMemory(map[string][]byte{
		"www/data/system.json": []byte(`{}`),
	})
	store := &fakeStore{}
	imp := importer.New(store, nil)
	_, err := imp.Run(context.Background(), set, importer.Options{KeyHex: "zz"})
	if err == nil {
		t.Fatal("expected error for malformed key override")
	}
}
