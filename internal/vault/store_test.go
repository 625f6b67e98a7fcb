package vault_test

import (
	"context"
	"testing"
	"time"

	"reliquary/internal/assets"
	"reliquary/internal/testsupport"
	"reliquary/internal/vault"
)

func openTestStore(t *testing.T) *vault.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
}

func TestPutBatchAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	batch := []assets.Asset{
		{Path: "img/pictures/title.png", Content: []byte{1, 2, 3}, MIME: "image/png"},
		{Path: "audio/bgm/theme.ogg", Content: []byte{4, 5}, MIME: "audio/ogg"},
	}
	if err := store.PutBatch(ctx, batch); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("Count = %d, %v", count, err)
	}

	asset, ok, err := store.Get(ctx, "img/pictures/title.png")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if asset.MIME != "image/png" || len(asset.Content) != 3 {
		t.Fatalf("Get returned %+v", asset)
	}

	if _, ok, _ := store.Get(ctx, "missing.png"); ok {
		t.Fatal("expected miss for unknown path")
	}
}

func TestPutBatchUpsertsByPath(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := []assets.Asset{{Path: "img/a.png", Content: []byte{1}, MIME: "image/png"}}
	second := []assets.Asset{{Path: "img/a.png", Content: []byte{9, 9}, MIME: "image/png"}}
	if err := store.PutBatch(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.PutBatch(ctx, second); err != nil {
		t.Fatal(err)
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Fatalf("Count after upsert = %d", count)
	}
	asset, _, _ := store.Get(ctx, "img/a.png")
	if len(asset.Content) != 2 {
		t.Fatalf("content not replaced: %v", asset.Content)
	}
}

func TestImportMetadataRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.ImportMetadata(ctx); err != nil || ok {
		t.Fatalf("expected empty metadata, ok=%v err=%v", ok, err)
	}

	meta := vault.Metadata{
		ImportID:     "8e2d9a32-0000-0000-0000-000000000000",
		Engine:       "rmVXAce",
		GameTitle:    "Synthetic Quest",
		ImportedAt:   time.Now(),
		AssetCount:   12,
		SkippedCount: 3,
	}
	if err := store.SetImportMetadata(ctx, meta); err != nil {
		t.Fatalf("SetImportMetadata: %v", err)
	}

	got, ok, err := store.ImportMetadata(ctx)
	if err != nil || !ok {
		t.Fatalf("ImportMetadata: ok=%v err=%v", ok, err)
	}
	if got.Engine != meta.Engine || got.GameTitle != meta.GameTitle {
		t.Fatalf("metadata = %+v", got)
	}
	if got.AssetCount != 12 || got.SkippedCount != 3 {
		t.Fatalf("counts = %d/%d", got.AssetCount, got.SkippedCount)
	}
}
