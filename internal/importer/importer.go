// Package importer orchestrates one import: engine detection, title
// lookup, decoder selection, streaming extraction, and batched
// persistence with progress reporting and cooperative cancellation.
package importer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reliquary/internal/assets"
	"reliquary/internal/engine"
	"reliquary/internal/fileset"
	"reliquary/internal/imerr"
	"reliquary/internal/logging"
	"reliquary/internal/mvmz"
	"reliquary/internal/tcoaal"
	"reliquary/internal/title"
	"reliquary/internal/vault"
	"reliquary/internal/xyz"
)

// Store is the persistence collaborator. The orchestrator is its only
// caller and always writes fixed-size batches.
type Store interface {
	PutBatch(ctx context.Context, batch []assets.Asset) error
	Count(ctx context.Context) (int64, error)
	SetImportMetadata(ctx context.Context, meta vault.Metadata) error
}

// Options configures one import run.
type Options struct {
	// Engine overrides detection; TagAuto means "detect".
	Engine engine.Tag
	// KeyHex overrides MV/MZ key resolution.
	KeyHex string
	// FolderName seeds the title fallback.
	FolderName string
	BatchSize  int
	OnProgress func(Progress)
}

// Result summarizes a finished import.
type Result struct {
	ImportID   string
	Engine     engine.Tag
	GameTitle  string
	AssetCount int
	Skipped    int
}

// Importer runs imports against a store.
type Importer struct {
	store  Store
	logger *slog.Logger
}

// New constructs an importer. logger may be nil.
func New(store Store, logger *slog.Logger) *Importer {
	return &Importer{store: store, logger: logging.NewComponentLogger(logger, "importer")}
}

const defaultBatchSize = 64

// Run executes the whole pipeline over a file-set snapshot. Fatal
// conditions (undetectable engine, unreadable primary archive,
// cancellation) surface as errors carrying an imerr sentinel; per-file
// problems are counted, never fatal.
func (imp *Importer) Run(ctx context.Context, set *fileset.Set, opts Options) (Result, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	importID := uuid.NewString()
	logger := imp.logger.With(logging.String(logging.FieldImportID, importID))

	report := func(p Progress) {
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}
	fail := func(err error) (Result, error) {
		report(Progress{Phase: PhaseError})
		logger.Error("import failed", logging.Error(err))
		return Result{ImportID: importID}, err
	}

	report(Progress{Phase: PhaseDetecting})
	detected := engine.Detect(set.Paths())
	logger.Info("engine detection finished",
		logging.String(logging.FieldEngine, detected.Engine.String()),
		logging.Bool("encrypted", detected.Encrypted),
	)

	effective := detected.Engine
	if opts.Engine != engine.TagAuto && opts.Engine != "" {
		effective = opts.Engine
	}
	if effective == engine.TagAuto {
		return fail(imerr.Wrap(imerr.ErrEngineUndetectable, "importer",
			"select an engine explicitly and retry", nil))
	}

	outcome, err := imp.runExtraction(ctx, set, effective, opts, report)
	if err != nil {
		return fail(err)
	}

	// An override that produced nothing while detection points elsewhere
	// is almost always a wrong override; retry once with the detection.
	overrideMissed := opts.Engine != engine.TagAuto && opts.Engine != "" &&
		detected.Engine != engine.TagAuto && detected.Engine != opts.Engine &&
		outcome.processed == 0
	if overrideMissed {
		logger.Warn("override yielded no assets, retrying with detected engine",
			logging.String("override", opts.Engine.String()),
			logging.String(logging.FieldEngine, detected.Engine.String()),
		)
		effective = detected.Engine
		outcome, err = imp.runExtraction(ctx, set, effective, opts, report)
		if err != nil {
			return fail(err)
		}
	}

	gameTitle := title.Lookup(effective, set, opts.FolderName)
	meta := vault.Metadata{
		ImportID:     importID,
		Engine:       effective.String(),
		GameTitle:    gameTitle,
		ImportedAt:   time.Now().UTC(),
		AssetCount:   int64(outcome.stored),
		SkippedCount: int64(outcome.skipped),
	}
	if err := imp.store.SetImportMetadata(ctx, meta); err != nil {
		return fail(err)
	}

	result := Result{
		ImportID:   importID,
		Engine:     effective,
		GameTitle:  gameTitle,
		AssetCount: outcome.stored,
		Skipped:    outcome.skipped,
	}
	report(Progress{
		Phase:     PhaseDone,
		Processed: uint(outcome.processed),
		Total:     uint(outcome.total),
		Skipped:   uint(outcome.skipped),
		Engine:    effective,
		GameTitle: gameTitle,
	})
	logger.Info("import finished",
		logging.String(logging.FieldEngine, effective.String()),
		logging.String(logging.FieldGameTitle, gameTitle),
		logging.Int("assets", outcome.stored),
		logging.Int("skipped", outcome.skipped),
	)
	return result, nil
}

type extraction struct {
	processed int
	stored    int
	skipped   int
	total     int
}

func (imp *Importer) runExtraction(
	ctx context.Context,
	set *fileset.Set,
	tag engine.Tag,
	opts Options,
	report func(Progress),
) (extraction, error) {
	keys := mvmz.NewKeyState()
	if opts.KeyHex != "" {
		if err := keys.SetHex(opts.KeyHex); err != nil {
			return extraction{}, imerr.Wrap(imerr.ErrBadArchiveHeader, "importer", "parse key override", err)
		}
	}

	stream, auxSkipped, err := imp.buildStream(set, tag, keys)
	if err != nil {
		return extraction{}, err
	}

	sampler := logging.NewProgressSampler(0)
	out := extraction{total: stream.Total()}
	batch := make([]assets.Asset, 0, opts.BatchSize)

	snapshot := func(phase Phase) Progress {
		return Progress{
			Phase:     phase,
			Processed: uint(out.processed),
			Total:     uint(out.total),
			Skipped:   uint(out.skipped),
			Engine:    tag,
		}
	}
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		report(snapshot(PhaseStoring))
		if err := imp.store.PutBatch(ctx, batch); err != nil {
			return err
		}
		out.stored += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		// Cancellation is cooperative: checked once per yielded asset,
		// never mid-decode. Batches already persisted stay committed.
		if err := ctx.Err(); err != nil {
			return out, imerr.Wrap(imerr.ErrImportCancelled, "importer", "", err)
		}
		asset, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		out.processed++
		out.skipped = stream.Skipped() + auxSkipped
		if sampler.ShouldLog(string(PhaseDecrypting), uint(out.processed)) {
			imp.logger.Debug("decoding assets",
				logging.Int("processed", out.processed),
				logging.String(logging.FieldAssetPath, asset.Path),
			)
		}
		report(snapshot(PhaseDecrypting))

		// Structured data is extracted but not browsable; drop it here.
		if assets.IsData(asset.Path) {
			continue
		}
		batch = append(batch, asset)
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return out, err
			}
		}
	}
	if err := flush(); err != nil {
		return out, err
	}
	out.skipped = stream.Skipped() + auxSkipped
	return out, nil
}

// primaryArchiveName maps archive-root engines to their container file.
var primaryArchiveName = map[engine.Tag]string{
	engine.TagRMXP:    "game.rgssad",
	engine.TagRMVX:    "game.rgss2a",
	engine.TagRMVXAce: "game.rgss3a",
}

func (imp *Importer) buildStream(set *fileset.Set, tag engine.Tag, keys *mvmz.KeyState) (assets.Stream, int, error) {
	switch tag {
	case engine.TagRMXP, engine.TagRMVX, engine.TagRMVXAce:
		return imp.buildArchiveStream(set, tag)
	case engine.TagRMMV, engine.TagRMMVCrypt:
		if data, err := set.Read("www/data/system.json"); err == nil {
			keys.ResolveFromSystemJSON(data)
		}
		return mvmz.NewStream(set, keys, "www/"), 0, nil
	case engine.TagRMMZ, engine.TagRMMZCrypt:
		if data, err := set.Read("data/system.json"); err == nil {
			keys.ResolveFromSystemJSON(data)
		}
		return mvmz.NewStream(set, keys, ""), 0, nil
	case engine.TagRM2003:
		return xyz.NewStream(set), 0, nil
	case engine.TagTCOAAL:
		return tcoaal.NewStream(set, "www/"), 0, nil
	default:
		return nil, 0, imerr.Wrap(imerr.ErrNoDecoder, "importer", tag.String(), nil)
	}
}

// buildArchiveStream opens the engine's primary archive and chains any
// runtime-package archives declared in Game.ini after it. Auxiliary
// archives that are missing or unreadable are skipped; the primary one
// is required.
func (imp *Importer) buildArchiveStream(set *fileset.Set, tag engine.Tag) (assets.Stream, int, error) {
	name := primaryArchiveName[tag]
	if !set.Has(name) {
		return nil, 0, imerr.Wrap(imerr.ErrBadArchiveHeader, "importer", "missing "+name, nil)
	}
	data, err := set.Read(name)
	if err != nil {
		return nil, 0, imerr.Wrap(imerr.ErrBadArchiveHeader, "importer", "read "+name, err)
	}
	archive, err := openArchive(data)
	if err != nil {
		return nil, 0, err
	}

	streams := []assets.Stream{archive}
	auxSkipped := 0
	for _, auxName := range declaredPackages(set) {
		auxStream, ok := imp.openAuxiliary(set, auxName)
		if !ok {
			auxSkipped++
			continue
		}
		streams = append(streams, auxStream)
	}
	if len(streams) == 1 {
		return streams[0], auxSkipped, nil
	}
	return assets.Concat(streams...), auxSkipped, nil
}

// declaredPackages reads runtime-package names out of Game.ini. Absence
// of the file or the keys is not an error; there is simply nothing to
// chain.
func declaredPackages(set *fileset.Set) []string {
	data, err := set.Read("game.ini")
	if err != nil {
		return nil
	}
	var names []string
	for _, key := range []string{"rtp", "rtp1", "rtp2", "rtp3"} {
		if value, ok := iniValue(data, key); ok && value != "" {
			names = append(names, value)
		}
	}
	return names
}

// openAuxiliary locates a declared package on disk and routes it to the
// decoder matching its magic bytes.
func (imp *Importer) openAuxiliary(set *fileset.Set, name string) (assets.Stream, bool) {
	candidates := []string{name, name + ".rgssad", name + ".rgss2a", name + ".rgss3a", name + ".zip"}
	for _, candidate := range candidates {
		if !set.Has(candidate) {
			continue
		}
		data, err := set.Read(candidate)
		if err != nil {
			continue
		}
		if stream, err := sniffArchive(data); err == nil {
			return stream, true
		}
		imp.logger.Warn("skipping unreadable runtime package",
			logging.String("package", candidate))
		return nil, false
	}
	return nil, false
}

func iniValue(data []byte, key string) (string, bool) {
	for _, line := range strings.Split(string(data), "\n") {
		k, v, ok := strings.Cut(strings.TrimRight(line, "\r"), "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
