package importer

import "reliquary/internal/engine"

// Phase names one step of the import state machine:
// detecting → (decrypting ⇄ storing)* → done, or any state → error.
type Phase string

const (
	PhaseDetecting  Phase = "detecting"
	PhaseDecrypting Phase = "decrypting"
	PhaseStoring    Phase = "storing"
	PhaseDone       Phase = "done"
	PhaseError      Phase = "error"
)

// Progress is a snapshot delivered to the caller's callback. Skipped
// counts files silently dropped by decoders so finished-with-skips is
// distinguishable from a clean finish.
type Progress struct {
	Phase     Phase
	Processed uint
	Total     uint
	Skipped   uint
	Engine    engine.Tag
	GameTitle string
}
