package assessment

import (
	"context"

	"github.com/looplab/fsm"
)

// Stage is the coarse phase of a multi-turn triage conversation.
type Stage string

const (
	StageInitial       Stage = "initial"
	StageClarification Stage = "clarification"
	StageFinal         Stage = "final"
)

// ParseStage maps wire values (including the backend's legacy aliases) to a
// Stage.
func ParseStage(s string) (Stage, bool) {
	switch s {
	case "initial", "exploration":
		return StageInitial, true
	case "clarification":
		return StageClarification, true
	case "final", "completed":
		return StageFinal, true
	}
	return "", false
}

const (
	evClarify  = "clarify"
	evFinalize = "finalize"
	evReset    = "reset"
)

// newStageMachine builds the per-conversation stage machine. Transitions only
// move forward; in particular, final is terminal until a reset, which keeps
// the stage monotonic within one conversation.
func newStageMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(StageInitial),
		fsm.Events{
			{Name: evClarify, Src: []string{string(StageInitial)}, Dst: string(StageClarification)},
			{Name: evFinalize, Src: []string{string(StageInitial), string(StageClarification)}, Dst: string(StageFinal)},
			{Name: evReset, Src: []string{string(StageInitial), string(StageClarification), string(StageFinal)}, Dst: string(StageInitial)},
		},
		fsm.Callbacks{},
	)
}

// advanceStage moves the machine toward target. Disallowed transitions
// (any regression) leave the current stage in place.
func advanceStage(m *fsm.FSM, target Stage) Stage {
	var ev string
	switch target {
	case StageClarification:
		ev = evClarify
	case StageFinal:
		ev = evFinalize
	default:
		return Stage(m.Current())
	}
	// An invalid event keeps the machine where it is, which is exactly the
	// no-regression behavior we want.
	_ = m.Event(context.Background(), ev)
	return Stage(m.Current())
}
