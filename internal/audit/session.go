// Package audit drives one interactive audit pass: pick a scale, pick a
// stage, write notes, commit.
package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kingrea/riskaudit/internal/records"
	"github.com/kingrea/riskaudit/internal/workflow"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// session's current state.
var ErrInvalidTransition = errors.New("audit: invalid session transition")

// State is the position of a session in its pass.
type State int

const (
	StateScaleUnselected State = iota
	StateStageSelection
	StateReady
)

func (s State) String() string {
	switch s {
	case StateScaleUnselected:
		return "scale-unselected"
	case StateStageSelection:
		return "stage-selection"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Recorder is the part of the record store a session needs.
type Recorder interface {
	Insert(ctx context.Context, draft records.Draft) (int64, error)
}

// Notes is the free text entered for one stage.
type Notes struct {
	PerformedWork string
	Problems      string
}

// Session holds the selections of one pass. It is not safe for concurrent
// use; the UI drives it from a single goroutine.
type Session struct {
	catalog  *workflow.Catalog
	recorder Recorder

	passID string
	state  State
	scale  workflow.ScaleID
	stages []workflow.StageID
	stage  workflow.StageID
	notes  map[workflow.StageID]Notes
}

// NewSession starts a pass in StateScaleUnselected.
func NewSession(catalog *workflow.Catalog, recorder Recorder) *Session {
	s := &Session{catalog: catalog, recorder: recorder}
	s.Reset()
	return s
}

// Reset discards all selections and notes and starts a fresh pass.
func (s *Session) Reset() {
	s.passID = uuid.NewString()
	s.state = StateScaleUnselected
	s.scale = ""
	s.stages = nil
	s.stage = ""
	s.notes = map[workflow.StageID]Notes{}
}

// ChooseScale selects the audit scale and returns its stage sequence. The
// scale may be changed at any point; doing so clears the chosen stage.
func (s *Session) ChooseScale(id workflow.ScaleID) ([]workflow.StageID, error) {
	stages, err := s.catalog.StagesFor(id)
	if err != nil {
		return nil, err
	}
	s.scale = id
	s.stages = stages
	s.stage = ""
	s.state = StateStageSelection
	return s.Stages(), nil
}

// ChooseStage selects the stage being worked on and returns its description,
// which is empty for stages outside the catalog. Membership in the scale's
// sequence is left to the caller.
func (s *Session) ChooseStage(id workflow.StageID) (string, error) {
	if s.state == StateScaleUnselected {
		return "", fmt.Errorf("%w: choose a scale before a stage", ErrInvalidTransition)
	}
	s.stage = id
	s.state = StateReady
	return s.catalog.Describe(id), nil
}

// SetPerformedWork records the performed-work text for the current stage.
func (s *Session) SetPerformedWork(text string) error {
	if s.state != StateReady {
		return fmt.Errorf("%w: no stage selected", ErrInvalidTransition)
	}
	n := s.notes[s.stage]
	n.PerformedWork = text
	s.notes[s.stage] = n
	return nil
}

// SetProblems records the problems text for the current stage.
func (s *Session) SetProblems(text string) error {
	if s.state != StateReady {
		return fmt.Errorf("%w: no stage selected", ErrInvalidTransition)
	}
	n := s.notes[s.stage]
	n.Problems = text
	s.notes[s.stage] = n
	return nil
}

// Commit stores the current stage's notes under the given auditor identity.
// Requirements and results are not collected by this workflow and are
// stored empty. The session stays in StateReady so the same stage can be
// committed again after editing.
func (s *Session) Commit(ctx context.Context, auditorName, auditorPosition string) (records.Record, error) {
	if s.state != StateReady {
		return records.Record{}, fmt.Errorf("%w: commit requires a selected stage", ErrInvalidTransition)
	}
	notes := s.notes[s.stage]
	draft := records.Draft{
		AuditorName:     auditorName,
		AuditorPosition: auditorPosition,
		Stage:           string(s.stage),
		PerformedWork:   notes.PerformedWork,
		Problems:        notes.Problems,
	}
	id, err := s.recorder.Insert(ctx, draft)
	if err != nil {
		return records.Record{}, err
	}
	return records.Record{ID: id, Draft: draft}, nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// PassID identifies the current pass in logs.
func (s *Session) PassID() string { return s.passID }

// Scale returns the chosen scale, or "" before one is chosen.
func (s *Session) Scale() workflow.ScaleID { return s.scale }

// Stage returns the chosen stage, or "" before one is chosen.
func (s *Session) Stage() workflow.StageID { return s.stage }

// Stages returns the stage sequence of the chosen scale.
func (s *Session) Stages() []workflow.StageID {
	out := make([]workflow.StageID, len(s.stages))
	copy(out, s.stages)
	return out
}

// Notes returns the notes entered for the current stage.
func (s *Session) Notes() Notes {
	return s.notes[s.stage]
}

// NotesFor returns the notes entered for any stage during this pass.
func (s *Session) NotesFor(id workflow.StageID) Notes {
	return s.notes[id]
}

// Description returns the description of the current stage.
func (s *Session) Description() string {
	return s.catalog.Describe(s.stage)
}
