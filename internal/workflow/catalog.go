// internal/workflow/catalog.go
//
// The audit workflow is a fixed vocabulary of stages plus one curated stage
// sequence per audit scale. Both tables live in a Catalog that is built once
// at startup and never mutated afterwards.

package workflow

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownScale is returned when a scale identifier is not in the catalog.
// The UI only offers valid scales, so hitting this is a defect.
var ErrUnknownScale = errors.New("workflow: unknown audit scale")

// StageID names one phase of the audit.
type StageID string

// Canonical stage identifiers, in canonical precedence.
const (
	StagePreparation          StageID = "Preparation"
	StageInformationGathering StageID = "InformationGathering"
	StageAnalysis             StageID = "Analysis"
	StageComplianceCheck      StageID = "ComplianceCheck"
	StageThreatIdentification StageID = "ThreatIdentification"
	StageReportPreparation    StageID = "ReportPreparation"
)

// ScaleID names an audit scale (organisation size).
type ScaleID string

// Audit scales offered to the auditor.
const (
	ScaleSmall  ScaleID = "small"
	ScaleMedium ScaleID = "medium"
	ScaleLarge  ScaleID = "large"
)

// scaleOrder is the order scales are listed in.
var scaleOrder = []ScaleID{ScaleSmall, ScaleMedium, ScaleLarge}

// stageOrder is the fixed stage vocabulary in canonical precedence.
var stageOrder = []StageID{
	StagePreparation,
	StageInformationGathering,
	StageAnalysis,
	StageComplianceCheck,
	StageThreatIdentification,
	StageReportPreparation,
}

// scaleSequences are the curated stage sequences. Catalog files may reword
// scales and stages but cannot change these.
var scaleSequences = map[ScaleID][]StageID{
	ScaleSmall:  stageOrder,
	ScaleMedium: {StagePreparation, StageInformationGathering, StageComplianceCheck, StageThreatIdentification, StageReportPreparation},
	ScaleLarge:  stageOrder,
}

// Stage is one entry of the stage vocabulary.
type Stage struct {
	ID          StageID `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
}

// Scale is the curated stage sequence for one audit scale.
type Scale struct {
	ID     ScaleID   `json:"id" yaml:"id"`
	Title  string    `json:"title" yaml:"title"`
	Stages []StageID `json:"stages" yaml:"stages"`
}

// Clone returns a deep copy of the scale.
func (s Scale) Clone() Scale {
	clone := s
	clone.Stages = cloneStageIDs(s.Stages)
	return clone
}

// Catalog holds the wording of the stage vocabulary and of the scales.
type Catalog struct {
	stages map[StageID]Stage
	scales map[ScaleID]Scale
}

// NewCatalog validates the tables and builds an immutable catalog. stages must
// list the six canonical stages in canonical order. A scale without stages
// gets its curated sequence; a scale that lists stages must match it.
func NewCatalog(stages []Stage, scales []Scale) (*Catalog, error) {
	if len(stages) != len(stageOrder) {
		return nil, fmt.Errorf("workflow: expected %d stages, got %d", len(stageOrder), len(stages))
	}
	c := &Catalog{
		stages: make(map[StageID]Stage, len(stages)),
		scales: make(map[ScaleID]Scale, len(scales)),
	}
	for idx, stage := range stages {
		stage.ID = StageID(strings.TrimSpace(string(stage.ID)))
		stage.Title = strings.TrimSpace(stage.Title)
		stage.Description = strings.TrimSpace(stage.Description)
		if stage.ID != stageOrder[idx] {
			return nil, fmt.Errorf("workflow: stages[%d]: expected %s, got %q", idx, stageOrder[idx], stage.ID)
		}
		if stage.Description == "" {
			return nil, fmt.Errorf("workflow: stage %s: description is required", stage.ID)
		}
		if stage.Title == "" {
			stage.Title = string(stage.ID)
		}
		c.stages[stage.ID] = stage
	}
	for idx, scale := range scales {
		scale.ID = ScaleID(strings.ToLower(strings.TrimSpace(string(scale.ID))))
		want, ok := scaleSequences[scale.ID]
		if !ok {
			return nil, fmt.Errorf("workflow: scales[%d]: unsupported scale %q", idx, scale.ID)
		}
		if _, exists := c.scales[scale.ID]; exists {
			return nil, fmt.Errorf("workflow: duplicate scale %s", scale.ID)
		}
		if len(scale.Stages) == 0 {
			scale.Stages = want
		} else if !slices.Equal(scale.Stages, want) {
			return nil, fmt.Errorf("workflow: scale %s: stages %v differ from the curated sequence %v", scale.ID, scale.Stages, want)
		}
		if strings.TrimSpace(scale.Title) == "" {
			scale.Title = string(scale.ID)
		}
		c.scales[scale.ID] = scale.Clone()
	}
	for _, id := range scaleOrder {
		if _, ok := c.scales[id]; !ok {
			return nil, fmt.Errorf("workflow: scale %s is not defined", id)
		}
	}
	return c, nil
}

// ListScales returns the scale identifiers in display order.
func (c *Catalog) ListScales() []ScaleID {
	out := make([]ScaleID, len(scaleOrder))
	copy(out, scaleOrder)
	return out
}

// Scale returns the scale definition for id.
func (c *Catalog) Scale(id ScaleID) (Scale, error) {
	scale, ok := c.scales[id]
	if !ok {
		return Scale{}, fmt.Errorf("%w: %q", ErrUnknownScale, id)
	}
	return scale.Clone(), nil
}

// StagesFor returns the ordered stage sequence for a scale.
func (c *Catalog) StagesFor(id ScaleID) ([]StageID, error) {
	scale, err := c.Scale(id)
	if err != nil {
		return nil, err
	}
	return scale.Stages, nil
}

// Stage looks up a stage by id.
func (c *Catalog) Stage(id StageID) (Stage, bool) {
	stage, ok := c.stages[id]
	return stage, ok
}

// Describe returns the description of a stage, or "" when the stage is not
// part of the vocabulary.
func (c *Catalog) Describe(id StageID) string {
	return c.stages[id].Description
}

// Title returns the display title of a stage, falling back to its id.
func (c *Catalog) Title(id StageID) string {
	if stage, ok := c.stages[id]; ok {
		return stage.Title
	}
	return string(id)
}

func cloneStageIDs(values []StageID) []StageID {
	if len(values) == 0 {
		return nil
	}
	clone := make([]StageID, len(values))
	copy(clone, values)
	return clone
}
