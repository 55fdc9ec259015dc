package workflow

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func mustDefaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return catalog
}

func TestStagesForMediumOmitsAnalysis(t *testing.T) {
	catalog := mustDefaultCatalog(t)
	got, err := catalog.StagesFor(ScaleMedium)
	if err != nil {
		t.Fatalf("StagesFor(medium): %v", err)
	}
	want := []StageID{
		StagePreparation,
		StageInformationGathering,
		StageComplianceCheck,
		StageThreatIdentification,
		StageReportPreparation,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("StagesFor(medium) = %v, want %v", got, want)
	}
}

func TestStagesForIsDeterministicAndValid(t *testing.T) {
	catalog := mustDefaultCatalog(t)
	for _, scale := range catalog.ListScales() {
		first, err := catalog.StagesFor(scale)
		if err != nil {
			t.Fatalf("StagesFor(%s): %v", scale, err)
		}
		if len(first) == 0 {
			t.Fatalf("StagesFor(%s) returned no stages", scale)
		}
		for _, id := range first {
			if _, ok := catalog.Stage(id); !ok {
				t.Fatalf("scale %s references unknown stage %s", scale, id)
			}
		}
		second, _ := catalog.StagesFor(scale)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("StagesFor(%s) not stable: %v vs %v", scale, first, second)
		}
	}
}

func TestStagesForReturnsCopy(t *testing.T) {
	catalog := mustDefaultCatalog(t)
	stages, _ := catalog.StagesFor(ScaleSmall)
	stages[0] = "Tampered"
	again, _ := catalog.StagesFor(ScaleSmall)
	if again[0] != StagePreparation {
		t.Fatalf("catalog mutated through returned slice: %v", again)
	}
}

func TestStagesForUnknownScaleFails(t *testing.T) {
	catalog := mustDefaultCatalog(t)
	if _, err := catalog.StagesFor("huge"); !errors.Is(err, ErrUnknownScale) {
		t.Fatalf("expected ErrUnknownScale, got %v", err)
	}
}

func TestListScalesOrder(t *testing.T) {
	catalog := mustDefaultCatalog(t)
	want := []ScaleID{ScaleSmall, ScaleMedium, ScaleLarge}
	if got := catalog.ListScales(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListScales = %v, want %v", got, want)
	}
}

func TestDescribeIsTotal(t *testing.T) {
	catalog := mustDefaultCatalog(t)
	for _, id := range stageOrder {
		if catalog.Describe(id) == "" {
			t.Fatalf("stage %s has empty description", id)
		}
	}
	if !strings.Contains(catalog.Describe(StageAnalysis), "analyse the collected information") {
		t.Fatalf("unexpected analysis description: %q", catalog.Describe(StageAnalysis))
	}
	for _, unknown := range []StageID{"", "analysis", "Closing", "Preparation "} {
		if got := catalog.Describe(unknown); got != "" {
			t.Fatalf("Describe(%q) = %q, want empty", unknown, got)
		}
	}
}

func canonicalStages() []Stage {
	stages := make([]Stage, len(stageOrder))
	for i, id := range stageOrder {
		stages[i] = Stage{ID: id, Description: "about " + string(id)}
	}
	return stages
}

func canonicalScales(override Scale) []Scale {
	scales := []Scale{{ID: ScaleSmall}, {ID: ScaleMedium}, {ID: ScaleLarge}}
	for i := range scales {
		if scales[i].ID == override.ID {
			scales[i] = override
		}
	}
	return scales
}

func TestNewCatalogValidation(t *testing.T) {
	medium := []StageID{StagePreparation, StageInformationGathering, StageComplianceCheck, StageThreatIdentification, StageReportPreparation}
	cases := []struct {
		name   string
		stages []Stage
		scales []Scale
		want   string
	}{
		{name: "valid with implied sequences", stages: canonicalStages(), scales: canonicalScales(Scale{})},
		{name: "valid with explicit sequence", stages: canonicalStages(), scales: canonicalScales(Scale{ID: ScaleMedium, Stages: medium})},
		{name: "foreign vocabulary", stages: []Stage{{ID: "Foo", Description: "foo"}}, scales: canonicalScales(Scale{}), want: "expected 6 stages"},
		{name: "renamed stage", stages: func() []Stage {
			s := canonicalStages()
			s[2].ID = "Foo"
			return s
		}(), scales: canonicalScales(Scale{}), want: "expected Analysis"},
		{name: "reordered vocabulary", stages: func() []Stage {
			s := canonicalStages()
			s[0], s[1] = s[1], s[0]
			return s
		}(), scales: canonicalScales(Scale{}), want: "expected Preparation"},
		{name: "medium regains analysis", stages: canonicalStages(), scales: canonicalScales(Scale{ID: ScaleMedium, Stages: stageOrder}), want: "differ from the curated sequence"},
		{name: "small drops a stage", stages: canonicalStages(), scales: canonicalScales(Scale{ID: ScaleSmall, Stages: medium}), want: "differ from the curated sequence"},
		{name: "missing scale", stages: canonicalStages(), scales: canonicalScales(Scale{})[:2], want: "large is not defined"},
		{name: "duplicate scale", stages: canonicalStages(), scales: append(canonicalScales(Scale{}), Scale{ID: ScaleSmall}), want: "duplicate scale"},
		{name: "unsupported scale", stages: canonicalStages(), scales: append(canonicalScales(Scale{}), Scale{ID: "huge"}), want: "unsupported scale"},
		{name: "blank description", stages: func() []Stage {
			s := canonicalStages()
			s[3].Description = "  "
			return s
		}(), scales: canonicalScales(Scale{}), want: "description is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.stages, tc.scales)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

const russianCatalog = `
stages:
  - id: Preparation
    title: Подготовительный этап
    description: На этом этапе определяются цели и задачи аудита.
  - id: InformationGathering
    title: Сбор информации
    description: Аудиторы собирают информацию о системе информационной безопасности.
  - id: Analysis
    title: Анализ собранной информации
    description: Аудиторы анализируют собранную информацию.
  - id: ComplianceCheck
    title: Соответствие законодательству и стандартам
    description: Проверяется соответствие требованиям законодательства.
  - id: ThreatIdentification
    title: Выявление уязвимостей и угроз
    description: Выявляются уязвимости и возможные угрозы.
  - id: ReportPreparation
    title: Подготовка отчета и рекомендации
    description: По результатам аудита составляется отчет.
scales:
  - id: small
    title: Облегченный аудит для малого бизнеса
  - id: medium
  - id: large
`

func TestLoadCatalogFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(russianCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	catalog, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile: %v", err)
	}
	if got := catalog.Title(StagePreparation); got != "Подготовительный этап" {
		t.Fatalf("unexpected title %q", got)
	}
	scale, err := catalog.Scale(ScaleMedium)
	if err != nil {
		t.Fatalf("Scale(medium): %v", err)
	}
	if scale.Title != "medium" {
		t.Fatalf("expected title to default to id, got %q", scale.Title)
	}
	want := []StageID{StagePreparation, StageInformationGathering, StageComplianceCheck, StageThreatIdentification, StageReportPreparation}
	if !reflect.DeepEqual(scale.Stages, want) {
		t.Fatalf("medium stages = %v, want %v", scale.Stages, want)
	}
}

func TestLoadCatalogFileMissing(t *testing.T) {
	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}

func TestLoadCatalogReaderRejectsForeignVocabulary(t *testing.T) {
	doc := `
stages:
  - id: Foo
    description: foo
scales:
  - id: small
    stages: [Foo]
  - id: medium
    stages: [Foo]
  - id: large
    stages: [Foo]
`
	if _, err := LoadCatalogReader(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected a catalog with a foreign vocabulary to be rejected")
	}
	catalog, err := LoadCatalogReader(strings.NewReader(russianCatalog))
	if err != nil {
		t.Fatalf("LoadCatalogReader: %v", err)
	}
	if got := catalog.Describe(StageAnalysis); got != "Аудиторы анализируют собранную информацию." {
		t.Fatalf("Describe(Analysis) = %q", got)
	}
}

func TestParseCatalogRejectsUnknownFields(t *testing.T) {
	if _, err := ParseCatalogYAML([]byte("stagez: []\n")); err == nil {
		t.Fatalf("expected decode error for unknown field")
	}
	if _, err := ParseCatalogYAML([]byte("  \n")); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
