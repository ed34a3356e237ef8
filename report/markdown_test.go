package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/seaport-data/fixturewalk/adapter"
	"github.com/seaport-data/fixturewalk/hub"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/pipeline"
)

func TestTable(t *testing.T) {
	lines := Table([]string{"Vessel", "Port"}, [][]string{
		{"GAS VENUS", "Santos"},
		{"大庆 1", "Qingdao"},
		{"SÃO PAULO", "a|b"},
	})

	want := []string{
		"| Vessel    | Port    |",
		"| --------- | ------- |",
		"| GAS VENUS | Santos  |",
		"| 大庆 1    | Qingdao |",
		"| SÃO PAULO | a\\|b    |",
	}
	if len(lines) != len(want) {
		t.Fatalf("Table() = %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	for i, l := range lines {
		if w := runewidth.StringWidth(l); w != runewidth.StringWidth(lines[0]) {
			t.Errorf("line %d display width = %d, want %d", i, w, runewidth.StringWidth(lines[0]))
		}
	}
}

func TestTable_MinimumWidth(t *testing.T) {
	lines := Table([]string{"#"}, [][]string{{"1"}})
	if lines[1] != "| --- |" {
		t.Errorf("separator = %q, want %q", lines[1], "| --- |")
	}
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Total:   1300,
		Records: make([]hub.Record, 1234),
		Rejected: []pipeline.Rejection{
			{
				ID:     uuid.MustParse("6f1c2a3b-0000-4000-8000-000000000001"),
				Index:  41,
				Stage:  adapter.StageAssemble,
				Reason: "record dropped: laycan is missing",
				Raw:    mapping.RawRecord{"Vessel": "Gas Venus", "Dates": "PPT ON", "Rate": ""},
			},
			{
				ID:     uuid.MustParse("6f1c2a3b-0000-4000-8000-000000000002"),
				Index:  1099,
				Stage:  adapter.StageRules,
				Rule:   "failed_fixture",
				Reason: "rules: skipped by rule (rule failed_fixture)",
				Raw:    mapping.RawRecord{"Vessel Name": "Ocean Star"},
			},
			{
				ID:     uuid.MustParse("6f1c2a3b-0000-4000-8000-000000000003"),
				Index:  1200,
				Stage:  adapter.StageValidate,
				Reason: "spot_charter validation failed",
				Kept:   true,
			},
		},
	}
}

func TestSummary(t *testing.T) {
	got := Summary(sampleResult())
	want := "Normalized 1,234 of 1,300 rows, 2 rejected, 1 kept despite validation errors."
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	got = Summary(&pipeline.Result{Total: 3, Records: make([]hub.Record, 3)})
	if got != "Normalized 3 of 3 rows, 0 rejected." {
		t.Errorf("Summary() = %q", got)
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, sampleResult()); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Rejected rows",
		"| rules    | 1    |",
		"| 1,100 | rules    | failed_fixture |",
		"Dates=PPT ON; Vessel=Gas Venus",
		"6f1c2a3b",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Rate=") {
		t.Error("empty raw cells should be omitted")
	}

	rules := strings.Index(out, "| rules")
	assemble := strings.Index(out, "| assemble")
	if rules < 0 || assemble < 0 || rules > assemble {
		t.Error("stage counts should follow pipeline order")
	}
}

func TestMarkdown_NoRejections(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, &pipeline.Result{Total: 1, Records: make([]hub.Record, 1)}); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if strings.Contains(buf.String(), "|") {
		t.Errorf("Markdown() rendered a table with no rejections:\n%s", buf.String())
	}
}

func TestRawCell_Truncates(t *testing.T) {
	rej := pipeline.Rejection{Raw: mapping.RawRecord{"Notes": strings.Repeat("x", 200)}}
	if w := runewidth.StringWidth(rawCell(rej)); w > MaxCellWidth {
		t.Errorf("rawCell() width = %d, want <= %d", w, MaxCellWidth)
	}
}
