// Package report formats batch rejections for analyst review.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/seaport-data/fixturewalk/adapter"
	"github.com/seaport-data/fixturewalk/pipeline"
)

// MaxCellWidth is the display width raw-row cells are truncated to.
const MaxCellWidth = 60

// Summary returns a one-line account of the batch.
func Summary(res *pipeline.Result) string {
	kept := len(res.Rejected) - res.Dropped()
	s := fmt.Sprintf("Normalized %s of %s rows, %s rejected",
		humanize.Comma(int64(len(res.Records))),
		humanize.Comma(int64(res.Total)),
		humanize.Comma(int64(res.Dropped())))
	if kept > 0 {
		s += fmt.Sprintf(", %s kept despite validation errors", humanize.Comma(int64(kept)))
	}
	return s + "."
}

// Markdown writes the summary, a per-stage count table and one row per
// rejection.
func Markdown(w io.Writer, res *pipeline.Result) error {
	var lines []string
	lines = append(lines, "# Rejected rows", "", Summary(res))

	if len(res.Rejected) > 0 {
		lines = append(lines, "", "## By stage", "")
		lines = append(lines, Table([]string{"Stage", "Rows"}, stageCounts(res.Rejected))...)

		rows := make([][]string, 0, len(res.Rejected))
		for _, rej := range res.Rejected {
			rows = append(rows, []string{
				humanize.Comma(int64(rej.Index + 1)),
				string(rej.Stage),
				rej.Rule,
				rej.Reason,
				rawCell(rej),
				shortID(rej),
			})
		}
		lines = append(lines, "", "## Rows", "")
		lines = append(lines, Table([]string{"Row", "Stage", "Rule", "Reason", "Raw", "ID"}, rows)...)
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// stageCounts counts rejections per stage in pipeline order.
func stageCounts(rejected []pipeline.Rejection) [][]string {
	order := []adapter.Stage{adapter.StageMap, adapter.StageRules, adapter.StageAssemble, adapter.StageValidate, pipeline.StagePanic}
	counts := make(map[adapter.Stage]int)
	for _, rej := range rejected {
		counts[rej.Stage]++
	}
	var rows [][]string
	for _, stage := range order {
		if n := counts[stage]; n > 0 {
			rows = append(rows, []string{string(stage), humanize.Comma(int64(n))})
		}
	}
	return rows
}

// rawCell renders the raw row as "key=value" pairs in key order.
func rawCell(rej pipeline.Rejection) string {
	keys := make([]string, 0, len(rej.Raw))
	for k := range rej.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(rej.Raw[k]); v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return runewidth.Truncate(strings.Join(parts, "; "), MaxCellWidth, "…")
}

func shortID(rej pipeline.Rejection) string {
	return rej.ID.String()[:8]
}

// Table renders a markdown table with columns padded to the display width of
// their widest cell, so CJK and accented vendor text lines up.
func Table(header []string, rows [][]string) []string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, header)
	table = append(table, rows...)

	widths := make([]int, len(header))
	for _, row := range table {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(escape(row[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	result := make([]string, 0, len(table)+1)
	for i, row := range table {
		result = append(result, line(row, widths))
		if i == 0 {
			sep := make([]string, len(widths))
			for j, w := range widths {
				sep[j] = strings.Repeat("-", w)
			}
			result = append(result, line(sep, widths))
		}
	}
	return result
}

func line(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for j, w := range widths {
		content := ""
		if j < len(cells) {
			content = escape(cells[j])
		}
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(content, w))
		sb.WriteString(" |")
	}
	return sb.String()
}

// escape keeps a cell on one line and out of the column structure.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
