package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Asset statuses.
const (
	StatusRewritten = "rewritten"
	StatusFailed    = "failed"
	StatusCopied    = "copied"
)

// AssetRow is one written asset.
type AssetRow struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Bytes  int    `json:"bytes"`
	Mapped bool   `json:"mapped"`
}

// Report summarises one build pass.
type Report struct {
	Compilation string        `json:"compilation"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
	Assets      []AssetRow    `json:"assets"`
	Errors      []string      `json:"errors"`
	Warnings    []string      `json:"warnings"`
}

// Count returns how many assets have the given status.
func (rep *Report) Count(status string) int {
	n := 0
	for _, a := range rep.Assets {
		if a.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether the pass produced errors.
func (rep *Report) Failed() bool {
	return len(rep.Errors) > 0
}

// Summary is the one-line outcome of the pass.
func (rep *Report) Summary() string {
	return fmt.Sprintf("%d assets: %d rewritten, %d copied, %d failed in %s",
		len(rep.Assets), rep.Count(StatusRewritten), rep.Count(StatusCopied),
		rep.Count(StatusFailed), rep.Duration.Round(time.Millisecond))
}

// RenderReport writes rep in the renderer's mode. Errors and warnings go to
// the error stream except in JSON mode, where they are part of the document.
func (r *Renderer) RenderReport(rep *Report) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		rep.DurationMS = rep.Duration.Milliseconds()
		if rep.Errors == nil {
			rep.Errors = []string{}
		}
		if rep.Warnings == nil {
			rep.Warnings = []string{}
		}
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	if len(rep.Assets) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.AppendHeader(table.Row{"Asset", "Status", "Size", "Map"})
		for _, a := range rep.Assets {
			mapped := ""
			if a.Mapped {
				mapped = "yes"
			}
			t.AppendRow(table.Row{a.Name, r.status(a.Status, mode), humanize.Bytes(uint64(a.Bytes)), mapped})
		}
		if mode == ModeMarkdown {
			t.RenderMarkdown()
			_, _ = fmt.Fprintln(r.out)
		} else {
			t.SetStyle(table.StyleLight)
			t.Render()
		}
	}
	r.Println("%s", rep.Summary())

	for _, w := range rep.Warnings {
		r.Errorln("WARNING in %s", w)
	}
	for _, e := range rep.Errors {
		r.Errorln("ERROR in %s", e)
	}
	return nil
}

func (r *Renderer) status(s string, mode Mode) string {
	if mode != ModeText || !r.isTTY {
		return s
	}
	switch s {
	case StatusFailed:
		return text.FgRed.Sprint(s)
	case StatusRewritten:
		return text.FgGreen.Sprint(s)
	}
	return s
}
