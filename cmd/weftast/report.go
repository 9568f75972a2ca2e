package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/config"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/lower"
	"github.com/weftlang/weft/internal/sourcecode"
)

type unitReport struct {
	Path     string        `json:"path"`
	Unit     string        `json:"unit"`
	Entry    string        `json:"entry"`
	Ok       bool          `json:"ok"`
	Recovery bool          `json:"recovery"`
	Duration time.Duration `json:"durationNs"`
	RunID    string        `json:"run"`
	Errors   []errorReport `json:"errors,omitempty"`

	//number of nil literals substituted for invalid constructs
	Placeholders int `json:"placeholders,omitempty"`
	Tree         any `json:"tree,omitempty"`

	errors []*langerr.Error
}

type errorReport struct {
	Code     string                    `json:"code"`
	Message  string                    `json:"message"`
	Location string                    `json:"location,omitempty"`
	Position *sourcecode.PositionRange `json:"position,omitempty"`
	Props    map[string]any            `json:"props,omitempty"`
}

func newUnitReport(path string, job lower.Job, result *lower.Result) unitReport {
	report := unitReport{
		Path:     path,
		Unit:     job.Unit.Name(),
		Entry:    job.Entry.String(),
		Ok:       result.Ok(),
		Recovery: result.Recovery,
		Duration: result.BuildDuration,
		RunID:    result.RunID.String(),
		errors:   result.Errors,
	}

	if result.Node != nil {
		report.Tree = ast.DumpValue(result.Node)
		report.Placeholders = len(ast.FindRecoveredPlaceholders(result.Node))
	}

	for _, e := range result.Errors {
		errReport := errorReport{
			Code:    e.Code.String(),
			Message: e.Message,
			Props:   e.Properties,
		}
		if e.Src != nil && !e.Src.IsZero() {
			pos := e.Src.Position()
			errReport.Location = e.Src.Location()
			errReport.Position = &pos
		}
		report.Errors = append(report.Errors, errReport)
	}
	return report
}

func writeReports(w io.Writer, format string, reports []unitReport) error {
	switch format {
	case config.FORMAT_JSON:
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		for _, report := range reports {
			if err := writeDigest(w, report); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeDigest(w io.Writer, report unitReport) error {
	status := "ok"
	switch {
	case report.Ok:
	case report.Recovery:
		status = fmt.Sprintf("%d error(s) recovered", len(report.errors))
	default:
		status = "failed"
	}

	if _, err := fmt.Fprintf(w, "%s (%s): %s\n", report.Path, report.Entry, status); err != nil {
		return err
	}

	for _, e := range report.errors {
		if _, err := io.WriteString(w, e.Digest()); err != nil {
			return err
		}
	}
	return nil
}
