package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"ifcqa/pkg/domain"
)

// Artifact names written for every run.
const (
	SummaryJSON = "report.json"
	IssuesJSON  = "issues.json"
	IssuesCSV   = "issues.csv"
	ReportHTML  = "report.html"
)

// CSVHeader is the column order of issues.csv.
var CSVHeader = []string{"RuleId", "Severity", "IfcClass", "GlobalId", "Name", "Message"}

// Artifact is a rendered report file.
type Artifact struct {
	Name        string
	ContentType string
	Payload     []byte
}

// Render produces the four run artifacts in a fixed order.
func Render(summary domain.ReportSummary, issues []domain.Issue) ([]Artifact, error) {
	if issues == nil {
		issues = []domain.Issue{}
	}
	summaryJSON, err := marshalIndent(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	issuesJSON, err := marshalIndent(issues)
	if err != nil {
		return nil, fmt.Errorf("marshal issues: %w", err)
	}
	issuesCSV, err := renderCSV(issues)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return []Artifact{
		{Name: SummaryJSON, ContentType: "application/json", Payload: summaryJSON},
		{Name: IssuesJSON, ContentType: "application/json", Payload: issuesJSON},
		{Name: IssuesCSV, ContentType: "text/csv", Payload: issuesCSV},
		{Name: ReportHTML, ContentType: "text/html", Payload: renderHTML(summary, issues)},
	}, nil
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderCSV(issues []domain.Issue) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, issue := range issues {
		record := []string{
			issue.RuleID,
			string(issue.Severity),
			issue.IfcClass,
			issue.GlobalID,
			issue.Name,
			issue.Message,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderHTML(summary domain.ReportSummary, issues []domain.Issue) []byte {
	buf := &strings.Builder{}
	title := "IFC QA report: " + summary.ModelPath
	buf.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title></head><body>")
	buf.WriteString("<h1>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</h1><p>Ruleset ")
	buf.WriteString(html.EscapeString(summary.Ruleset.Name + " " + summary.Ruleset.Version))
	buf.WriteString(" &middot; ")
	if summary.Pass {
		buf.WriteString("PASS")
	} else {
		buf.WriteString("FAIL")
	}
	if summary.Threshold != "" {
		buf.WriteString(" (threshold " + html.EscapeString(string(summary.Threshold)) + ")")
	}
	buf.WriteString(" &middot; ")
	buf.WriteString(strconv.Itoa(summary.Counts.Total))
	buf.WriteString(" issues, ")
	buf.WriteString(strconv.Itoa(summary.UniqueElementsAffected))
	buf.WriteString(" elements affected</p>")

	buf.WriteString("<h2>By rule</h2><table><thead><tr>")
	for _, h := range []string{"Rule", "Total", "Errors", "Warnings", "Info"} {
		buf.WriteString("<th>" + h + "</th>")
	}
	buf.WriteString("</tr></thead><tbody>")
	for _, rc := range summary.ByRule {
		buf.WriteString("<tr>")
		writeCell(buf, rc.RuleID)
		for _, n := range []int{rc.Total, rc.Errors, rc.Warnings, rc.Info} {
			writeCell(buf, strconv.Itoa(n))
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</tbody></table>")

	buf.WriteString("<h2>Issues</h2><table><thead><tr>")
	for _, h := range CSVHeader {
		buf.WriteString("<th>" + h + "</th>")
	}
	buf.WriteString("</tr></thead><tbody>")
	for _, issue := range issues {
		buf.WriteString("<tr>")
		for _, v := range []string{issue.RuleID, string(issue.Severity), issue.IfcClass, issue.GlobalID, issue.Name, issue.Message} {
			writeCell(buf, v)
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</tbody></table></body></html>")
	return []byte(buf.String())
}

func writeCell(buf *strings.Builder, v string) {
	buf.WriteString("<td>")
	buf.WriteString(html.EscapeString(v))
	buf.WriteString("</td>")
}
