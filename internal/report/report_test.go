package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ifcqa/internal/blob"
	"ifcqa/pkg/domain"
)

func issue(rule string, sev domain.Severity, gid string) domain.Issue {
	return domain.Issue{RuleID: rule, Severity: sev, IfcClass: "IfcWall", GlobalID: gid, Message: rule + " failed"}
}

func TestThresholdEvaluation(t *testing.T) {
	mixed := []domain.Issue{
		issue("a", domain.SeverityError, "1"),
		issue("b", domain.SeverityWarning, "2"),
		issue("b", domain.SeverityWarning, "3"),
	}
	if Passes(mixed, domain.ThresholdWarning) || Passes(mixed, domain.ThresholdError) {
		t.Fatalf("error plus warnings must fail at Warning and Error")
	}
	if !Passes(mixed, domain.ThresholdNone) {
		t.Fatalf("None never fails")
	}
	var info []domain.Issue
	for range 5 {
		info = append(info, issue("i", domain.SeverityInfo, "x"))
	}
	if !Passes(info, domain.ThresholdError) {
		t.Fatalf("info only must pass at Error")
	}
	if Passes(info, domain.ThresholdInfo) {
		t.Fatalf("info must fail at Info")
	}
	if !Passes(nil, domain.ThresholdInfo) {
		t.Fatalf("no issues always pass")
	}
}

func TestAggregate(t *testing.T) {
	issues := []domain.Issue{
		issue("R1", domain.SeverityWarning, "G1"),
		issue("R2", domain.SeverityError, "G2"),
		issue("R2", domain.SeverityError, "G1"),
		issue("R3", domain.SeverityInfo, " "),
		issue("R0", domain.SeverityInfo, ""),
	}
	ref := domain.RulesetRef{Name: "Base", Version: "1"}
	summary := Aggregate("m.json", ref, issues, domain.ThresholdError)
	if summary.ModelPath != "m.json" || summary.Ruleset != ref {
		t.Fatalf("unexpected identity %+v", summary)
	}
	want := domain.Counts{Total: 5, Errors: 2, Warnings: 1, Info: 2}
	if summary.Counts != want {
		t.Fatalf("expected %+v, got %+v", want, summary.Counts)
	}
	if summary.UniqueElementsAffected != 2 {
		t.Fatalf("blank globalIds must not count, got %d", summary.UniqueElementsAffected)
	}
	order := []string{"R2", "R0", "R1", "R3"}
	if len(summary.ByRule) != len(order) {
		t.Fatalf("unexpected byRule %+v", summary.ByRule)
	}
	for i, id := range order {
		if summary.ByRule[i].RuleID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, summary.ByRule[i].RuleID)
		}
	}
	if summary.ByRule[0].Errors != 2 || summary.ByRule[0].Total != 2 {
		t.Fatalf("unexpected R2 counts %+v", summary.ByRule[0])
	}
	if summary.Pass {
		t.Fatalf("errors must fail at Error")
	}
	empty := Aggregate("m.json", ref, nil, domain.ThresholdInfo)
	if !empty.Pass || empty.ByRule == nil || empty.Counts.Total != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	issues := []domain.Issue{issue("b", domain.SeverityInfo, "1"), issue("a", domain.SeverityInfo, "2")}
	first := Aggregate("m", domain.RulesetRef{}, issues, domain.ThresholdNone)
	second := Aggregate("m", domain.RulesetRef{}, issues, domain.ThresholdNone)
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Fatalf("aggregate not deterministic")
	}
	if first.ByRule[0].RuleID != "a" {
		t.Fatalf("ties break on rule id, got %s", first.ByRule[0].RuleID)
	}
}

func TestRenderArtifacts(t *testing.T) {
	issues := []domain.Issue{
		{RuleID: "R1", Severity: domain.SeverityError, IfcClass: "IfcDoor", GlobalID: "G1", Name: `Door, "main"`, Message: "<bad> value"},
	}
	summary := Aggregate("m.json", domain.RulesetRef{Name: "Base", Version: "1"}, issues, domain.ThresholdWarning)
	artifacts, err := Render(summary, issues)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	names := []string{SummaryJSON, IssuesJSON, IssuesCSV, ReportHTML}
	if len(artifacts) != len(names) {
		t.Fatalf("expected %d artifacts", len(names))
	}
	for i, a := range artifacts {
		if a.Name != names[i] || a.ContentType == "" || len(a.Payload) == 0 {
			t.Fatalf("unexpected artifact %d: %+v", i, a.Name)
		}
	}

	var decoded map[string]any
	if err := json.Unmarshal(artifacts[0].Payload, &decoded); err != nil {
		t.Fatalf("summary json: %v", err)
	}
	for _, key := range []string{"modelPath", "ruleset", "counts", "uniqueElementsAffected", "byRule", "pass"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("summary missing %s", key)
		}
	}

	rows, err := csv.NewReader(bytes.NewReader(artifacts[2].Payload)).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if strings.Join(rows[0], ",") != "RuleId,Severity,IfcClass,GlobalId,Name,Message" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][4] != `Door, "main"` {
		t.Fatalf("csv quoting lost value: %q", rows[1][4])
	}

	page := string(artifacts[3].Payload)
	if strings.Contains(page, "<bad>") || !strings.Contains(page, "&lt;bad&gt;") || !strings.Contains(page, "FAIL") {
		t.Fatalf("html not escaped or missing status")
	}
}

func TestRenderEmptyIssuesIsArray(t *testing.T) {
	artifacts, err := Render(Aggregate("m", domain.RulesetRef{}, nil, domain.ThresholdNone), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(string(artifacts[1].Payload)) != "[]" {
		t.Fatalf("expected empty array, got %s", artifacts[1].Payload)
	}
}

func TestPublishAndWriteDir(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	artifacts := []Artifact{{Name: "report.json", ContentType: "application/json", Payload: []byte("{}")}}
	keys, err := Publish(ctx, store, "run-1", artifacts)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(keys) != 1 || keys[0] != "runs/run-1/report.json" {
		t.Fatalf("unexpected keys %v", keys)
	}
	info, err := store.Head(ctx, keys[0])
	if err != nil || info.ContentType != "application/json" || info.Metadata["run"] != "run-1" {
		t.Fatalf("unexpected head %+v %v", info, err)
	}
	if _, err := Publish(ctx, store, "run-1", artifacts); !errors.Is(err, blob.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := Publish(ctx, nil, "run-2", artifacts); err == nil {
		t.Fatalf("expected error without store")
	}

	dir := filepath.Join(t.TempDir(), "out", "nested")
	paths, err := WriteDir(dir, artifacts)
	if err != nil {
		t.Fatalf("write dir: %v", err)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil || string(data) != "{}" {
		t.Fatalf("unexpected file %q %v", data, err)
	}
}
