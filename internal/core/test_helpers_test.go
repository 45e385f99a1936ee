package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ifcqa/internal/ifcmodel"
)

type stubClock struct{ t time.Time }

func (s stubClock) Now() time.Time { return s.t }

type captureLogger struct{ calls []string }

func (c *captureLogger) Debug(msg string, _ ...any) { c.calls = append(c.calls, "d:"+msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.calls = append(c.calls, "i:"+msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.calls = append(c.calls, "w:"+msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.calls = append(c.calls, "e:"+msg) }

func (c *captureLogger) has(call string) bool {
	for _, got := range c.calls {
		if got == call {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

const baselineRuleset = `{
  "name": "Baseline",
  "version": "2024.1",
  "rules": [
    {"type": "MissingName", "id": "N1"},
    {"type": "RequirePset", "id": "W101", "severity": "Error", "ifcClass": "IfcWall", "pset": "Pset_WallCommon"}
  ]
}`

// writeFixtures writes a ruleset and a small model to a temp dir: one
// unnamed wall that has Pset_WallCommon and one named wall without it.
func writeFixtures(t *testing.T) (rulesetPath, modelPath string) {
	t.Helper()
	dir := t.TempDir()
	rulesetPath = filepath.Join(dir, "rules.json")
	if err := os.WriteFile(rulesetPath, []byte(baselineRuleset), 0o600); err != nil {
		t.Fatalf("write ruleset: %v", err)
	}
	b := ifcmodel.NewBuilder("")
	storey := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcBuildingStorey", GlobalID: "S1", Name: "Level 1"})
	w1 := b.Add(ifcmodel.EntityRecord{
		IfcClass: "IfcWall",
		GlobalID: "W1",
		Psets:    ifcmodel.Sets{"Pset_WallCommon": {"IsExternal": true}},
		Qtos:     ifcmodel.Sets{"Qto_WallBaseQuantities": {"Length": 3.5}},
	})
	w2 := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: "W2", Name: "Wall 2"})
	b.Contain(storey, w1, w2)
	data, err := ifcmodel.Encode(b.Snapshot())
	if err != nil {
		t.Fatalf("encode model: %v", err)
	}
	modelPath = filepath.Join(dir, "model.json")
	if err := os.WriteFile(modelPath, data, 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return rulesetPath, modelPath
}
