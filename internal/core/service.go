// Package core wires the rule engine into a service: it loads rulesets,
// opens models, evaluates rules, aggregates reports, publishes artifacts,
// and records run history, with logging, metrics, and tracing around each
// step.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ifcqa/internal/blob"
	"ifcqa/internal/ifcmodel"
	"ifcqa/internal/report"
	"ifcqa/internal/rules"
	"ifcqa/pkg/domain"
)

// Operation names reported to loggers, metrics, and tracers.
const (
	OpLoadRuleset = "load_ruleset"
	OpOpenModel   = "open_model"
	OpEvaluate    = "evaluate"
	OpCheck       = "check"
	OpSummary     = "summary"
	OpCatalog     = "catalog"
	OpPublish     = "publish_artifacts"
	OpSaveRun     = "save_run"
)

// Service runs checks against building models.
type Service struct {
	logger    Logger
	clock     Clock
	metrics   MetricsRecorder
	tracer    Tracer
	runs      domain.RunStore
	artifacts blob.Store
	open      domain.ModelOpener
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetricsRecorder sets the metrics sink. Recorders that implement
// IssueRecorder also receive per-rule issue counts.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithRunStore enables run history.
func WithRunStore(store domain.RunStore) Option {
	return func(s *Service) { s.runs = store }
}

// WithArtifactStore enables artifact publishing. Unless WithModelOpener is
// also given, blob:// model paths resolve against the same store.
func WithArtifactStore(store blob.Store) Option {
	return func(s *Service) { s.artifacts = store }
}

// WithModelOpener overrides how model paths are opened.
func WithModelOpener(open domain.ModelOpener) Option {
	return func(s *Service) { s.open = open }
}

// WithIDGenerator overrides run id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService constructs a service. Without options it logs nothing, keeps
// no history, and opens models from the filesystem.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger:  noopLogger{},
		clock:   systemClock{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.open == nil {
		s.open = ifcmodel.Opener(s.artifacts)
	}
	return s
}

// run wraps fn with a span, a metrics observation, and failure logging.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, s.clock.Now().Sub(start))
	if err != nil {
		s.logger.Error("operation failed", "op", op, "error", err)
	}
	return err
}

// LoadRuleset reads and validates the ruleset at path.
func (s *Service) LoadRuleset(ctx context.Context, path string) (rules.Ruleset, error) {
	var rs rules.Ruleset
	err := s.run(ctx, OpLoadRuleset, func(context.Context) error {
		var err error
		rs, err = rules.Load(path)
		return err
	})
	if err != nil {
		return rules.Ruleset{}, err
	}
	s.logger.Info("ruleset loaded", "path", path, "name", rs.Spec.Name, "version", rs.Spec.Version, "rules", len(rs.Rules))
	return rs, nil
}

// OpenModel opens the model at path through the configured opener.
func (s *Service) OpenModel(ctx context.Context, path string) (domain.Model, error) {
	var model domain.Model
	err := s.run(ctx, OpOpenModel, func(ctx context.Context) error {
		var err error
		model, err = s.open(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("model opened", "path", path, "entities", len(model.Entities()))
	return model, nil
}

// Analysis is the flat issue stream for one model.
type Analysis struct {
	ModelPath string         `json:"modelPath"`
	Issues    []domain.Issue `json:"issues"`
}

// AnalyzeWithRules opens the model and evaluates ruleList in order,
// concatenating their issues without deduplication.
func (s *Service) AnalyzeWithRules(ctx context.Context, modelPath string, ruleList []domain.Rule) (Analysis, error) {
	model, err := s.OpenModel(ctx, modelPath)
	if err != nil {
		return Analysis{}, err
	}
	return s.Evaluate(ctx, model, ruleList)
}

// Evaluate runs ruleList against an already opened model.
func (s *Service) Evaluate(ctx context.Context, model domain.Model, ruleList []domain.Rule) (Analysis, error) {
	engine := domain.NewRulesEngine(ruleList...)
	issueRecorder, _ := s.metrics.(IssueRecorder)
	var result domain.Result
	err := s.run(ctx, OpEvaluate, func(ctx context.Context) error {
		var err error
		result, err = engine.EvaluateFunc(ctx, model, func(rule domain.Rule, issues []domain.Issue) {
			s.logger.Debug("rule evaluated", "rule", rule.ID(), "issues", len(issues))
			if issueRecorder != nil {
				issueRecorder.ObserveIssues(rule.ID(), rule.Severity(), len(issues))
			}
		})
		return err
	})
	if err != nil {
		return Analysis{}, err
	}
	issues := result.Issues
	if issues == nil {
		issues = []domain.Issue{}
	}
	return Analysis{ModelPath: model.Path(), Issues: issues}, nil
}

// Analyze returns the rule-independent summary of the model at path.
func (s *Service) Analyze(ctx context.Context, modelPath string) (Summary, error) {
	model, err := s.OpenModel(ctx, modelPath)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	_ = s.run(ctx, OpSummary, func(context.Context) error {
		summary = Summarize(model)
		return nil
	})
	return summary, nil
}

// Catalog inventories the sets of the model at path.
func (s *Service) Catalog(ctx context.Context, modelPath string) (Catalog, error) {
	model, err := s.OpenModel(ctx, modelPath)
	if err != nil {
		return Catalog{}, err
	}
	var c Catalog
	_ = s.run(ctx, OpCatalog, func(context.Context) error {
		c = BuildCatalog(model)
		return nil
	})
	return c, nil
}

// CheckRequest describes one check. When Ruleset is set it is used as is;
// otherwise RulesetPath is loaded.
type CheckRequest struct {
	ModelPath   string
	RulesetPath string
	Ruleset     *rules.Ruleset
	Threshold   domain.Threshold
}

// CheckResult is everything a check produced.
type CheckResult struct {
	Run       domain.RunRecord
	Issues    []domain.Issue
	Artifacts []report.Artifact
}

// Summary returns the aggregated report payload.
func (r CheckResult) Summary() domain.ReportSummary { return r.Run.Summary }

// Passed reports whether the run stayed under its threshold.
func (r CheckResult) Passed() bool { return r.Run.Summary.Pass }

// Check loads the ruleset (configuration errors abort before the model is
// opened), evaluates it, aggregates the report, publishes artifacts when an
// artifact store is configured, and records the run when a run store is
// configured.
func (s *Service) Check(ctx context.Context, req CheckRequest) (CheckResult, error) {
	var result CheckResult
	err := s.run(ctx, OpCheck, func(ctx context.Context) error {
		var err error
		result, err = s.check(ctx, req)
		return err
	})
	if err != nil {
		return CheckResult{}, err
	}
	s.logger.Info("check finished",
		"run", result.Run.ID,
		"model", req.ModelPath,
		"issues", result.Run.Summary.Counts.Total,
		"pass", result.Run.Summary.Pass,
	)
	return result, nil
}

func (s *Service) check(ctx context.Context, req CheckRequest) (CheckResult, error) {
	started := s.clock.Now()
	threshold := req.Threshold
	if threshold == "" {
		threshold = domain.ThresholdError
	}
	var rs rules.Ruleset
	if req.Ruleset != nil {
		rs = *req.Ruleset
	} else {
		loaded, err := s.LoadRuleset(ctx, req.RulesetPath)
		if err != nil {
			return CheckResult{}, err
		}
		rs = loaded
	}
	analysis, err := s.AnalyzeWithRules(ctx, req.ModelPath, rs.Rules)
	if err != nil {
		return CheckResult{}, err
	}
	summary := report.Aggregate(analysis.ModelPath, rs.Ref(), analysis.Issues, threshold)
	artifacts, err := report.Render(summary, analysis.Issues)
	if err != nil {
		return CheckResult{}, err
	}
	run := domain.RunRecord{ID: s.newID(), StartedAt: started, Summary: summary}
	if s.artifacts != nil {
		err := s.run(ctx, OpPublish, func(ctx context.Context) error {
			keys, err := report.Publish(ctx, s.artifacts, run.ID, artifacts)
			run.Artifacts = keys
			return err
		})
		if err != nil {
			return CheckResult{}, err
		}
	}
	run.FinishedAt = s.clock.Now()
	if s.runs != nil {
		err := s.run(ctx, OpSaveRun, func(ctx context.Context) error {
			return s.runs.SaveRun(ctx, run)
		})
		if err != nil {
			return CheckResult{}, fmt.Errorf("save run %s: %w", run.ID, err)
		}
	}
	return CheckResult{Run: run, Issues: analysis.Issues, Artifacts: artifacts}, nil
}

// ErrNoRunStore is returned by history queries when no run store is set.
var ErrNoRunStore = errors.New("run history not configured")

// Runs lists recorded runs, newest first.
func (s *Service) Runs(ctx context.Context) ([]domain.RunRecord, error) {
	if s.runs == nil {
		return nil, ErrNoRunStore
	}
	return s.runs.ListRuns(ctx)
}

// Run returns one recorded run.
func (s *Service) Run(ctx context.Context, id string) (domain.RunRecord, bool, error) {
	if s.runs == nil {
		return domain.RunRecord{}, false, ErrNoRunStore
	}
	return s.runs.GetRun(ctx, id)
}
