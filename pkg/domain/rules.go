package domain

import (
	"context"
	"iter"
)

// Rule is an executable data-quality check. Evaluate is read-only and yields
// a finite sequence of issues that may be drained once per call.
type Rule interface {
	ID() string
	Severity() Severity
	Evaluate(model Model) iter.Seq[Issue]
}

// RulesEngine orchestrates rule evaluation in registration order.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance seeded with rules.
func NewRulesEngine(rules ...Rule) *RulesEngine {
	e := &RulesEngine{}
	for _, r := range rules {
		e.Register(r)
	}
	return e
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	if rule == nil {
		return
	}
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in evaluation order.
func (e *RulesEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate executes all registered rules and concatenates their issues.
func (e *RulesEngine) Evaluate(ctx context.Context, model Model) (Result, error) {
	return e.EvaluateFunc(ctx, model, nil)
}

// EvaluateFunc executes all registered rules, invoking after (when non-nil)
// with each rule's issues once that rule has been drained. Cancellation is
// checked between rules.
func (e *RulesEngine) EvaluateFunc(ctx context.Context, model Model, after func(rule Rule, issues []Issue)) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		var produced []Issue
		for issue := range rule.Evaluate(model) {
			produced = append(produced, issue)
		}
		if after != nil {
			after(rule, produced)
		}
		combined.Merge(Result{Issues: produced})
	}
	return combined, nil
}
