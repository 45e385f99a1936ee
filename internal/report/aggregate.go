// Package report turns a flat issue stream into summaries and renders the
// run artifacts (JSON, CSV, HTML).
package report

import (
	"sort"
	"strings"

	"ifcqa/pkg/domain"
)

// Aggregate groups issues by rule, tallies severities, counts distinct
// affected elements, and evaluates threshold.
func Aggregate(modelPath string, ruleset domain.RulesetRef, issues []domain.Issue, threshold domain.Threshold) domain.ReportSummary {
	summary := domain.ReportSummary{
		ModelPath: modelPath,
		Ruleset:   ruleset,
		Threshold: threshold,
		ByRule:    []domain.RuleCounts{},
	}
	byRule := make(map[string]*domain.RuleCounts)
	var order []string
	affected := make(map[string]struct{})
	for _, issue := range issues {
		summary.Counts.Add(issue.Severity)
		rc, ok := byRule[issue.RuleID]
		if !ok {
			rc = &domain.RuleCounts{RuleID: issue.RuleID}
			byRule[issue.RuleID] = rc
			order = append(order, issue.RuleID)
		}
		rc.Add(issue.Severity)
		if gid := strings.TrimSpace(issue.GlobalID); gid != "" {
			affected[gid] = struct{}{}
		}
	}
	for _, id := range order {
		summary.ByRule = append(summary.ByRule, *byRule[id])
	}
	sort.SliceStable(summary.ByRule, func(i, j int) bool {
		a, b := summary.ByRule[i], summary.ByRule[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.RuleID < b.RuleID
	})
	summary.UniqueElementsAffected = len(affected)
	summary.Pass = Passes(issues, threshold)
	return summary
}

// Passes reports whether no issue reaches threshold.
func Passes(issues []domain.Issue, threshold domain.Threshold) bool {
	for _, issue := range issues {
		if threshold.Fails(issue.Severity) {
			return false
		}
	}
	return true
}
