package domain

import (
	"context"
	"strings"
	"time"
)

// Threshold is the minimum severity that fails a run. ThresholdNone never fails.
type Threshold string

// Supported thresholds.
const (
	ThresholdError   Threshold = "Error"
	ThresholdWarning Threshold = "Warning"
	ThresholdInfo    Threshold = "Info"
	ThresholdNone    Threshold = "None"
)

// ParseThreshold matches s case-insensitively; ok is false for unknown input.
func ParseThreshold(s string) (Threshold, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return ThresholdError, true
	case "warning":
		return ThresholdWarning, true
	case "info":
		return ThresholdInfo, true
	case "none":
		return ThresholdNone, true
	default:
		return "", false
	}
}

// Fails reports whether an issue of severity sev trips the threshold.
func (t Threshold) Fails(sev Severity) bool {
	if t == ThresholdNone || t == "" {
		return false
	}
	return sev.AtLeast(Severity(t))
}

// RulesetRef identifies the ruleset used for a run.
type RulesetRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Counts tallies issues by severity.
type Counts struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Add tallies one issue of severity sev.
func (c *Counts) Add(sev Severity) {
	c.Total++
	switch sev {
	case SeverityError:
		c.Errors++
	case SeverityWarning:
		c.Warnings++
	case SeverityInfo:
		c.Info++
	}
}

// RuleCounts tallies issues produced by one rule.
type RuleCounts struct {
	RuleID string `json:"ruleId"`
	Counts
}

// ReportSummary is the aggregate payload rendered by report writers.
type ReportSummary struct {
	ModelPath              string       `json:"modelPath"`
	Ruleset                RulesetRef   `json:"ruleset"`
	Counts                 Counts       `json:"counts"`
	UniqueElementsAffected int          `json:"uniqueElementsAffected"`
	ByRule                 []RuleCounts `json:"byRule"`
	Threshold              Threshold    `json:"threshold"`
	Pass                   bool         `json:"pass"`
}

// RunRecord is the persisted history entry for one completed check.
type RunRecord struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Summary    ReportSummary `json:"summary"`
	Artifacts  []string      `json:"artifacts,omitempty"`
}

// RunStore persists run history. Implementations must be safe for concurrent use.
type RunStore interface {
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	// ListRuns returns runs ordered by start time, newest first.
	ListRuns(ctx context.Context) ([]RunRecord, error)
}
