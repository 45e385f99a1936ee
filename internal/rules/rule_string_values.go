package rules

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"ifcqa/pkg/domain"
)

// Missing-target policy shared by RequireNonEmpty, AllowedValues,
// RegexMatch and RequireNonEmptyEither: skipIfMissing suppresses findings
// only when the set, key, or attribute is absent. A present but blank value
// is always reported.

// RequireEqualStringsRule reports entities where both values are non-blank
// and differ, ignoring case.
func RequireEqualStringsRule(id string, severity domain.Severity, class, psetA, keyA, psetB, keyB string) domain.Rule {
	return requireEqualStringsRule{base: base{id, severity}, class: class, psetA: psetA, keyA: keyA, psetB: psetB, keyB: keyB}
}

type requireEqualStringsRule struct {
	base
	class       string
	psetA, keyA string
	psetB, keyB string
}

func (r requireEqualStringsRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		left := r.psetA + "." + r.keyA
		right := r.psetB + "." + r.keyB
		for e := range entitiesOf(model, r.class) {
			a, _ := psetString(model, e, r.psetA, r.keyA)
			b, _ := psetString(model, e, r.psetB, r.keyB)
			if a == "" || b == "" || strings.EqualFold(a, b) {
				continue
			}
			issue := r.issue(e, fmt.Sprintf("Mismatch: '%s' = '%s' but '%s' = '%s'.", left, a, right, b)).
				WithTrace(left+" == "+right, domain.SourceDerived,
					left+" = "+right,
					fmt.Sprintf("%s='%s', %s='%s'", left, a, right, b))
			if !yield(issue) {
				return
			}
		}
	}
}

// RequireNonEmptyRule requires pset.key to hold a non-blank value.
func RequireNonEmptyRule(id string, severity domain.Severity, class, pset, key string, skipIfMissing bool) domain.Rule {
	return requireNonEmptyRule{base: base{id, severity}, class: class, pset: pset, key: key, skipIfMissing: skipIfMissing}
}

type requireNonEmptyRule struct {
	base
	class         string
	pset          string
	key           string
	skipIfMissing bool
}

func (r requireNonEmptyRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			issue, _, report := lookupNonEmpty(r.base, model, e, r.pset, r.key, r.skipIfMissing)
			if report && !yield(issue) {
				return
			}
		}
	}
}

// lookupNonEmpty resolves pset.key. When the value is usable it returns it
// with report=false and a non-empty value; otherwise report says whether the
// returned issue should be emitted.
func lookupNonEmpty(b base, model domain.Model, e domain.Entity, pset, key string, skipIfMissing bool) (issue domain.Issue, value string, report bool) {
	path := pset + "." + key
	set, ok := findPset(model, e, pset)
	if !ok {
		if skipIfMissing {
			return domain.Issue{}, "", false
		}
		return b.issue(e, fmt.Sprintf("Missing property set '%s' (required for '%s').", pset, key)).
			WithTrace("Pset: "+pset, domain.SourceNotFound, "Present", "Missing"), "", true
	}
	value, v, present := set.String(key)
	if !set.Has(key) {
		if skipIfMissing {
			return domain.Issue{}, "", false
		}
		return b.issue(e, fmt.Sprintf("Missing property '%s' in '%s'.", key, pset)).
			WithTrace(path, domain.SourceNotFound, "Present", "Missing"), "", true
	}
	if !present || value == "" {
		return b.issue(e, fmt.Sprintf("Property '%s' must not be empty.", path)).
			WithTrace(path, v.Source, "Non-empty", value), "", true
	}
	return domain.Issue{}, value, false
}

// AllowedValuesRule requires pset.key to be one of allowed, compared trimmed
// and ignoring case.
func AllowedValuesRule(id string, severity domain.Severity, class, pset, key string, allowed []string, skipIfMissing bool) domain.Rule {
	norm := make([]string, 0, len(allowed))
	for _, a := range allowed {
		norm = append(norm, strings.TrimSpace(a))
	}
	return allowedValuesRule{base: base{id, severity}, class: class, pset: pset, key: key, allowed: norm, skipIfMissing: skipIfMissing}
}

type allowedValuesRule struct {
	base
	class         string
	pset          string
	key           string
	allowed       []string
	skipIfMissing bool
}

func (r allowedValuesRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		list := "[" + strings.Join(r.allowed, ",") + "]"
		path := r.pset + "." + r.key
		for e := range entitiesOf(model, r.class) {
			issue, value, report := lookupNonEmpty(r.base, model, e, r.pset, r.key, r.skipIfMissing)
			if report {
				if !yield(issue) {
					return
				}
				continue
			}
			if value == "" || r.permits(value) {
				continue
			}
			set, _ := findPset(model, e, r.pset)
			v, _ := set.Get(r.key)
			issue = r.issue(e, fmt.Sprintf("Property '%s' has value '%s', expected one of %s.", path, value, list)).
				WithTrace(path, v.Source, "One of "+list, value)
			if !yield(issue) {
				return
			}
		}
	}
}

func (r allowedValuesRule) permits(value string) bool {
	for _, a := range r.allowed {
		if sameName(a, value) {
			return true
		}
	}
	return false
}

// RequireNonEmptyAnyRule requires either the attribute or pset.key to hold a
// non-blank value.
func RequireNonEmptyAnyRule(id string, severity domain.Severity, class, attribute, pset, key string) domain.Rule {
	return requireNonEmptyAnyRule{base: base{id, severity}, class: class, attribute: attribute, pset: pset, key: key}
}

type requireNonEmptyAnyRule struct {
	base
	class     string
	attribute string
	pset      string
	key       string
}

func (r requireNonEmptyAnyRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			if v, _ := attributeString(e, r.attribute); v != "" {
				continue
			}
			if strings.TrimSpace(r.pset) != "" && strings.TrimSpace(r.key) != "" {
				if v, _ := psetString(model, e, r.pset, r.key); v != "" {
					continue
				}
			}
			issue := r.issue(e, fmt.Sprintf("Expected non-empty value in either attribute '%s' or '%s.%s'.", r.attribute, r.pset, r.key)).
				WithTrace(fmt.Sprintf("Attribute: %s | %s.%s", r.attribute, r.pset, r.key), domain.SourceDerived, "Any non-empty", "None")
			if !yield(issue) {
				return
			}
		}
	}
}

// RequireNonEmptyEitherRule requires at least one of psetA.keyA and
// psetB.keyB to hold a non-blank value.
func RequireNonEmptyEitherRule(id string, severity domain.Severity, class, psetA, keyA, psetB, keyB string, skipIfMissing bool) domain.Rule {
	return requireNonEmptyEitherRule{base: base{id, severity}, class: class, psetA: psetA, keyA: keyA, psetB: psetB, keyB: keyB, skipIfMissing: skipIfMissing}
}

type requireNonEmptyEitherRule struct {
	base
	class         string
	psetA, keyA   string
	psetB, keyB   string
	skipIfMissing bool
}

func (r requireNonEmptyEitherRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		left := r.psetA + "." + r.keyA
		right := r.psetB + "." + r.keyB
		for e := range entitiesOf(model, r.class) {
			if a, _ := psetString(model, e, r.psetA, r.keyA); a != "" {
				continue
			}
			if b, _ := psetString(model, e, r.psetB, r.keyB); b != "" {
				continue
			}
			if r.skipIfMissing && !psetOrKeyExists(model, e, r.psetA, r.keyA) && !psetOrKeyExists(model, e, r.psetB, r.keyB) {
				continue
			}
			issue := r.issue(e, fmt.Sprintf("Expected non-empty value in either '%s' or '%s'.", left, right)).
				WithTrace(left+" | "+right, domain.SourceDerived, "Any non-empty", "None")
			if !yield(issue) {
				return
			}
		}
	}
}

// RegexMatchRule requires an attribute or pset.key value to match pattern.
func RegexMatchRule(id string, severity domain.Severity, class, attribute, pset, key string, pattern *regexp.Regexp, skipIfMissing bool) domain.Rule {
	return regexMatchRule{base: base{id, severity}, class: class, attribute: attribute, pset: pset, key: key, pattern: pattern, skipIfMissing: skipIfMissing}
}

type regexMatchRule struct {
	base
	class         string
	attribute     string
	pset          string
	key           string
	pattern       *regexp.Regexp
	skipIfMissing bool
}

func (r regexMatchRule) target() string {
	if strings.TrimSpace(r.attribute) != "" {
		return fmt.Sprintf("Attribute '%s'", r.attribute)
	}
	return fmt.Sprintf("Property '%s.%s'", r.pset, r.key)
}

// value resolves the configured target. exists is false when the attribute,
// set, or key is absent.
func (r regexMatchRule) value(model domain.Model, e domain.Entity) (value string, source domain.ValueSource, exists bool) {
	if strings.TrimSpace(r.attribute) != "" {
		v, ok := attributeString(e, r.attribute)
		return v, domain.SourceAttribute, ok
	}
	set, ok := findPset(model, e, r.pset)
	if !ok {
		return "", domain.SourceNotFound, false
	}
	v, rv, _ := set.String(r.key)
	if !set.Has(r.key) {
		return "", domain.SourceNotFound, false
	}
	return v, rv.Source, true
}

func (r regexMatchRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		target := r.target()
		for e := range entitiesOf(model, r.class) {
			v, source, exists := r.value(model, e)
			var issue domain.Issue
			switch {
			case !exists && r.skipIfMissing:
				continue
			case v == "":
				issue = r.issue(e, target+" is missing/empty.").
					WithTrace(target, source, "Non-empty", v)
			case !r.pattern.MatchString(v):
				issue = r.issue(e, fmt.Sprintf("%s value '%s' does not match regex '%s'.", target, v, r.pattern)).
					WithTrace(target, source, "Regex: "+r.pattern.String(), v)
			default:
				continue
			}
			if !yield(issue) {
				return
			}
		}
	}
}
