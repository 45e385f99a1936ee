package rules

import (
	"fmt"
	"iter"

	"ifcqa/internal/coerce"
	"ifcqa/pkg/domain"
)

// RequirePsetBoolRule reports pset.key values that are not IFC booleans.
// Entities missing the set or the key are skipped.
func RequirePsetBoolRule(id string, severity domain.Severity, class, pset, key string) domain.Rule {
	return requirePsetBoolRule{base: base{id, severity}, class: class, pset: pset, key: key}
}

type requirePsetBoolRule struct {
	base
	class string
	pset  string
	key   string
}

func (r requirePsetBoolRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			set, ok := findPset(model, e, r.pset)
			if !ok {
				continue
			}
			v, ok := set.Get(r.key)
			if !ok {
				continue
			}
			if _, ok := coerce.Bool(v.Value); ok {
				continue
			}
			actual := "Missing or invalid"
			if s, present := coerce.String(v.Value); present && s != "" {
				actual = s
			}
			issue := r.issue(e, fmt.Sprintf("Property '%s' in '%s' is missing or not a boolean.", r.key, r.pset)).
				WithTrace(r.pset+"."+r.key, v.Source, "Boolean", actual)
			if !yield(issue) {
				return
			}
		}
	}
}

// RequirePsetNumberRule requires pset.key to be numeric and strictly greater
// than minExclusive. Entities missing the set or the key are skipped.
func RequirePsetNumberRule(id string, severity domain.Severity, class, pset, key string, minExclusive float64) domain.Rule {
	return requirePsetNumberRule{base: base{id, severity}, class: class, pset: pset, key: key, min: minExclusive}
}

type requirePsetNumberRule struct {
	base
	class string
	pset  string
	key   string
	min   float64
}

func (r requirePsetNumberRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		path := r.pset + "." + r.key
		expected := "> " + formatNumber(r.min)
		for e := range entitiesOf(model, r.class) {
			set, ok := findPset(model, e, r.pset)
			if !ok {
				continue
			}
			v, ok := set.Get(r.key)
			if !ok {
				continue
			}
			var issue domain.Issue
			n, numeric := coerce.Number(v.Value)
			switch {
			case !numeric || !isFinite(n):
				issue = r.issue(e, fmt.Sprintf("Property '%s' in '%s' is missing or not numeric.", r.key, r.pset)).
					WithTrace(path, v.Source, "Numeric", "Missing or invalid")
			case n <= r.min:
				issue = r.issue(e, fmt.Sprintf("Property '%s' in '%s' must be > %s (found %s).", r.key, r.pset, formatNumber(r.min), formatNumber(n))).
					WithTrace(path, v.Source, expected, formatNumber(n))
			default:
				continue
			}
			if !yield(issue) {
				return
			}
		}
	}
}

// RequireQtoQtyValueRule requires qto.qty to be a finite number strictly
// greater than minExclusive. Entities missing the set or quantity are skipped.
func RequireQtoQtyValueRule(id string, severity domain.Severity, class, qto, qty string, minExclusive float64) domain.Rule {
	return requireQtoQtyValueRule{base: base{id, severity}, class: class, qto: qto, qty: qty, min: minExclusive}
}

type requireQtoQtyValueRule struct {
	base
	class string
	qto   string
	qty   string
	min   float64
}

func (r requireQtoQtyValueRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		path := r.qto + "." + r.qty
		for e := range entitiesOf(model, r.class) {
			set, ok := findQto(model, e, r.qto)
			if !ok {
				continue
			}
			v, ok := set.Get(r.qty)
			if !ok {
				continue
			}
			var issue domain.Issue
			n, numeric := coerce.Number(v.Value)
			switch {
			case !numeric || !isFinite(n):
				issue = r.issue(e, fmt.Sprintf("Quantity '%s' in '%s' is missing or not numeric.", r.qty, r.qto)).
					WithTrace("Qto: "+path, v.Source, "Numeric", "Missing or invalid")
			case n <= r.min:
				issue = r.issue(e, fmt.Sprintf("Quantity '%s' in '%s' must be > %s (found %s).", r.qty, r.qto, formatNumber(r.min), formatNumber(n))).
					WithTrace(path, v.Source, "> "+formatNumber(r.min), formatNumber(n))
			default:
				continue
			}
			if !yield(issue) {
				return
			}
		}
	}
}

// ComparePsetNumbersRule requires pset.keyA >= pset.keyB whenever both are
// numeric.
func ComparePsetNumbersRule(id string, severity domain.Severity, class, pset, keyA, keyB string) domain.Rule {
	return comparePsetNumbersRule{base: base{id, severity}, class: class, pset: pset, keyA: keyA, keyB: keyB}
}

type comparePsetNumbersRule struct {
	base
	class string
	pset  string
	keyA  string
	keyB  string
}

func (r comparePsetNumbersRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			set, ok := findPset(model, e, r.pset)
			if !ok {
				continue
			}
			va, okA := set.Get(r.keyA)
			vb, okB := set.Get(r.keyB)
			if !okA || !okB {
				continue
			}
			a, okA := coerce.Number(va.Value)
			b, okB := coerce.Number(vb.Value)
			if !okA || !okB || a >= b {
				continue
			}
			issue := r.issue(e, fmt.Sprintf("'%s' (%s) should be >= '%s' (%s) in '%s'.", r.keyA, formatNumber(a), r.keyB, formatNumber(b), r.pset)).
				WithTrace(fmt.Sprintf("%s.%s >= %s.%s", r.pset, r.keyA, r.pset, r.keyB), domain.SourceDerived,
					fmt.Sprintf("%s >= %s", r.keyA, r.keyB),
					fmt.Sprintf("%s = %s, %s = %s", r.keyA, formatNumber(a), r.keyB, formatNumber(b)))
			if !yield(issue) {
				return
			}
		}
	}
}
