package rules

import (
	"fmt"
	"iter"
	"strings"

	"ifcqa/pkg/domain"
)

// RequirePsetRule reports entities of class lacking the named property set
// at both instance and type scope.
func RequirePsetRule(id string, severity domain.Severity, class, pset string) domain.Rule {
	return requirePsetRule{base: base{id, severity}, class: class, pset: pset}
}

type requirePsetRule struct {
	base
	class string
	pset  string
}

func (r requirePsetRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			if _, ok := findPset(model, e, r.pset); ok {
				continue
			}
			issue := r.issue(e, "Missing required property set: "+r.pset).
				WithTrace("Pset: "+r.pset, domain.SourceNotFound, "Present", "Missing")
			if !yield(issue) {
				return
			}
		}
	}
}

// RequireAnyPsetRule reports entities carrying none of the listed property
// sets.
func RequireAnyPsetRule(id string, severity domain.Severity, class string, psets []string) domain.Rule {
	return requireAnyPsetRule{base: base{id, severity}, class: class, psets: append([]string(nil), psets...)}
}

type requireAnyPsetRule struct {
	base
	class string
	psets []string
}

func (r requireAnyPsetRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		list := "[" + strings.Join(r.psets, ",") + "]"
		for e := range entitiesOf(model, r.class) {
			if r.hasAny(model, e) {
				continue
			}
			issue := r.issue(e, "Missing required property set.").
				WithTrace("AnyPset: "+list, domain.SourceDerived, "Any of "+list, "None")
			if !yield(issue) {
				return
			}
		}
	}
}

func (r requireAnyPsetRule) hasAny(model domain.Model, e domain.Entity) bool {
	for _, name := range r.psets {
		if _, ok := findPset(model, e, name); ok {
			return true
		}
	}
	return false
}

// RequireQtoRule reports entities lacking the named quantity set.
func RequireQtoRule(id string, severity domain.Severity, class, qto string) domain.Rule {
	return requireQtoRule{base: base{id, severity}, class: class, qto: qto}
}

type requireQtoRule struct {
	base
	class string
	qto   string
}

func (r requireQtoRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			if _, ok := findQto(model, e, r.qto); ok {
				continue
			}
			issue := r.issue(e, "Missing required quantity set (recommended): "+r.qto).
				WithTrace("Qto: "+r.qto, domain.SourceNotFound, "Present", "Missing")
			if !yield(issue) {
				return
			}
		}
	}
}

// RequirePsetPropertyKeyRule reports entities whose property set exists but
// lacks key. Entities without the set are skipped.
func RequirePsetPropertyKeyRule(id string, severity domain.Severity, class, pset, key string) domain.Rule {
	return requirePsetPropertyKeyRule{base: base{id, severity}, class: class, pset: pset, key: key}
}

type requirePsetPropertyKeyRule struct {
	base
	class string
	pset  string
	key   string
}

func (r requirePsetPropertyKeyRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			set, ok := findPset(model, e, r.pset)
			if !ok || set.Has(r.key) {
				continue
			}
			issue := r.issue(e, fmt.Sprintf("Pset %s is missing property key '%s'.", r.pset, r.key)).
				WithTrace(r.pset+"."+r.key, domain.SourceNotFound, "Present", "Missing")
			if !yield(issue) {
				return
			}
		}
	}
}

// RequireQtoQuantityNamesRule reports one issue per required quantity absent
// from an existing quantity set.
func RequireQtoQuantityNamesRule(id string, severity domain.Severity, class, qto string, names []string) domain.Rule {
	return requireQtoQuantityNamesRule{base: base{id, severity}, class: class, qto: qto, names: append([]string(nil), names...)}
}

type requireQtoQuantityNamesRule struct {
	base
	class string
	qto   string
	names []string
}

func (r requireQtoQuantityNamesRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for e := range entitiesOf(model, r.class) {
			set, ok := findQto(model, e, r.qto)
			if !ok {
				continue
			}
			for _, name := range r.names {
				if set.Has(name) {
					continue
				}
				issue := r.issue(e, fmt.Sprintf("Qto '%s' is missing quantity '%s'.", r.qto, name)).
					WithTrace("Qto: "+r.qto, domain.SourceNotFound, name, "Missing")
				if !yield(issue) {
					return
				}
			}
		}
	}
}
