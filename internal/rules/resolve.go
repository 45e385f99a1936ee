// Package rules implements the data-quality rule library, the ruleset
// loader, and the factory that turns declarative rule specs into
// executable domain.Rule values.
package rules

import (
	"iter"
	"math"
	"strings"

	"ifcqa/internal/coerce"
	"ifcqa/pkg/domain"
)

// base carries the identity every rule shares.
type base struct {
	id       string
	severity domain.Severity
}

func (b base) ID() string                { return b.id }
func (b base) Severity() domain.Severity { return b.severity }

func (b base) issue(e domain.Entity, message string) domain.Issue {
	return domain.NewIssue(b.id, b.severity, e, message)
}

// sameName compares set, key, and value names trimmed and case-insensitively.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// entitiesOf yields entities of class in model order.
func entitiesOf(model domain.Model, class string) iter.Seq[domain.Entity] {
	return func(yield func(domain.Entity) bool) {
		for _, e := range model.EntitiesOfClass(strings.TrimSpace(class)) {
			if !yield(e) {
				return
			}
		}
	}
}

// resolvedValue is a single property or quantity with its provenance.
type resolvedValue struct {
	Name   string
	Value  any
	Source domain.ValueSource
}

// resolvedSet is the union of every same-named set visible to an entity.
// Instance values come first; type values fill in keys the instance lacks.
type resolvedSet struct {
	Name   string
	Source domain.ValueSource
	values []resolvedValue
}

// Get returns the named entry.
func (s resolvedSet) Get(key string) (resolvedValue, bool) {
	for _, v := range s.values {
		if sameName(v.Name, key) {
			return v, true
		}
	}
	return resolvedValue{}, false
}

// Has reports whether key is present regardless of its value.
func (s resolvedSet) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// String returns the trimmed textual value of key.
func (s resolvedSet) String(key string) (string, resolvedValue, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", v, false
	}
	str, present := coerce.String(v.Value)
	return strings.TrimSpace(str), v, present
}

func (s *resolvedSet) add(name string, value any, source domain.ValueSource) {
	if s.Has(name) {
		return
	}
	s.values = append(s.values, resolvedValue{Name: name, Value: value, Source: source})
}

func psetSource(scope domain.Scope) domain.ValueSource {
	if scope == domain.ScopeType {
		return domain.SourcePsetType
	}
	return domain.SourcePsetInstance
}

func qtoSource(scope domain.Scope) domain.ValueSource {
	if scope == domain.ScopeType {
		return domain.SourceQtoType
	}
	return domain.SourceQtoInstance
}

// findPset resolves the property set named name across instance and type
// scope.
func findPset(model domain.Model, e domain.Entity, name string) (resolvedSet, bool) {
	var out resolvedSet
	found := false
	for _, ps := range sortedByScope(model.PropertySets(e, domain.ScopeBoth), func(ps domain.PropertySet) domain.Scope { return ps.Scope }) {
		if !sameName(ps.Name, name) {
			continue
		}
		if !found {
			out = resolvedSet{Name: ps.Name, Source: psetSource(ps.Scope)}
			found = true
		}
		for _, p := range ps.Properties {
			out.add(p.Name, p.Value, psetSource(ps.Scope))
		}
	}
	return out, found
}

// findQto resolves the quantity set named name across instance and type
// scope.
func findQto(model domain.Model, e domain.Entity, name string) (resolvedSet, bool) {
	var out resolvedSet
	found := false
	for _, qs := range sortedByScope(model.QuantitySets(e, domain.ScopeBoth), func(qs domain.QuantitySet) domain.Scope { return qs.Scope }) {
		if !sameName(qs.Name, name) {
			continue
		}
		if !found {
			out = resolvedSet{Name: qs.Name, Source: qtoSource(qs.Scope)}
			found = true
		}
		for _, q := range qs.Quantities {
			out.add(q.Name, q.Value, qtoSource(qs.Scope))
		}
	}
	return out, found
}

// sortedByScope puts instance-scoped sets ahead of type-scoped ones while
// preserving the facade's order within each scope.
func sortedByScope[T any](sets []T, scopeOf func(T) domain.Scope) []T {
	out := make([]T, 0, len(sets))
	for _, s := range sets {
		if scopeOf(s) != domain.ScopeType {
			out = append(out, s)
		}
	}
	for _, s := range sets {
		if scopeOf(s) == domain.ScopeType {
			out = append(out, s)
		}
	}
	return out
}

// psetString reads pset.key as a trimmed string. present is false when the
// set, the key, or the value is absent.
func psetString(model domain.Model, e domain.Entity, pset, key string) (value string, present bool) {
	set, ok := findPset(model, e, pset)
	if !ok {
		return "", false
	}
	value, _, present = set.String(key)
	return value, present
}

// psetOrKeyExists reports whether pset exists and, when it has properties,
// whether key is among them.
func psetOrKeyExists(model domain.Model, e domain.Entity, pset, key string) bool {
	set, ok := findPset(model, e, pset)
	if !ok {
		return false
	}
	if len(set.values) == 0 {
		return true
	}
	return set.Has(key)
}

// attributeString reads a direct attribute as a trimmed string.
func attributeString(e domain.Entity, attribute string) (string, bool) {
	if strings.TrimSpace(attribute) == "" {
		return "", false
	}
	v, ok := e.Attribute(attribute)
	return strings.TrimSpace(v), ok
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatNumber(f float64) string {
	s, _ := coerce.String(f)
	return s
}
