package ifcmodel

import (
	"fmt"
	"sort"
	"strings"

	"ifcqa/pkg/domain"
)

// Model is an immutable, in-memory domain.Model built from a Snapshot.
type Model struct {
	path        string
	entities    []domain.Entity
	byRef       map[string]domain.Entity
	psets       map[string][]domain.PropertySet
	qtos        map[string][]domain.QuantitySet
	typeOf      map[string]string
	typePsets   map[string][]domain.PropertySet
	typeQtos    map[string][]domain.QuantitySet
	containment map[string][]domain.Relation
	boundaries  []domain.Relation
}

var _ domain.Model = (*Model)(nil)

// FromSnapshot indexes a snapshot. Relations must reference known entities.
func FromSnapshot(path string, snap Snapshot) (*Model, error) {
	m := &Model{
		path:        path,
		byRef:       make(map[string]domain.Entity, len(snap.Entities)),
		psets:       make(map[string][]domain.PropertySet),
		qtos:        make(map[string][]domain.QuantitySet),
		typeOf:      make(map[string]string),
		typePsets:   make(map[string][]domain.PropertySet),
		typeQtos:    make(map[string][]domain.QuantitySet),
		containment: make(map[string][]domain.Relation),
	}
	for _, t := range snap.Types {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("type %q has no id", t.Name)
		}
		if _, dup := m.typePsets[t.ID]; dup {
			return nil, fmt.Errorf("duplicate type id %s", t.ID)
		}
		m.typePsets[t.ID] = propertySets(t.Psets, domain.ScopeType)
		m.typeQtos[t.ID] = quantitySets(t.Qtos, domain.ScopeType)
	}
	for i, rec := range snap.Entities {
		ref := rec.ID
		if strings.TrimSpace(ref) == "" {
			ref = fmt.Sprintf("#%d", i+1)
		}
		if _, dup := m.byRef[ref]; dup {
			return nil, fmt.Errorf("duplicate entity id %s", ref)
		}
		kind := rec.Kind
		if kind == "" {
			kind = inferKind(rec.IfcClass)
		}
		e := domain.Entity{
			Ref:        ref,
			IfcClass:   rec.IfcClass,
			GlobalID:   rec.GlobalID,
			Name:       rec.Name,
			Kind:       domain.EntityKind(kind),
			Attributes: cloneAttributes(rec.Attributes),
		}
		m.entities = append(m.entities, e)
		m.byRef[ref] = e
		m.psets[ref] = propertySets(rec.Psets, domain.ScopeInstance)
		m.qtos[ref] = quantitySets(rec.Qtos, domain.ScopeInstance)
		if rec.TypeID != "" {
			if _, ok := m.typePsets[rec.TypeID]; !ok {
				return nil, fmt.Errorf("entity %s references unknown type %s", ref, rec.TypeID)
			}
			m.typeOf[ref] = rec.TypeID
		}
	}
	for _, c := range snap.Containment {
		structure, ok := m.byRef[c.Structure]
		if !ok {
			return nil, fmt.Errorf("containment references unknown structure %s", c.Structure)
		}
		for _, ref := range c.Elements {
			el, ok := m.byRef[ref]
			if !ok {
				return nil, fmt.Errorf("containment references unknown element %s", ref)
			}
			m.containment[ref] = append(m.containment[ref], domain.Relation{
				Kind:     domain.RelContainedInStructure,
				Relating: structure,
				Related:  el,
			})
		}
	}
	for _, b := range snap.SpaceBoundaries {
		space, ok := m.byRef[b.Space]
		if !ok {
			return nil, fmt.Errorf("space boundary references unknown space %s", b.Space)
		}
		rel := domain.Relation{Kind: domain.RelSpaceBoundary, Relating: space}
		if b.Element != "" {
			el, ok := m.byRef[b.Element]
			if !ok {
				return nil, fmt.Errorf("space boundary references unknown element %s", b.Element)
			}
			rel.Related = el
		}
		m.boundaries = append(m.boundaries, rel)
	}
	return m, nil
}

// Path implements domain.Model.
func (m *Model) Path() string { return m.path }

// Entities implements domain.Model.
func (m *Model) Entities() []domain.Entity {
	out := make([]domain.Entity, len(m.entities))
	copy(out, m.entities)
	return out
}

// EntitiesOfClass implements domain.Model.
func (m *Model) EntitiesOfClass(class string) []domain.Entity {
	var out []domain.Entity
	for _, e := range m.entities {
		if e.IsClass(class) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup resolves an entity by its model-local reference.
func (m *Model) Lookup(ref string) (domain.Entity, bool) {
	e, ok := m.byRef[ref]
	return e, ok
}

// PropertySets implements domain.Model. Instance sets precede type sets.
func (m *Model) PropertySets(e domain.Entity, scope domain.Scope) []domain.PropertySet {
	var out []domain.PropertySet
	if scope.Includes(domain.ScopeInstance) {
		out = append(out, m.psets[e.Ref]...)
	}
	if scope.Includes(domain.ScopeType) {
		if typeID, ok := m.typeOf[e.Ref]; ok {
			out = append(out, m.typePsets[typeID]...)
		}
	}
	return out
}

// QuantitySets implements domain.Model. Instance sets precede type sets.
func (m *Model) QuantitySets(e domain.Entity, scope domain.Scope) []domain.QuantitySet {
	var out []domain.QuantitySet
	if scope.Includes(domain.ScopeInstance) {
		out = append(out, m.qtos[e.Ref]...)
	}
	if scope.Includes(domain.ScopeType) {
		if typeID, ok := m.typeOf[e.Ref]; ok {
			out = append(out, m.typeQtos[typeID]...)
		}
	}
	return out
}

// ContainmentRelations implements domain.Model.
func (m *Model) ContainmentRelations(e domain.Entity) []domain.Relation {
	rels := m.containment[e.Ref]
	out := make([]domain.Relation, len(rels))
	copy(out, rels)
	return out
}

// SpaceBoundaries implements domain.Model.
func (m *Model) SpaceBoundaries() []domain.Relation {
	out := make([]domain.Relation, len(m.boundaries))
	copy(out, m.boundaries)
	return out
}

func propertySets(sets Sets, scope domain.Scope) []domain.PropertySet {
	names := sortedKeys(sets)
	out := make([]domain.PropertySet, 0, len(names))
	for _, name := range names {
		values := sets[name]
		props := make([]domain.Property, 0, len(values))
		for _, key := range sortedKeys(values) {
			props = append(props, domain.Property{Name: key, Value: values[key]})
		}
		out = append(out, domain.PropertySet{Name: name, Scope: scope, Properties: props})
	}
	return out
}

func quantitySets(sets Sets, scope domain.Scope) []domain.QuantitySet {
	names := sortedKeys(sets)
	out := make([]domain.QuantitySet, 0, len(names))
	for _, name := range names {
		values := sets[name]
		qs := make([]domain.Quantity, 0, len(values))
		for _, key := range sortedKeys(values) {
			qs = append(qs, domain.Quantity{Name: key, Value: values[key]})
		}
		out = append(out, domain.QuantitySet{Name: name, Scope: scope, Quantities: qs})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneAttributes(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
