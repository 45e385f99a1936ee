package domain

import (
	"context"
	"strings"
)

// EntityKind distinguishes physical elements from spatial structure.
type EntityKind string

// Entity kinds exposed by the model facade.
const (
	// KindElement marks building elements (walls, slabs, doors...).
	KindElement EntityKind = "element"
	// KindSpatial marks spatial structure (sites, buildings, storeys, spaces).
	KindSpatial EntityKind = "spatial"
	// KindOther marks products that are neither, such as annotations or grids.
	KindOther EntityKind = "other"
)

// Entity is a read-only view of a product in the building model.
type Entity struct {
	// Ref is the model-local handle used to resolve relations.
	Ref      string
	IfcClass string
	GlobalID string
	Name     string
	Kind     EntityKind
	// Attributes carries additional direct attributes (ObjectType, Tag...).
	Attributes map[string]string
}

// Attribute resolves a direct attribute by name, case-insensitively.
// Name, GlobalId and the class name are always available.
func (e Entity) Attribute(name string) (string, bool) {
	name = strings.TrimSpace(name)
	switch {
	case strings.EqualFold(name, "Name"):
		return e.Name, true
	case strings.EqualFold(name, "GlobalId"):
		return e.GlobalID, true
	case strings.EqualFold(name, "IfcClass"), strings.EqualFold(name, "ExpressType"):
		return e.IfcClass, true
	}
	for k, v := range e.Attributes {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// IsClass reports whether the entity's class equals class, ignoring case.
func (e Entity) IsClass(class string) bool {
	return strings.EqualFold(e.IfcClass, strings.TrimSpace(class))
}

// Scope selects where a property or quantity set is attached.
type Scope uint8

// Scopes may be combined; ScopeBoth is the union view used by rules.
const (
	ScopeInstance Scope = 1 << iota
	ScopeType
	ScopeBoth = ScopeInstance | ScopeType
)

// Includes reports whether s covers other.
func (s Scope) Includes(other Scope) bool { return s&other != 0 }

// Property is a named raw value inside a property set.
type Property struct {
	Name  string
	Value any
}

// PropertySet is a named group of properties at a single scope.
type PropertySet struct {
	Name       string
	Scope      Scope
	Properties []Property
}

// Quantity is a named raw measure inside a quantity set.
type Quantity struct {
	Name  string
	Value any
}

// QuantitySet is a named group of quantities at a single scope.
type QuantitySet struct {
	Name       string
	Scope      Scope
	Quantities []Quantity
}

// RelationKind names a relationship type exposed by the facade.
type RelationKind string

// Relation kinds consumed by the rule library.
const (
	RelContainedInStructure RelationKind = "ContainedInSpatialStructure"
	RelSpaceBoundary        RelationKind = "SpaceBoundary"
)

// Relation links a relating entity (structure, space) to a related one.
// Related may be the zero Entity when the model leaves it unset.
type Relation struct {
	Kind     RelationKind
	Relating Entity
	Related  Entity
}

// Model is the read-only query surface the rules evaluate against.
// Enumeration order is stable for a given model.
type Model interface {
	// Path is the location the model was opened from.
	Path() string
	// Entities lists every product in the model.
	Entities() []Entity
	// EntitiesOfClass lists products whose class equals class, ignoring case.
	EntitiesOfClass(class string) []Entity
	PropertySets(e Entity, scope Scope) []PropertySet
	QuantitySets(e Entity, scope Scope) []QuantitySet
	// ContainmentRelations lists spatial structures that contain e.
	ContainmentRelations(e Entity) []Relation
	SpaceBoundaries() []Relation
}

// ModelOpener opens a model by path. Implementations return an error
// wrapping ErrModelNotFound when the path does not resolve.
type ModelOpener func(ctx context.Context, path string) (Model, error)
