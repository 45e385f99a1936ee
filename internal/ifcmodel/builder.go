package ifcmodel

import "fmt"

// Builder assembles a snapshot programmatically, mainly for tests and
// fixtures.
type Builder struct {
	path string
	snap Snapshot
}

// NewBuilder starts an empty snapshot reported under path.
func NewBuilder(path string) *Builder {
	return &Builder{path: path, snap: Snapshot{Schema: "IFC4"}}
}

// Add appends an entity and returns its reference. A blank ID is assigned
// from the entity position.
func (b *Builder) Add(rec EntityRecord) string {
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("#%d", len(b.snap.Entities)+1)
	}
	b.snap.Entities = append(b.snap.Entities, rec)
	return rec.ID
}

// AddType appends a type object and returns its id.
func (b *Builder) AddType(rec TypeRecord) string {
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("T%d", len(b.snap.Types)+1)
	}
	b.snap.Types = append(b.snap.Types, rec)
	return rec.ID
}

// Contain places elements in the structure.
func (b *Builder) Contain(structure string, elements ...string) {
	b.snap.Containment = append(b.snap.Containment, ContainmentRecord{Structure: structure, Elements: elements})
}

// Bound links a space to a bounding element.
func (b *Builder) Bound(space, element string) {
	b.snap.SpaceBoundaries = append(b.snap.SpaceBoundaries, BoundaryRecord{Space: space, Element: element})
}

// Snapshot returns the accumulated snapshot.
func (b *Builder) Snapshot() Snapshot { return b.snap }

// Build indexes the snapshot into a Model.
func (b *Builder) Build() (*Model, error) {
	return FromSnapshot(b.path, b.snap)
}
