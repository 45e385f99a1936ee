package rules

import (
	"iter"

	"ifcqa/internal/coerce"
	"ifcqa/pkg/domain"
)

const (
	spaceCommonPset = "Pset_SpaceCommon"
	wallCommonPset  = "Pset_WallCommon"
	wallBaseQto     = "Qto_WallBaseQuantities"
	isExternalKey   = "IsExternal"
)

// wallClasses are the concrete wall classes treated as walls.
var wallClasses = []string{"IfcWall", "IfcWallStandardCase", "IfcWallElementedCase"}

func isWall(e domain.Entity) bool {
	for _, c := range wallClasses {
		if e.IsClass(c) {
			return true
		}
	}
	return false
}

// isExternal reads Pset.IsExternal as an IFC boolean.
func isExternal(model domain.Model, e domain.Entity, pset string) bool {
	set, ok := findPset(model, e, pset)
	if !ok {
		return false
	}
	v, ok := set.Get(isExternalKey)
	if !ok {
		return false
	}
	b, ok := coerce.Bool(v.Value)
	return ok && b
}

// SpaceExternalHasExternalBoundaryRule reports external spaces none of whose
// bounding walls is marked external.
func SpaceExternalHasExternalBoundaryRule(id string, severity domain.Severity) domain.Rule {
	return spaceExternalBoundaryRule{base{id, severity}}
}

type spaceExternalBoundaryRule struct{ base }

func (r spaceExternalBoundaryRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		type group struct {
			space    domain.Entity
			elements []domain.Entity
		}
		byRef := make(map[string]*group)
		var order []*group
		for _, rel := range model.SpaceBoundaries() {
			if rel.Relating.Ref == "" {
				continue
			}
			g, ok := byRef[rel.Relating.Ref]
			if !ok {
				g = &group{space: rel.Relating}
				byRef[rel.Relating.Ref] = g
				order = append(order, g)
			}
			if rel.Related.Ref != "" {
				g.elements = append(g.elements, rel.Related)
			}
		}
		for _, g := range order {
			if !g.space.IsClass("IfcSpace") || !isExternal(model, g.space, spaceCommonPset) {
				continue
			}
			if r.hasExternalWall(model, g.elements) {
				continue
			}
			issue := r.issue(g.space, "Space is marked IsExternal=TRUE but no bounding wall is marked IsExternal=TRUE.").
				WithTrace("SpaceBoundary: "+wallCommonPset+"."+isExternalKey, domain.SourceDerived, "At least one external wall", "None")
			if !yield(issue) {
				return
			}
		}
	}
}

func (r spaceExternalBoundaryRule) hasExternalWall(model domain.Model, elements []domain.Entity) bool {
	for _, el := range elements {
		if isWall(el) && isExternal(model, el, wallCommonPset) {
			return true
		}
	}
	return false
}

// WallVolumeImpliesLengthRule reports walls with a positive NetVolume whose
// Length is missing or not positive.
func WallVolumeImpliesLengthRule(id string, severity domain.Severity) domain.Rule {
	return wallVolumeImpliesLengthRule{base{id, severity}}
}

type wallVolumeImpliesLengthRule struct{ base }

func (r wallVolumeImpliesLengthRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for _, e := range model.Entities() {
			if !isWall(e) {
				continue
			}
			qto, ok := findQto(model, e, wallBaseQto)
			if !ok {
				continue
			}
			vol, ok := quantityNumber(qto, "NetVolume")
			if !ok || vol <= 0 {
				continue
			}
			length, hasLength := quantityNumber(qto, "Length")
			if hasLength && length > 0 {
				continue
			}
			actualLength := "Missing"
			if hasLength {
				actualLength = formatNumber(length)
			}
			issue := r.issue(e, "Wall has NetVolume > 0 but Length is missing or <= 0").
				WithTrace(wallBaseQto+": NetVolume > 0 implies Length > 0", domain.SourceDerived,
					"Length > 0 (when NetVolume > 0)",
					"NetVolume = "+formatNumber(vol)+", Length = "+actualLength)
			if !yield(issue) {
				return
			}
		}
	}
}

func quantityNumber(set resolvedSet, name string) (float64, bool) {
	v, ok := set.Get(name)
	if !ok {
		return 0, false
	}
	n, ok := coerce.Number(v.Value)
	if !ok || !isFinite(n) {
		return 0, false
	}
	return n, true
}
