package rules

import (
	"iter"

	"ifcqa/pkg/domain"
)

// MissingContainmentRule flags building elements that no spatial structure
// contains. Spatial entities are exempt.
func MissingContainmentRule(id string, severity domain.Severity) domain.Rule {
	return missingContainmentRule{base{id, severity}}
}

type missingContainmentRule struct{ base }

func (r missingContainmentRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for _, e := range model.Entities() {
			if e.Kind != domain.KindElement {
				continue
			}
			if len(model.ContainmentRelations(e)) > 0 {
				continue
			}
			issue := r.issue(e, "Element is not contained in a spatial structure (storey/building).").
				WithTrace("Relation: "+string(domain.RelContainedInStructure), domain.SourceNotFound, "Contained", "None")
			if !yield(issue) {
				return
			}
		}
	}
}
