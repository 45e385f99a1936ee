package rules

import (
	"iter"
	"strings"

	"ifcqa/pkg/domain"
)

// MissingNameRule flags every product whose Name is blank.
func MissingNameRule(id string, severity domain.Severity) domain.Rule {
	return missingNameRule{base{id, severity}}
}

type missingNameRule struct{ base }

func (r missingNameRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		for _, e := range model.Entities() {
			if strings.TrimSpace(e.Name) != "" {
				continue
			}
			issue := r.issue(e, "Element Name is missing/blank.").
				WithTrace("Attribute: Name", domain.SourceAttribute, "Non-empty", e.Name)
			if !yield(issue) {
				return
			}
		}
	}
}
