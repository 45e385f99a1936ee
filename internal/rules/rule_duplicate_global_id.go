package rules

import (
	"fmt"
	"iter"
	"strings"

	"ifcqa/pkg/domain"
)

// DuplicateGlobalIDRule reports every entity sharing a GlobalId with at
// least one other entity. Groups are emitted in order of first appearance.
func DuplicateGlobalIDRule(id string, severity domain.Severity) domain.Rule {
	return duplicateGlobalIDRule{base{id, severity}}
}

type duplicateGlobalIDRule struct{ base }

func (r duplicateGlobalIDRule) Evaluate(model domain.Model) iter.Seq[domain.Issue] {
	return func(yield func(domain.Issue) bool) {
		groups := make(map[string][]domain.Entity)
		var order []string
		for _, e := range model.Entities() {
			gid := strings.TrimSpace(e.GlobalID)
			if gid == "" {
				continue
			}
			if _, seen := groups[gid]; !seen {
				order = append(order, gid)
			}
			groups[gid] = append(groups[gid], e)
		}
		for _, gid := range order {
			members := groups[gid]
			if len(members) < 2 {
				continue
			}
			actual := fmt.Sprintf("Duplicate: %s (count = %d)", gid, len(members))
			for _, e := range members {
				issue := r.issue(e, "Duplicate GlobalId").
					WithTrace("Attribute: GlobalId", domain.SourceAttribute, "Unique", actual)
				if !yield(issue) {
					return
				}
			}
		}
	}
}
