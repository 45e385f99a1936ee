package core

import (
	"strings"

	"ifcqa/pkg/domain"
)

// Catalog inventories the instance-level sets present in a model. It is
// the starting point for writing a ruleset against an unfamiliar model.
type Catalog struct {
	ModelPath          string                    `json:"modelPath"`
	ClassToPsets       map[string]map[string]int `json:"classToPsets"`
	ClassToQtos        map[string]map[string]int `json:"classToQtos"`
	PsetToPropertyKeys map[string]map[string]int `json:"psetToPropertyKeys"`
	QtoToQuantityNames map[string]map[string]int `json:"qtoToQuantityNames"`
}

// BuildCatalog counts, per class, the psets and qtos attached to its
// instances and, per set name, how often each key appears.
func BuildCatalog(model domain.Model) Catalog {
	c := Catalog{
		ModelPath:          model.Path(),
		ClassToPsets:       make(map[string]map[string]int),
		ClassToQtos:        make(map[string]map[string]int),
		PsetToPropertyKeys: make(map[string]map[string]int),
		QtoToQuantityNames: make(map[string]map[string]int),
	}
	for _, e := range model.Entities() {
		for _, ps := range model.PropertySets(e, domain.ScopeInstance) {
			name := strings.TrimSpace(ps.Name)
			if name == "" {
				continue
			}
			increment(c.ClassToPsets, e.IfcClass, name)
			for _, p := range ps.Properties {
				if key := strings.TrimSpace(p.Name); key != "" {
					increment(c.PsetToPropertyKeys, name, key)
				}
			}
		}
		for _, qs := range model.QuantitySets(e, domain.ScopeInstance) {
			name := strings.TrimSpace(qs.Name)
			if name == "" {
				continue
			}
			increment(c.ClassToQtos, e.IfcClass, name)
			for _, q := range qs.Quantities {
				if key := strings.TrimSpace(q.Name); key != "" {
					increment(c.QtoToQuantityNames, name, key)
				}
			}
		}
	}
	return c
}

func increment(m map[string]map[string]int, outer, inner string) {
	counts, ok := m[outer]
	if !ok {
		counts = make(map[string]int)
		m[outer] = counts
	}
	counts[inner]++
}
