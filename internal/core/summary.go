package core

import (
	"sort"
	"strings"

	"ifcqa/pkg/domain"
)

// TopNames bounds the pset and qto name rankings in a Summary.
const TopNames = 30

// ClassStats describes how well one class is populated.
type ClassStats struct {
	IfcClass         string  `json:"ifcClass"`
	Count            int     `json:"count"`
	WithAnyPsetCount int     `json:"withAnyPsetCount"`
	WithAnyQtoCount  int     `json:"withAnyQtoCount"`
	WithAnyPsetPct   float64 `json:"withAnyPsetPct"`
	WithAnyQtoPct    float64 `json:"withAnyQtoPct"`
}

// NameCount pairs a set name with how many entities carry it.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the rule-independent overview of a model.
type Summary struct {
	ModelPath    string       `json:"modelPath"`
	ProductCount int          `json:"productCount"`
	ByClass      []ClassStats `json:"byClass"`
	TopPsets     []NameCount  `json:"topPsets"`
	TopQtos      []NameCount  `json:"topQtos"`
}

// Summarize computes per-class population statistics and the most common
// instance-level pset and qto names.
func Summarize(model domain.Model) Summary {
	entities := model.Entities()
	summary := Summary{ModelPath: model.Path(), ProductCount: len(entities)}

	stats := make(map[string]*ClassStats)
	var classOrder []string
	psetNames := make(map[string]int)
	qtoNames := make(map[string]int)
	for _, e := range entities {
		cs, ok := stats[e.IfcClass]
		if !ok {
			cs = &ClassStats{IfcClass: e.IfcClass}
			stats[e.IfcClass] = cs
			classOrder = append(classOrder, e.IfcClass)
		}
		cs.Count++
		psets := model.PropertySets(e, domain.ScopeInstance)
		if len(psets) > 0 {
			cs.WithAnyPsetCount++
		}
		for _, ps := range psets {
			if name := strings.TrimSpace(ps.Name); name != "" {
				psetNames[name]++
			}
		}
		qtos := model.QuantitySets(e, domain.ScopeInstance)
		if len(qtos) > 0 {
			cs.WithAnyQtoCount++
		}
		for _, qs := range qtos {
			if name := strings.TrimSpace(qs.Name); name != "" {
				qtoNames[name]++
			}
		}
	}

	summary.ByClass = make([]ClassStats, 0, len(classOrder))
	for _, class := range classOrder {
		cs := stats[class]
		cs.WithAnyPsetPct = ratio(cs.WithAnyPsetCount, cs.Count)
		cs.WithAnyQtoPct = ratio(cs.WithAnyQtoCount, cs.Count)
		summary.ByClass = append(summary.ByClass, *cs)
	}
	sort.SliceStable(summary.ByClass, func(i, j int) bool {
		if summary.ByClass[i].Count != summary.ByClass[j].Count {
			return summary.ByClass[i].Count > summary.ByClass[j].Count
		}
		return summary.ByClass[i].IfcClass < summary.ByClass[j].IfcClass
	})
	summary.TopPsets = topNames(psetNames, TopNames)
	summary.TopQtos = topNames(qtoNames, TopNames)
	return summary
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func topNames(counts map[string]int, limit int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, NameCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
