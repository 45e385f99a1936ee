package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RuleSpec is the declarative form of a single rule. Type selects the rule
// kind; the remaining optional fields are interpreted per kind.
type RuleSpec struct {
	Type     string `json:"type" yaml:"type" validate:"notblank"`
	ID       string `json:"id" yaml:"id" validate:"notblank"`
	Severity string `json:"severity,omitempty" yaml:"severity,omitempty"`

	IfcClass      string   `json:"ifcClass,omitempty" yaml:"ifcClass,omitempty"`
	Pset          string   `json:"pset,omitempty" yaml:"pset,omitempty"`
	Psets         []string `json:"psets,omitempty" yaml:"psets,omitempty"`
	Key           string   `json:"key,omitempty" yaml:"key,omitempty"`
	PsetA         string   `json:"psetA,omitempty" yaml:"psetA,omitempty"`
	KeyA          string   `json:"keyA,omitempty" yaml:"keyA,omitempty"`
	PsetB         string   `json:"psetB,omitempty" yaml:"psetB,omitempty"`
	KeyB          string   `json:"keyB,omitempty" yaml:"keyB,omitempty"`
	Qto           string   `json:"qto,omitempty" yaml:"qto,omitempty"`
	Qty           string   `json:"qty,omitempty" yaml:"qty,omitempty"`
	QtyNames      []string `json:"qtyNames,omitempty" yaml:"qtyNames,omitempty"`
	MinExclusive  *Number  `json:"minExclusive,omitempty" yaml:"minExclusive,omitempty"`
	AllowedValues []string `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`
	Attribute     string   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	SkipIfMissing bool     `json:"skipIfMissing,omitempty" yaml:"skipIfMissing,omitempty"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// RulesetSpec is a named, versioned, ordered list of rule specs.
type RulesetSpec struct {
	Name    string     `json:"name" yaml:"name" validate:"notblank"`
	Version string     `json:"version" yaml:"version" validate:"notblank"`
	Rules   []RuleSpec `json:"rules" yaml:"rules" validate:"required,min=1,dive"`
}

// Number is a float that also decodes from a numeric string, so that
// "minExclusive": "0.5" and "minExclusive": 0.5 are equivalent.
type Number float64

// Float returns n as float64; nil yields def.
func (n *Number) Float(def float64) float64 {
	if n == nil {
		return def
	}
	return float64(*n)
}

// UnmarshalJSON accepts a JSON number or a string holding one.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}
