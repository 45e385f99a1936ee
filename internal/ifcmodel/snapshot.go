// Package ifcmodel provides the concrete model access layer: a JSON entity
// graph snapshot extracted from an IFC file, exposed through domain.Model.
package ifcmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Sets maps set name to key to raw value. Values are JSON scalars; booleans
// stand for IFC logicals and numbers keep their literal text.
type Sets map[string]map[string]any

// EntityRecord is one product in a snapshot.
type EntityRecord struct {
	ID         string            `json:"id"`
	IfcClass   string            `json:"ifcClass"`
	GlobalID   string            `json:"globalId"`
	Name       string            `json:"name,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	TypeID     string            `json:"typeId,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Psets      Sets              `json:"psets,omitempty"`
	Qtos       Sets              `json:"qtos,omitempty"`
}

// TypeRecord is a type object whose sets are inherited by its instances.
type TypeRecord struct {
	ID       string `json:"id"`
	IfcClass string `json:"ifcClass"`
	Name     string `json:"name,omitempty"`
	Psets    Sets   `json:"psets,omitempty"`
	Qtos     Sets   `json:"qtos,omitempty"`
}

// ContainmentRecord places elements in a spatial structure.
type ContainmentRecord struct {
	Structure string   `json:"structure"`
	Elements  []string `json:"elements"`
}

// BoundaryRecord links a space to a bounding element.
type BoundaryRecord struct {
	Space   string `json:"space"`
	Element string `json:"element,omitempty"`
}

// Snapshot is the serialized entity graph.
type Snapshot struct {
	Schema          string              `json:"schema,omitempty"`
	Entities        []EntityRecord      `json:"entities"`
	Types           []TypeRecord        `json:"types,omitempty"`
	Containment     []ContainmentRecord `json:"containment,omitempty"`
	SpaceBoundaries []BoundaryRecord    `json:"spaceBoundaries,omitempty"`
}

// Decode reads a snapshot, keeping numeric literals as json.Number.
func Decode(r io.Reader) (Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode model snapshot: %w", err)
	}
	return snap, nil
}

// Encode renders a snapshot as indented JSON.
func Encode(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var spatialClasses = map[string]struct{}{
	"ifcsite":                   {},
	"ifcbuilding":               {},
	"ifcbuildingstorey":         {},
	"ifcspace":                  {},
	"ifcspatialzone":            {},
	"ifcexternalspatialelement": {},
	"ifcfacility":               {},
	"ifcfacilitypart":           {},
	"ifcbridge":                 {},
	"ifcroad":                   {},
	"ifcrailway":                {},
}

var nonElementClasses = map[string]struct{}{
	"ifcannotation":            {},
	"ifcgrid":                  {},
	"ifcport":                  {},
	"ifcdistributionport":      {},
	"ifcstructuralpointaction": {},
	"ifcstructuralcurvemember": {},
	"ifcproxy":                 {},
	"ifcpositioningelement":    {},
	"ifcalignment":             {},
}

// inferKind classifies a product by its class name when the snapshot does
// not say.
func inferKind(class string) string {
	key := strings.ToLower(strings.TrimSpace(class))
	if _, ok := spatialClasses[key]; ok {
		return "spatial"
	}
	if _, ok := nonElementClasses[key]; ok {
		return "other"
	}
	return "element"
}
