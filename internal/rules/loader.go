package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"gopkg.in/yaml.v3"

	"ifcqa/pkg/domain"
)

var specValidate *validator.Validate

func init() {
	specValidate = validator.New()
	_ = specValidate.RegisterValidation("notblank", validators.NotBlank)
}

// Ruleset is a loaded, validated ruleset together with its built rules.
type Ruleset struct {
	Spec  RulesetSpec
	Rules []domain.Rule
}

// Ref returns the ruleset identity recorded on reports.
func (r Ruleset) Ref() domain.RulesetRef {
	return domain.RulesetRef{Name: r.Spec.Name, Version: r.Spec.Version}
}

// Load reads, validates, and builds the ruleset at path. Files ending in
// .yaml or .yml are decoded as YAML; anything else as JSON.
func Load(path string) (Ruleset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Ruleset{}, fmt.Errorf("%w: %s", domain.ErrRulesetNotFound, path)
		}
		return Ruleset{}, fmt.Errorf("read ruleset %s: %w", path, err)
	}
	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return Parse(raw, format)
}

// Format selects the ruleset encoding.
type Format string

// Supported ruleset encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Parse decodes, validates, and builds a ruleset from raw bytes.
func Parse(raw []byte, format Format) (Ruleset, error) {
	spec, err := Decode(raw, format)
	if err != nil {
		return Ruleset{}, err
	}
	if err := Validate(spec); err != nil {
		return Ruleset{}, err
	}
	built, err := CreateAll(spec.Rules)
	if err != nil {
		return Ruleset{}, err
	}
	return Ruleset{Spec: spec, Rules: built}, nil
}

// Decode parses raw into a RulesetSpec. Field names match case-insensitively
// and unknown fields are ignored.
func Decode(raw []byte, format Format) (RulesetSpec, error) {
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return RulesetSpec{}, fmt.Errorf("%w: %v", domain.ErrRulesetParse, err)
		}
		converted, err := json.Marshal(normalizeYAML(doc))
		if err != nil {
			return RulesetSpec{}, fmt.Errorf("%w: %v", domain.ErrRulesetParse, err)
		}
		raw = converted
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return RulesetSpec{}, fmt.Errorf("%w: empty document", domain.ErrRulesetParse)
	}
	var spec RulesetSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return RulesetSpec{}, fmt.Errorf("%w: %v", domain.ErrRulesetParse, err)
	}
	return spec, nil
}

// normalizeYAML rewrites map[any]any nodes so the tree is JSON encodable.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

// Validate enforces the structural ruleset invariants, reporting the first
// violation in a fixed order: name, version, rules, duplicate ids, then the
// per-rule id and type fields.
func Validate(spec RulesetSpec) error {
	err := specValidate.Struct(spec)
	var verrs validator.ValidationErrors
	if err != nil && !errors.As(err, &verrs) {
		return &domain.RulesetValidationError{Reason: err.Error(), Err: err}
	}
	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.StructNamespace()] = true
	}
	switch {
	case failed["RulesetSpec.Name"]:
		return domain.NewRulesetValidationError("RulesetSpec.Name is required.")
	case failed["RulesetSpec.Version"]:
		return domain.NewRulesetValidationError("RulesetSpec.Version is required.")
	case failed["RulesetSpec.Rules"]:
		return domain.NewRulesetValidationError("RulesetSpec.Rules must contain at least one rule.")
	}
	if dupes := duplicateIDs(spec.Rules); len(dupes) > 0 {
		return domain.NewRulesetValidationError("Duplicate rule ids: %s", strings.Join(dupes, ","))
	}
	for i, r := range spec.Rules {
		if failed[fmt.Sprintf("RulesetSpec.Rules[%d].ID", i)] {
			return domain.NewRulesetValidationError("A rule is missing required field 'id'.")
		}
		if failed[fmt.Sprintf("RulesetSpec.Rules[%d].Type", i)] {
			return domain.NewRulesetValidationError("Rule '%s' is missing required field 'type'.", r.ID)
		}
	}
	return nil
}

// duplicateIDs returns non-blank ids used more than once, in first-seen order.
func duplicateIDs(specs []RuleSpec) []string {
	counts := make(map[string]int, len(specs))
	var order []string
	for _, s := range specs {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			continue
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	var dupes []string
	for _, id := range order {
		if counts[id] > 1 {
			dupes = append(dupes, id)
		}
	}
	return dupes
}

// SortedTypes returns Types sorted alphabetically, for help output.
func SortedTypes() []string {
	out := Types()
	sort.Strings(out)
	return out
}
