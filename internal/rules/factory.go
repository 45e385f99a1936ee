package rules

import (
	"fmt"
	"regexp"
	"strings"

	"ifcqa/pkg/domain"
)

// Rule type discriminators accepted in rulesets.
const (
	TypeMissingName                      = "MissingName"
	TypeMissingContainment               = "MissingContainment"
	TypeDuplicateGlobalID                = "DuplicateGlobalId"
	TypeRequirePset                      = "RequirePset"
	TypeRequireAnyPset                   = "RequireAnyPset"
	TypeRequireQto                       = "RequireQto"
	TypeRequirePsetPropertyKey           = "RequirePsetPropertyKey"
	TypeRequirePsetBool                  = "RequirePsetBool"
	TypeRequirePsetNumber                = "RequirePsetNumber"
	TypeRequireQtoQuantityNames          = "RequireQtoQuantityNames"
	TypeRequireQtoQtyValue               = "RequireQtoQtyValue"
	TypeComparePsetNumbers               = "ComparePsetNumbers"
	TypeRequireEqualStrings              = "RequireEqualStrings"
	TypeRequireNonEmpty                  = "RequireNonEmpty"
	TypeRequireNonEmptyAny               = "RequireNonEmptyAny"
	TypeRequireNonEmptyEither            = "RequireNonEmptyEither"
	TypeAllowedValues                    = "AllowedValues"
	TypeRegexMatch                       = "RegexMatch"
	TypeSpaceExternalHasExternalBoundary = "SpaceExternalHasExternalBoundary"
	TypeWallVolumeImpliesLength          = "WallVolumeImpliesLength"
)

// Types lists every supported rule type in documentation order.
func Types() []string {
	return []string{
		TypeMissingName, TypeMissingContainment, TypeDuplicateGlobalID,
		TypeRequirePset, TypeRequireAnyPset, TypeRequireQto,
		TypeRequirePsetPropertyKey, TypeRequirePsetBool, TypeRequirePsetNumber,
		TypeRequireQtoQuantityNames, TypeRequireQtoQtyValue, TypeComparePsetNumbers,
		TypeRequireEqualStrings, TypeRequireNonEmpty, TypeRequireNonEmptyAny,
		TypeRequireNonEmptyEither, TypeAllowedValues, TypeRegexMatch,
		TypeSpaceExternalHasExternalBoundary, TypeWallVolumeImpliesLength,
	}
}

// fieldCheck accumulates required-field checks for one spec.
type fieldCheck struct {
	spec RuleSpec
	err  error
}

func (c *fieldCheck) str(name, value string) string {
	if c.err == nil && strings.TrimSpace(value) == "" {
		c.err = domain.NewRulesetValidationError("Rule '%s' (%s) is missing required field '%s'.", c.spec.ID, c.spec.Type, name)
	}
	return strings.TrimSpace(value)
}

func (c *fieldCheck) list(name string, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if c.err == nil && len(out) == 0 {
		c.err = domain.NewRulesetValidationError("Rule '%s' (%s) requires a non-empty '%s'.", c.spec.ID, c.spec.Type, name)
	}
	return out
}

// Create builds the executable rule described by spec. Unknown types and
// missing required fields fail with a *domain.RulesetValidationError.
func Create(spec RuleSpec) (domain.Rule, error) {
	sev, _ := domain.ParseSeverity(spec.Severity)
	id := strings.TrimSpace(spec.ID)
	c := &fieldCheck{spec: spec}
	var rule domain.Rule

	switch strings.TrimSpace(spec.Type) {
	case TypeMissingName:
		rule = MissingNameRule(id, sev)
	case TypeMissingContainment:
		rule = MissingContainmentRule(id, sev)
	case TypeDuplicateGlobalID:
		rule = DuplicateGlobalIDRule(id, sev)
	case TypeRequirePset:
		rule = RequirePsetRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("pset", spec.Pset))
	case TypeRequireAnyPset:
		rule = RequireAnyPsetRule(id, sev, c.str("ifcClass", spec.IfcClass), c.list("psets", spec.Psets))
	case TypeRequireQto:
		rule = RequireQtoRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("qto", spec.Qto))
	case TypeRequirePsetPropertyKey:
		rule = RequirePsetPropertyKeyRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("pset", spec.Pset), c.str("key", spec.Key))
	case TypeRequirePsetBool:
		rule = RequirePsetBoolRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("pset", spec.Pset), c.str("key", spec.Key))
	case TypeRequirePsetNumber:
		rule = RequirePsetNumberRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("pset", spec.Pset), c.str("key", spec.Key),
			spec.MinExclusive.Float(0))
	case TypeRequireQtoQuantityNames:
		rule = RequireQtoQuantityNamesRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("qto", spec.Qto), c.list("qtyNames", spec.QtyNames))
	case TypeRequireQtoQtyValue:
		rule = RequireQtoQtyValueRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("qto", spec.Qto), c.str("qty", spec.Qty),
			spec.MinExclusive.Float(0))
	case TypeComparePsetNumbers:
		rule = ComparePsetNumbersRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("pset", spec.Pset), c.str("keyA", spec.KeyA), c.str("keyB", spec.KeyB))
	case TypeRequireEqualStrings:
		rule = RequireEqualStringsRule(id, sev, c.str("ifcClass", spec.IfcClass),
			c.str("psetA", spec.PsetA), c.str("keyA", spec.KeyA), c.str("psetB", spec.PsetB), c.str("keyB", spec.KeyB))
	case TypeRequireNonEmpty:
		rule = RequireNonEmptyRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("pset", spec.Pset), c.str("key", spec.Key), spec.SkipIfMissing)
	case TypeRequireNonEmptyAny:
		class := c.str("ifcClass", spec.IfcClass)
		attr, pset, key := strings.TrimSpace(spec.Attribute), strings.TrimSpace(spec.Pset), strings.TrimSpace(spec.Key)
		if c.err == nil && attr == "" && (pset == "" || key == "") {
			c.err = domain.NewRulesetValidationError("Rule '%s' (%s) needs 'attribute' or both 'pset' and 'key'.", id, spec.Type)
		}
		rule = RequireNonEmptyAnyRule(id, sev, class, attr, pset, key)
	case TypeRequireNonEmptyEither:
		rule = RequireNonEmptyEitherRule(id, sev, c.str("ifcClass", spec.IfcClass),
			c.str("psetA", spec.PsetA), c.str("keyA", spec.KeyA), c.str("psetB", spec.PsetB), c.str("keyB", spec.KeyB), spec.SkipIfMissing)
	case TypeAllowedValues:
		rule = AllowedValuesRule(id, sev, c.str("ifcClass", spec.IfcClass), c.str("pset", spec.Pset), c.str("key", spec.Key),
			c.list("allowedValues", spec.AllowedValues), spec.SkipIfMissing)
	case TypeRegexMatch:
		return createRegexMatch(id, sev, spec, c)
	case TypeSpaceExternalHasExternalBoundary:
		rule = SpaceExternalHasExternalBoundaryRule(id, sev)
	case TypeWallVolumeImpliesLength:
		rule = WallVolumeImpliesLengthRule(id, sev)
	default:
		return nil, &domain.RulesetValidationError{
			Reason: fmt.Sprintf("Unknown rule type '%s' for rule '%s'.", spec.Type, id),
			Err:    domain.ErrUnknownRuleType,
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return rule, nil
}

func createRegexMatch(id string, sev domain.Severity, spec RuleSpec, c *fieldCheck) (domain.Rule, error) {
	class := c.str("ifcClass", spec.IfcClass)
	pattern := c.str("pattern", spec.Pattern)
	attr, pset, key := strings.TrimSpace(spec.Attribute), strings.TrimSpace(spec.Pset), strings.TrimSpace(spec.Key)
	if c.err == nil && attr == "" && (pset == "" || key == "") {
		c.err = domain.NewRulesetValidationError("Rule '%s' (%s) needs 'attribute' or both 'pset' and 'key'.", id, spec.Type)
	}
	if c.err != nil {
		return nil, c.err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &domain.RulesetValidationError{
			Reason: fmt.Sprintf("Rule '%s' (%s) has an invalid pattern: %v.", id, spec.Type, err),
			Err:    err,
		}
	}
	return RegexMatchRule(id, sev, class, attr, pset, key, re, spec.SkipIfMissing), nil
}

// CreateAll builds rules in ruleset order, stopping at the first failure.
func CreateAll(specs []RuleSpec) ([]domain.Rule, error) {
	out := make([]domain.Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := Create(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}
