package rules

import (
	"regexp"
	"strings"
	"testing"

	"ifcqa/internal/ifcmodel"
	"ifcqa/pkg/domain"
)

func buildModel(t *testing.T, fill func(b *ifcmodel.Builder)) domain.Model {
	t.Helper()
	b := ifcmodel.NewBuilder("fixture.ifc")
	fill(b)
	m, err := b.Build()
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m
}

func collect(rule domain.Rule, model domain.Model) []domain.Issue {
	var out []domain.Issue
	for issue := range rule.Evaluate(model) {
		out = append(out, issue)
	}
	return out
}

func wall(gid string, psets ifcmodel.Sets) ifcmodel.EntityRecord {
	return ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: gid, Name: "Wall " + gid, Psets: psets}
}

func TestMissingNameFlagsBlankNames(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: "A", Name: "Named"})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcDoor", GlobalID: "B", Name: "   "})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSpace", GlobalID: "C"})
	})
	issues := collect(MissingNameRule("R001", domain.SeverityWarning), model)
	if len(issues) != 2 || issues[0].GlobalID != "B" || issues[1].GlobalID != "C" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if issues[0].Message != "Element Name is missing/blank." || issues[0].Trace.Source != domain.SourceAttribute {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
}

func TestMissingContainmentSkipsSpatialEntities(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		storey := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcBuildingStorey", GlobalID: "S", Name: "L1"})
		placed := b.Add(wall("W1", nil))
		b.Add(wall("W2", nil))
		b.Contain(storey, placed)
	})
	issues := collect(MissingContainmentRule("R002", domain.SeverityError), model)
	if len(issues) != 1 || issues[0].GlobalID != "W2" {
		t.Fatalf("expected only W2 flagged, got %+v", issues)
	}
	if issues[0].Severity != domain.SeverityError {
		t.Fatalf("expected configured severity, got %s", issues[0].Severity)
	}
}

func TestDuplicateGlobalIDReportsEveryMember(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("G1", nil))
		b.Add(wall("G2", nil))
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcDoor", GlobalID: "G1"})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSlab", GlobalID: "G1"})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSlab", GlobalID: ""})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSlab", GlobalID: ""})
	})
	issues := collect(DuplicateGlobalIDRule("R003", domain.SeverityError), model)
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %+v", len(issues), issues)
	}
	for _, issue := range issues {
		if issue.RuleID != "R003" || issue.GlobalID != "G1" {
			t.Fatalf("unexpected issue %+v", issue)
		}
		if !strings.Contains(issue.Trace.Actual, "count = 3") || issue.Trace.Expected != "Unique" {
			t.Fatalf("unexpected trace %+v", issue.Trace)
		}
	}
}

func TestRequirePsetUsesUnionOfInstanceAndTypeScopes(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		typ := b.AddType(ifcmodel.TypeRecord{IfcClass: "IfcWallType", Psets: ifcmodel.Sets{"Pset_X": {"A": "1"}}})
		rec := wall("typed", nil)
		rec.TypeID = typ
		b.Add(rec)
		b.Add(wall("bare", nil))
		b.Add(wall("instance", ifcmodel.Sets{"pset_x": {"A": "1"}}))
	})
	issues := collect(RequirePsetRule("P1", domain.SeverityError, "IfcWall", "Pset_X"), model)
	if len(issues) != 1 || issues[0].GlobalID != "bare" {
		t.Fatalf("expected only bare wall flagged, got %+v", issues)
	}
	if issues[0].Message != "Missing required property set: Pset_X" {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestUnionResolutionPrefersInstanceValues(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		typ := b.AddType(ifcmodel.TypeRecord{IfcClass: "IfcWallType", Psets: ifcmodel.Sets{"Pset_X": {"Width": "2", "FireRating": "EI60"}}})
		rec := wall("W", ifcmodel.Sets{"Pset_X": {"Width": "1"}})
		rec.TypeID = typ
		b.Add(rec)
	})
	keyIssues := collect(RequirePsetPropertyKeyRule("K", domain.SeverityWarning, "IfcWall", "Pset_X", "FireRating"), model)
	if len(keyIssues) != 0 {
		t.Fatalf("type-scope key should satisfy the check, got %+v", keyIssues)
	}
	numIssues := collect(RequirePsetNumberRule("N", domain.SeverityWarning, "IfcWall", "Pset_X", "Width", 1.5), model)
	if len(numIssues) != 1 {
		t.Fatalf("expected instance value 1 to violate > 1.5, got %+v", numIssues)
	}
	if numIssues[0].Trace.Source != domain.SourcePsetInstance || numIssues[0].Trace.Actual != "1" {
		t.Fatalf("unexpected trace %+v", numIssues[0].Trace)
	}
}

func TestRequireAnyPsetAndQto(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("has-b", ifcmodel.Sets{"Pset_B": {"k": "v"}}))
		rec := wall("none", nil)
		rec.Qtos = ifcmodel.Sets{"Qto_WallBaseQuantities": {"Length": 1.0}}
		b.Add(rec)
	})
	anyIssues := collect(RequireAnyPsetRule("A", domain.SeverityWarning, "IfcWall", []string{"Pset_A", "Pset_B"}), model)
	if len(anyIssues) != 1 || anyIssues[0].GlobalID != "none" {
		t.Fatalf("unexpected any-pset issues %+v", anyIssues)
	}
	if anyIssues[0].Trace.Path != "AnyPset: [Pset_A,Pset_B]" || anyIssues[0].Trace.Source != domain.SourceDerived {
		t.Fatalf("unexpected trace %+v", anyIssues[0].Trace)
	}
	qtoIssues := collect(RequireQtoRule("Q", domain.SeverityInfo, "IfcWall", "Qto_WallBaseQuantities"), model)
	if len(qtoIssues) != 1 || qtoIssues[0].GlobalID != "has-b" {
		t.Fatalf("unexpected qto issues %+v", qtoIssues)
	}
	if qtoIssues[0].Message != "Missing required quantity set (recommended): Qto_WallBaseQuantities" {
		t.Fatalf("unexpected message %q", qtoIssues[0].Message)
	}
}

func TestRequirePsetPropertyKeySkipsMissingSet(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("no-set", nil))
		b.Add(wall("no-key", ifcmodel.Sets{"Pset_WallCommon": {"LoadBearing": "T"}}))
	})
	issues := collect(RequirePsetPropertyKeyRule("K", domain.SeverityWarning, "IfcWall", "Pset_WallCommon", "IsExternal"), model)
	if len(issues) != 1 || issues[0].GlobalID != "no-key" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if issues[0].Message != "Pset Pset_WallCommon is missing property key 'IsExternal'." {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestRequirePsetBool(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("ok-bool", ifcmodel.Sets{"Pset_WallCommon": {"IsExternal": true}}))
		b.Add(wall("ok-text", ifcmodel.Sets{"Pset_WallCommon": {"IsExternal": " f "}}))
		b.Add(wall("bad", ifcmodel.Sets{"Pset_WallCommon": {"IsExternal": "true"}}))
		b.Add(wall("missing-key", ifcmodel.Sets{"Pset_WallCommon": {}}))
		b.Add(wall("missing-set", nil))
	})
	issues := collect(RequirePsetBoolRule("B", domain.SeverityError, "IfcWall", "Pset_WallCommon", "IsExternal"), model)
	if len(issues) != 1 || issues[0].GlobalID != "bad" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if issues[0].Trace.Expected != "Boolean" || issues[0].Trace.Actual != "true" {
		t.Fatalf("unexpected trace %+v", issues[0].Trace)
	}
}

func TestRequirePsetNumberBoundary(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("equal", ifcmodel.Sets{"Pset_X": {"Width": 0.5}}))
		b.Add(wall("above", ifcmodel.Sets{"Pset_X": {"Width": "0.5000001"}}))
		b.Add(wall("text", ifcmodel.Sets{"Pset_X": {"Width": "wide"}}))
		b.Add(wall("comma", ifcmodel.Sets{"Pset_X": {"Width": "0,7"}}))
	})
	issues := collect(RequirePsetNumberRule("N", domain.SeverityWarning, "IfcWall", "Pset_X", "Width", 0.5), model)
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %+v", issues)
	}
	if issues[0].GlobalID != "equal" || issues[0].Message != "Property 'Width' in 'Pset_X' must be > 0.5 (found 0.5)." {
		t.Fatalf("unexpected boundary issue %+v", issues[0])
	}
	for _, issue := range issues[1:] {
		if !strings.Contains(issue.Message, "missing or not numeric") {
			t.Fatalf("expected non-numeric message, got %q", issue.Message)
		}
	}
}

func TestRequirePsetNumberDefaultsToZero(t *testing.T) {
	spec := RuleSpec{Type: TypeRequirePsetNumber, ID: "N", IfcClass: "IfcWall", Pset: "Pset_X", Key: "Width"}
	rule, err := Create(spec)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("zero", ifcmodel.Sets{"Pset_X": {"Width": 0}}))
		b.Add(wall("tiny", ifcmodel.Sets{"Pset_X": {"Width": 0.001}}))
	})
	issues := collect(rule, model)
	if len(issues) != 1 || issues[0].GlobalID != "zero" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestRequireQtoQuantityNames(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		rec := wall("partial", nil)
		rec.Qtos = ifcmodel.Sets{"Qto_WallBaseQuantities": {"length": 3.0}}
		b.Add(rec)
		b.Add(wall("no-qto", nil))
	})
	issues := collect(RequireQtoQuantityNamesRule("QN", domain.SeverityWarning, "IfcWall", "Qto_WallBaseQuantities", []string{"Length", "Height", "NetVolume"}), model)
	if len(issues) != 2 {
		t.Fatalf("expected one issue per missing quantity, got %+v", issues)
	}
	if issues[0].Message != "Qto 'Qto_WallBaseQuantities' is missing quantity 'Height'." {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestRequireQtoQtyValueRejectsNonFinite(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		for gid, v := range map[string]any{"nan": "NaN", "inf": "+Inf", "neg": -1.0, "ok": 2.5} {
			rec := wall(gid, nil)
			rec.ID = gid
			rec.Qtos = ifcmodel.Sets{"Qto_WallBaseQuantities": {"NetVolume": v}}
			b.Add(rec)
		}
	})
	issues := collect(RequireQtoQtyValueRule("QV", domain.SeverityError, "IfcWall", "Qto_WallBaseQuantities", "NetVolume", 0), model)
	got := map[string]string{}
	for _, issue := range issues {
		got[issue.GlobalID] = issue.Message
	}
	if len(got) != 3 || got["ok"] != "" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if !strings.Contains(got["nan"], "not numeric") || !strings.Contains(got["inf"], "not numeric") {
		t.Fatalf("expected non-finite values reported as not numeric: %+v", got)
	}
	if got["neg"] != "Quantity 'NetVolume' in 'Qto_WallBaseQuantities' must be > 0 (found -1)." {
		t.Fatalf("unexpected message %q", got["neg"])
	}
}

func TestComparePsetNumbers(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("bad", ifcmodel.Sets{"Pset_X": {"Height": 2, "ClearHeight": 2.5}}))
		b.Add(wall("equal", ifcmodel.Sets{"Pset_X": {"Height": 2, "ClearHeight": 2}}))
		b.Add(wall("partial", ifcmodel.Sets{"Pset_X": {"Height": 2}}))
		b.Add(wall("text", ifcmodel.Sets{"Pset_X": {"Height": "tall", "ClearHeight": 2}}))
	})
	issues := collect(ComparePsetNumbersRule("C", domain.SeverityWarning, "IfcWall", "Pset_X", "Height", "ClearHeight"), model)
	if len(issues) != 1 || issues[0].GlobalID != "bad" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if issues[0].Message != "'Height' (2) should be >= 'ClearHeight' (2.5) in 'Pset_X'." {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestRequireEqualStrings(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("same", ifcmodel.Sets{"A": {"Ref": "EI60"}, "B": {"Ref": "ei60 "}}))
		b.Add(wall("diff", ifcmodel.Sets{"A": {"Ref": "EI60"}, "B": {"Ref": "EI30"}}))
		b.Add(wall("blank", ifcmodel.Sets{"A": {"Ref": ""}, "B": {"Ref": "EI30"}}))
	})
	issues := collect(RequireEqualStringsRule("E", domain.SeverityWarning, "IfcWall", "A", "Ref", "B", "Ref"), model)
	if len(issues) != 1 || issues[0].GlobalID != "diff" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if issues[0].Trace.Source != domain.SourceDerived {
		t.Fatalf("expected derived trace, got %+v", issues[0].Trace)
	}
}

func TestRequireNonEmptySkipIfMissing(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("no-set", nil))
		b.Add(wall("no-key", ifcmodel.Sets{"Pset_X": {"Other": "v"}}))
		b.Add(wall("blank", ifcmodel.Sets{"Pset_X": {"Ref": "  "}}))
		b.Add(wall("ok", ifcmodel.Sets{"Pset_X": {"Ref": "A1"}}))
	})
	skipping := collect(RequireNonEmptyRule("NE", domain.SeverityWarning, "IfcWall", "Pset_X", "Ref", true), model)
	if len(skipping) != 1 || skipping[0].GlobalID != "blank" {
		t.Fatalf("skipIfMissing should only report blank values, got %+v", skipping)
	}
	if skipping[0].Message != "Property 'Pset_X.Ref' must not be empty." {
		t.Fatalf("unexpected message %q", skipping[0].Message)
	}
	strict := collect(RequireNonEmptyRule("NE", domain.SeverityWarning, "IfcWall", "Pset_X", "Ref", false), model)
	if len(strict) != 3 {
		t.Fatalf("expected 3 issues, got %+v", strict)
	}
	if strict[0].Message != "Missing property set 'Pset_X' (required for 'Ref')." {
		t.Fatalf("unexpected message %q", strict[0].Message)
	}
	if strict[1].Message != "Missing property 'Ref' in 'Pset_X'." {
		t.Fatalf("unexpected message %q", strict[1].Message)
	}
}

func TestAllowedValues(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("ok", ifcmodel.Sets{"Pset_X": {"Status": " new "}}))
		b.Add(wall("bad", ifcmodel.Sets{"Pset_X": {"Status": "Demolish"}}))
		b.Add(wall("no-set", nil))
	})
	issues := collect(AllowedValuesRule("AV", domain.SeverityError, "IfcWall", "Pset_X", "Status", []string{"New", " Existing"}, true), model)
	if len(issues) != 1 || issues[0].GlobalID != "bad" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if issues[0].Message != "Property 'Pset_X.Status' has value 'Demolish', expected one of [New,Existing]." {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
	strict := collect(AllowedValuesRule("AV", domain.SeverityError, "IfcWall", "Pset_X", "Status", []string{"New"}, false), model)
	if len(strict) != 2 {
		t.Fatalf("expected missing set reported without skipIfMissing, got %+v", strict)
	}
}

func TestRequireNonEmptyAny(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcDoor", GlobalID: "attr", Attributes: map[string]string{"Tag": "D-01"}})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcDoor", GlobalID: "pset", Psets: ifcmodel.Sets{"Pset_DoorCommon": {"Reference": "D2"}}})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcDoor", GlobalID: "none", Attributes: map[string]string{"Tag": " "}})
	})
	issues := collect(RequireNonEmptyAnyRule("NA", domain.SeverityWarning, "IfcDoor", "Tag", "Pset_DoorCommon", "Reference"), model)
	if len(issues) != 1 || issues[0].GlobalID != "none" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestRequireNonEmptyEither(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("a", ifcmodel.Sets{"A": {"k": "x"}}))
		b.Add(wall("blank", ifcmodel.Sets{"A": {"k": ""}}))
		b.Add(wall("absent", nil))
	})
	skipping := collect(RequireNonEmptyEitherRule("EI", domain.SeverityWarning, "IfcWall", "A", "k", "B", "k", true), model)
	if len(skipping) != 1 || skipping[0].GlobalID != "blank" {
		t.Fatalf("unexpected issues %+v", skipping)
	}
	strict := collect(RequireNonEmptyEitherRule("EI", domain.SeverityWarning, "IfcWall", "A", "k", "B", "k", false), model)
	if len(strict) != 2 {
		t.Fatalf("expected blank and absent reported, got %+v", strict)
	}
	if strict[0].Message != "Expected non-empty value in either 'A.k' or 'B.k'." {
		t.Fatalf("unexpected message %q", strict[0].Message)
	}
}

func TestRegexMatch(t *testing.T) {
	pattern := regexp.MustCompile(`^W-\d{3}$`)
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: "ok", Name: "W-001"})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: "bad", Name: "Wall 1"})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: "blank"})
	})
	issues := collect(RegexMatchRule("RX", domain.SeverityWarning, "IfcWall", "Name", "", "", pattern, true), model)
	if len(issues) != 2 {
		t.Fatalf("expected mismatch and blank reported, got %+v", issues)
	}
	if issues[0].GlobalID != "bad" || issues[0].Trace.Expected != `Regex: ^W-\d{3}$` || issues[0].Trace.Actual != "Wall 1" {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
	if issues[1].Message != "Attribute 'Name' is missing/empty." {
		t.Fatalf("unexpected message %q", issues[1].Message)
	}

	psetModel := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(wall("absent", nil))
		b.Add(wall("match", ifcmodel.Sets{"Pset_X": {"Code": "W-123"}}))
	})
	if got := collect(RegexMatchRule("RX", domain.SeverityWarning, "IfcWall", "", "Pset_X", "Code", pattern, true), psetModel); len(got) != 0 {
		t.Fatalf("expected absent target skipped, got %+v", got)
	}
	if got := collect(RegexMatchRule("RX", domain.SeverityWarning, "IfcWall", "", "Pset_X", "Code", pattern, false), psetModel); len(got) != 1 || got[0].GlobalID != "absent" {
		t.Fatalf("expected absent target reported, got %+v", got)
	}
}

func TestSpaceExternalHasExternalBoundary(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		extSpace := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSpace", GlobalID: "S1", Psets: ifcmodel.Sets{"Pset_SpaceCommon": {"IsExternal": true}}})
		okSpace := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSpace", GlobalID: "S2", Psets: ifcmodel.Sets{"Pset_SpaceCommon": {"IsExternal": "T"}}})
		intSpace := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSpace", GlobalID: "S3", Psets: ifcmodel.Sets{"Pset_SpaceCommon": {"IsExternal": false}}})
		innerWall := b.Add(wall("W1", ifcmodel.Sets{"Pset_WallCommon": {"IsExternal": false}}))
		outerWall := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWallStandardCase", GlobalID: "W2", Psets: ifcmodel.Sets{"Pset_WallCommon": {"IsExternal": true}}})
		slab := b.Add(ifcmodel.EntityRecord{IfcClass: "IfcSlab", GlobalID: "SL", Psets: ifcmodel.Sets{"Pset_WallCommon": {"IsExternal": true}}})
		b.Bound(extSpace, innerWall)
		b.Bound(extSpace, slab)
		b.Bound(okSpace, outerWall)
		b.Bound(intSpace, innerWall)
	})
	issues := collect(SpaceExternalHasExternalBoundaryRule("SP", domain.SeverityWarning), model)
	if len(issues) != 1 || issues[0].GlobalID != "S1" || issues[0].IfcClass != "IfcSpace" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestWallVolumeImpliesLength(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		add := func(gid, class string, q map[string]any) {
			b.Add(ifcmodel.EntityRecord{IfcClass: class, GlobalID: gid, Qtos: ifcmodel.Sets{"Qto_WallBaseQuantities": q}})
		}
		add("missing", "IfcWall", map[string]any{"NetVolume": 1.2})
		add("zero", "IfcWallStandardCase", map[string]any{"NetVolume": 1.2, "Length": 0})
		add("ok", "IfcWall", map[string]any{"NetVolume": 1.2, "Length": 4})
		add("no-volume", "IfcWall", map[string]any{"NetVolume": 0})
		add("slab", "IfcSlab", map[string]any{"NetVolume": 1.2})
	})
	issues := collect(WallVolumeImpliesLengthRule("WV", domain.SeverityWarning), model)
	if len(issues) != 2 || issues[0].GlobalID != "missing" || issues[1].GlobalID != "zero" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if issues[0].Trace.Actual != "NetVolume = 1.2, Length = Missing" || issues[1].Trace.Actual != "NetVolume = 1.2, Length = 0" {
		t.Fatalf("unexpected traces %+v / %+v", issues[0].Trace, issues[1].Trace)
	}
}

func TestClassFilterIsExactAndCaseInsensitive(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: "W"})
		b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWallStandardCase", GlobalID: "WSC"})
	})
	issues := collect(RequirePsetRule("P", domain.SeverityWarning, "ifcwall", "Pset_WallCommon"), model)
	if len(issues) != 1 || issues[0].GlobalID != "W" {
		t.Fatalf("expected exact class match only, got %+v", issues)
	}
}

func TestEvaluateStopsWhenConsumerStops(t *testing.T) {
	model := buildModel(t, func(b *ifcmodel.Builder) {
		for i := 0; i < 5; i++ {
			b.Add(ifcmodel.EntityRecord{IfcClass: "IfcWall", GlobalID: "W"})
		}
	})
	seen := 0
	for range DuplicateGlobalIDRule("D", domain.SeverityError).Evaluate(model) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Fatalf("expected early stop after 2 issues, got %d", seen)
	}
	rule := MissingNameRule("R", domain.SeverityInfo)
	first, second := collect(rule, model), collect(rule, model)
	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("expected restartable evaluation, got %d then %d", len(first), len(second))
	}
}
