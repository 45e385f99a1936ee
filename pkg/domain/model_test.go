package domain

import "testing"

func TestEntityAttributeLookup(t *testing.T) {
	e := Entity{
		IfcClass:   "IfcDoor",
		GlobalID:   "2O2Fr$t4X7Zf8NOew3FLOH",
		Name:       "Door-01",
		Attributes: map[string]string{"ObjectType": "Single swing"},
	}
	cases := map[string]string{
		"name":       "Door-01",
		"GLOBALID":   "2O2Fr$t4X7Zf8NOew3FLOH",
		"IfcClass":   "IfcDoor",
		"objecttype": "Single swing",
	}
	for attr, want := range cases {
		got, ok := e.Attribute(attr)
		if !ok || got != want {
			t.Errorf("Attribute(%q) = %q, %v; want %q", attr, got, ok, want)
		}
	}
	if _, ok := e.Attribute("Tag"); ok {
		t.Fatalf("expected missing attribute to report false")
	}
}

func TestEntityIsClassIgnoresCase(t *testing.T) {
	e := Entity{IfcClass: "IfcWallStandardCase"}
	if !e.IsClass("ifcwallstandardcase") || !e.IsClass(" IFCWALLSTANDARDCASE ") {
		t.Fatalf("expected case-insensitive class match")
	}
	if e.IsClass("IfcWall") {
		t.Fatalf("class match must not consider subtypes")
	}
}

func TestScopeIncludes(t *testing.T) {
	if !ScopeBoth.Includes(ScopeInstance) || !ScopeBoth.Includes(ScopeType) {
		t.Fatalf("ScopeBoth must include both scopes")
	}
	if ScopeInstance.Includes(ScopeType) {
		t.Fatalf("instance scope must not include type scope")
	}
}

func TestCountsAdd(t *testing.T) {
	var c Counts
	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityWarning, SeverityInfo} {
		c.Add(sev)
	}
	if c != (Counts{Total: 4, Errors: 1, Warnings: 2, Info: 1}) {
		t.Fatalf("unexpected counts %+v", c)
	}
}
