package rules

import (
	"testing"

	"ifcqa/testutil"
)

func TestRulesStayIndependentOfStorageAndCLI(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, ".", func(p string) bool {
		return testutil.StorageDriverForbidden(p) || testutil.CLIImportForbidden(p)
	}, "rule evaluation must not depend on storage drivers or the CLI")
}
