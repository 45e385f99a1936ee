package domain

import (
	"testing"

	"ifcqa/testutil"
)

// The domain package is the shared vocabulary of rules, models, and run
// history. It stays free of implementation packages and third-party code.
func TestDomainImportsOnlyStandardLibrary(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(ip string) bool {
		return testutil.InternalImportForbidden(ip) || testutil.ThirdPartyImportForbidden(ip)
	}, "pkg/domain must only depend on the standard library")
}

func TestDomainHasNoStorageOrCLIDependencies(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, ".", func(p string) bool {
		return testutil.StorageDriverForbidden(p) || testutil.CLIImportForbidden(p) || testutil.InternalImportForbidden(p)
	}, "pkg/domain must not pull in storage drivers, the CLI, or internal packages")
}
