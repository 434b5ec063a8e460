package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testResolver(t *testing.T, standardsDir string) *Resolver {
	t.Helper()
	cfg := Default()
	cfg.Paths.Standards = standardsDir
	return NewResolver(cfg)
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveEnvOverrideBeatsEverything(t *testing.T) {
	override := t.TempDir()
	touch(t, filepath.Join(override, "orders.yaml"))
	t.Setenv(EnvContractsDir, override)
	t.Setenv(EnvStrategy, StrategyPackageLocal)

	res := testResolver(t, t.TempDir()).Resolve("orders", "/some/pkg")
	if res.Source != SourceEnvOverride {
		t.Errorf("source = %q", res.Source)
	}
	if !res.Exists {
		t.Error("override path should be found")
	}
	if res.Path != filepath.Join(override, "orders.yaml") {
		t.Errorf("path = %q", res.Path)
	}
}

func TestResolveFlatCentralized(t *testing.T) {
	t.Setenv(EnvContractsDir, "")
	t.Setenv(EnvStrategy, StrategyFlat)
	t.Setenv(EnvPackageSubdir, "")

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "orders.yaml"))
	// flat never looks in the package directory, even when a local file exists
	pkg := t.TempDir()
	touch(t, filepath.Join(pkg, "adri", "orders.yaml"))
	res := testResolver(t, dir).Resolve("orders", pkg)
	if res.Source != SourceCentralized || !res.Exists {
		t.Errorf("resolution = %+v", res)
	}
	if res.StrategyUsed != StrategyFlat {
		t.Errorf("strategy = %q", res.StrategyUsed)
	}
}

func TestResolveDefaultStrategyIsHybrid(t *testing.T) {
	t.Setenv(EnvContractsDir, "")
	t.Setenv(EnvStrategy, "")
	t.Setenv(EnvPackageSubdir, "")

	central := t.TempDir()
	pkg := t.TempDir()
	touch(t, filepath.Join(pkg, "adri", "orders.yaml"))

	res := testResolver(t, central).Resolve("orders", pkg)
	if res.StrategyUsed != StrategyHybrid {
		t.Errorf("strategy = %q, want hybrid by default", res.StrategyUsed)
	}
	if res.Source != SourcePackageLocal || !res.Exists {
		t.Errorf("unconfigured resolution must try the package directory first: %+v", res)
	}

	// without a local contract the same lookup lands on the centralized dir
	res = testResolver(t, central).Resolve("invoices", pkg)
	if res.Source != SourceCentralized || res.StrategyUsed != StrategyHybrid {
		t.Errorf("centralized fallback: %+v", res)
	}
}

func TestResolvePackageLocal(t *testing.T) {
	t.Setenv(EnvContractsDir, "")
	t.Setenv(EnvStrategy, StrategyPackageLocal)
	t.Setenv(EnvPackageSubdir, "")

	pkg := t.TempDir()
	touch(t, filepath.Join(pkg, "adri", "orders.yaml"))
	res := testResolver(t, t.TempDir()).Resolve("orders", pkg)
	if res.Source != SourcePackageLocal || !res.Exists {
		t.Errorf("resolution = %+v", res)
	}
	if res.PackageContext != pkg {
		t.Errorf("package context = %q", res.PackageContext)
	}
}

func TestResolvePackageLocalWithoutContextFallsBack(t *testing.T) {
	t.Setenv(EnvContractsDir, "")
	t.Setenv(EnvStrategy, StrategyPackageLocal)

	res := testResolver(t, t.TempDir()).Resolve("orders", "")
	if res.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", res.Source)
	}
}

func TestResolveHybridPrefersLocalWhenPresent(t *testing.T) {
	t.Setenv(EnvContractsDir, "")
	t.Setenv(EnvStrategy, StrategyHybrid)
	t.Setenv(EnvPackageSubdir, "")

	central := t.TempDir()
	touch(t, filepath.Join(central, "orders.yaml"))
	pkg := t.TempDir()

	// no local file: hybrid falls through to centralized
	res := testResolver(t, central).Resolve("orders", pkg)
	if res.Source != SourceCentralized || !res.Exists {
		t.Errorf("without local file: %+v", res)
	}

	// local file appears: hybrid prefers it
	touch(t, filepath.Join(pkg, "adri", "orders.yaml"))
	res = testResolver(t, central).Resolve("orders", pkg)
	if res.Source != SourcePackageLocal {
		t.Errorf("with local file: %+v", res)
	}
}

func TestResolveCustomSubdirectory(t *testing.T) {
	t.Setenv(EnvContractsDir, "")
	t.Setenv(EnvStrategy, StrategyPackageLocal)
	t.Setenv(EnvPackageSubdir, "contracts")

	pkg := t.TempDir()
	touch(t, filepath.Join(pkg, "contracts", "orders.yaml"))
	res := testResolver(t, t.TempDir()).Resolve("orders", pkg)
	if !res.Exists {
		t.Errorf("custom subdirectory not honored: %+v", res)
	}
}
