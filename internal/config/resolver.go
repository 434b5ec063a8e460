package config

import (
	"os"
	"path/filepath"
)

// Environment overrides for contract resolution
const (
	EnvContractsDir    = "ADRI_CONTRACTS_DIR"        // absolute override, beats every strategy
	EnvStrategy        = "ADRI_RESOLUTION_STRATEGY"  // flat|package_local|hybrid
	EnvPackageSubdir   = "ADRI_PACKAGE_SUBDIRECTORY" // subdirectory name for package-local contracts
	defaultPackageSubdir = "adri"
)

// Resolution strategies
const (
	StrategyFlat         = "flat"
	StrategyPackageLocal = "package_local"
	StrategyHybrid       = "hybrid"
)

// Resolution source labels recorded in audit trails
const (
	SourceEnvOverride  = "env_override"
	SourcePackageLocal = "package_local"
	SourceCentralized  = "centralized"
	SourceFallback     = "fallback"
)

// Resolution describes where a named standard resolves to and why
type Resolution struct {
	Path           string `json:"path"`
	Source         string `json:"source"`
	PackageContext string `json:"package_context,omitempty"`
	Exists         bool   `json:"exists"`
	StrategyUsed   string `json:"strategy_used"`
}

// Resolver maps standard names to contract file paths according to the
// configured layout strategy.
type Resolver struct {
	cfg *Config
}

// NewResolver builds a resolver over a loaded configuration
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		cfg = Default()
	}
	return &Resolver{cfg: cfg}
}

// Strategy returns the active resolution strategy. The environment wins;
// without it contracts resolve hybrid: package-local first, then the
// centralized directory.
func (r *Resolver) Strategy() string {
	if s := os.Getenv(EnvStrategy); s != "" {
		switch s {
		case StrategyFlat, StrategyPackageLocal, StrategyHybrid:
			return s
		}
	}
	return StrategyHybrid
}

func packageSubdir() string {
	if s := os.Getenv(EnvPackageSubdir); s != "" {
		return s
	}
	return defaultPackageSubdir
}

// Resolve locates the contract file for a standard name. packageContext
// is the directory of the calling package for package_local layouts;
// empty means no package context is available.
func (r *Resolver) Resolve(name, packageContext string) Resolution {
	filename := name + ".yaml"

	if dir := os.Getenv(EnvContractsDir); dir != "" {
		p := filepath.Join(dir, filename)
		return Resolution{
			Path:         p,
			Source:       SourceEnvOverride,
			Exists:       fileExists(p),
			StrategyUsed: r.Strategy(),
		}
	}

	strategy := r.Strategy()
	switch strategy {
	case StrategyPackageLocal:
		return r.resolvePackageLocal(filename, packageContext, strategy)
	case StrategyHybrid:
		// package-local wins when the file is already there, otherwise
		// fall through to the centralized directory
		if packageContext != "" {
			local := r.resolvePackageLocal(filename, packageContext, strategy)
			if local.Exists {
				return local
			}
		}
		return r.resolveCentralized(filename, strategy)
	default:
		return r.resolveCentralized(filename, strategy)
	}
}

func (r *Resolver) resolvePackageLocal(filename, packageContext, strategy string) Resolution {
	if packageContext == "" {
		res := r.resolveCentralized(filename, strategy)
		res.Source = SourceFallback
		return res
	}
	p := filepath.Join(packageContext, packageSubdir(), filename)
	return Resolution{
		Path:           p,
		Source:         SourcePackageLocal,
		PackageContext: packageContext,
		Exists:         fileExists(p),
		StrategyUsed:   strategy,
	}
}

func (r *Resolver) resolveCentralized(filename, strategy string) Resolution {
	p := filepath.Join(r.cfg.Paths.Standards, filename)
	return Resolution{
		Path:         p,
		Source:       SourceCentralized,
		Exists:       fileExists(p),
		StrategyUsed: strategy,
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
