// Package config holds run configuration for freezemod.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable freezemod reads,
	// e.g. FREEZEMOD_ROOT_DIR.
	EnvPrefix = "FREEZEMOD"

	// ConfigFileName is the name of the optional config file (without extension).
	ConfigFileName = "freezemod"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"

	// DefaultSumFile is where checksum records are written by default.
	DefaultSumFile = "frozen.sum"
)

// Keys shared between cobra flags, viper and environment variables.
const (
	KeyRootDir       = "root-dir"
	KeyFrozenC       = "frozen-c"
	KeyFrozenModules = "frozen-modules"
	KeyManifest      = "manifest"
	KeyStrict        = "strict"
	KeyVerbose       = "verbose"
	KeySumFile       = "sum"
)

// Layout describes the source tree and generated-artifact conventions.
// The defaults match CPython's tree.
type Layout struct {
	// LibDir is the library root, relative to the root directory.
	LibDir string
	// ModuleSuffix is the file suffix of a leaf module.
	ModuleSuffix string
	// PackageInit is the file name that turns a directory into a package.
	PackageInit string
	// FrozenDir holds the primary per-module artifacts, relative to root.
	FrozenDir string
	// DeepfreezeDir holds the secondary per-module artifacts, relative to root.
	DeepfreezeDir string
	// ArtifactSuffix is appended to the frozen id to name an artifact.
	ArtifactSuffix string
	// SymbolPrefix prefixes the generated byte-array symbol.
	SymbolPrefix string
}

// DefaultLayout returns CPython's conventions.
func DefaultLayout() Layout {
	return Layout{
		LibDir:         "Lib",
		ModuleSuffix:   ".py",
		PackageInit:    "__init__.py",
		FrozenDir:      filepath.Join("Python", "frozen_modules"),
		DeepfreezeDir:  filepath.Join("Python", "deepfreeze"),
		ArtifactSuffix: ".h",
		SymbolPrefix:   "_Py_M__",
	}
}

// Config holds configuration for a freezemod run.
type Config struct {
	// RootDir is the source tree root. When empty the enclosing git
	// worktree is used.
	RootDir string

	// FrozenC is the target file whose marker regions are regenerated.
	FrozenC string

	// FrozenModules embeds module bytes in the tables instead of leaving
	// them to the accessor functions.
	FrozenModules bool

	// Manifest is an optional TOML or CUE spec list. Empty means the
	// built-in list.
	Manifest string

	// Strict fails resolution when an inferred source file does not exist.
	Strict bool

	// Verbose enables debug logging.
	Verbose bool

	// SumFile is the checksum file read by verify and written by sum.
	SumFile string

	Layout Layout
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() *Config {
	return &Config{
		SumFile: DefaultSumFile,
		Layout:  DefaultLayout(),
	}
}

// NewViper creates a viper instance with freezemod's defaults and
// environment binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault(KeyFrozenModules, defaults.FrozenModules)
	v.SetDefault(KeyStrict, defaults.Strict)
	v.SetDefault(KeyVerbose, defaults.Verbose)
	v.SetDefault(KeySumFile, defaults.SumFile)
	v.SetDefault("layout.lib_dir", defaults.Layout.LibDir)
	v.SetDefault("layout.module_suffix", defaults.Layout.ModuleSuffix)
	v.SetDefault("layout.package_init", defaults.Layout.PackageInit)
	v.SetDefault("layout.frozen_dir", defaults.Layout.FrozenDir)
	v.SetDefault("layout.deepfreeze_dir", defaults.Layout.DeepfreezeDir)
	v.SetDefault("layout.artifact_suffix", defaults.Layout.ArtifactSuffix)
	v.SetDefault("layout.symbol_prefix", defaults.Layout.SymbolPrefix)
	return v
}

// Load reads the config file (explicit path, or freezemod.toml in the
// working directory when present) into v and returns the merged result.
// Flags bound to v take precedence over environment variables, which take
// precedence over the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		RootDir:       v.GetString(KeyRootDir),
		FrozenC:       v.GetString(KeyFrozenC),
		FrozenModules: v.GetBool(KeyFrozenModules),
		Manifest:      v.GetString(KeyManifest),
		Strict:        v.GetBool(KeyStrict),
		Verbose:       v.GetBool(KeyVerbose),
		SumFile:       v.GetString(KeySumFile),
		Layout: Layout{
			LibDir:         v.GetString("layout.lib_dir"),
			ModuleSuffix:   v.GetString("layout.module_suffix"),
			PackageInit:    v.GetString("layout.package_init"),
			FrozenDir:      v.GetString("layout.frozen_dir"),
			DeepfreezeDir:  v.GetString("layout.deepfreeze_dir"),
			ArtifactSuffix: v.GetString("layout.artifact_suffix"),
			SymbolPrefix:   v.GetString("layout.symbol_prefix"),
		},
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every convention is set.
func (l Layout) Validate() error {
	fields := []struct{ name, value string }{
		{"layout.lib_dir", l.LibDir},
		{"layout.module_suffix", l.ModuleSuffix},
		{"layout.package_init", l.PackageInit},
		{"layout.frozen_dir", l.FrozenDir},
		{"layout.deepfreeze_dir", l.DeepfreezeDir},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("invalid config: %s must not be empty", f.name)
		}
	}
	if !strings.HasSuffix(l.PackageInit, l.ModuleSuffix) {
		return fmt.Errorf("invalid config: package init %q must end with module suffix %q", l.PackageInit, l.ModuleSuffix)
	}
	return nil
}
