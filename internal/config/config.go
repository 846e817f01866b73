// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vipsbundle/vipsbundle/internal/issue"
	"github.com/vipsbundle/vipsbundle/pkg/cueutil"
	"github.com/vipsbundle/vipsbundle/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "vipsbundle"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (VIPSBUNDLE_WINDOWS_REPO, ...).
	EnvPrefix = "VIPSBUNDLE"
	// TokenEnv is the environment variable holding the GitHub API token.
	TokenEnv = "GITHUB_TOKEN"

	schemaDefinition = "#Config"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the vipsbundle configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigPath returns <ConfigDir>/config.cue.
func DefaultConfigPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading and returns the
// resolved config file path ("" when only defaults and env were used).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("windows.token", TokenEnv, EnvPrefix+"_WINDOWS_TOKEN"); err != nil {
		return nil, "", fmt.Errorf("bind %s: %w", TokenEnv, err)
	}

	resolvedPath := ""

	// --config selects one file exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestions(
					"Verify the file path is correct",
					"Use 'vipsbundle config show' to see the default configuration",
				).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", invalidConfigError(opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ConfigFileName + "." + ConfigFileExt,
		} {
			if !fileExists(candidate) {
				continue
			}
			if err := loadCUEIntoViper(v, candidate); err != nil {
				return nil, "", invalidConfigError(candidate, err)
			}
			resolvedPath = candidate
			break
		}
		// No config file: defaults and env only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("homebrew.binary", d.Homebrew.Binary)
	v.SetDefault("homebrew.package", d.Homebrew.Package)
	v.SetDefault("homebrew.header_packages", d.Homebrew.HeaderPackages)
	v.SetDefault("linux.system_roots", d.Linux.SystemRoots)
	v.SetDefault("linux.always_bundle", d.Linux.AlwaysBundle)
	v.SetDefault("macos.system_roots", d.MacOS.SystemRoots)
	v.SetDefault("macos.always_bundle", d.MacOS.AlwaysBundle)
	v.SetDefault("macos.install_name_token", d.MacOS.InstallNameToken)
	v.SetDefault("macos.codesign", d.MacOS.Codesign)
	v.SetDefault("windows.owner", d.Windows.Owner)
	v.SetDefault("windows.repo", d.Windows.Repo)
	v.SetDefault("windows.api_base_url", d.Windows.APIBaseURL)
	v.SetDefault("windows.user_agent", d.Windows.UserAgent)
	v.SetDefault("windows.api_timeout", d.Windows.APITimeout)
	v.SetDefault("windows.download_timeout", d.Windows.DownloadTimeout)
	v.SetDefault("windows.token", "")
}

func invalidConfigError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestions(
			"Check that the file contains valid CUE syntax",
			"Verify the configuration values match the expected schema",
			"Run 'vipsbundle config init' to write a commented default file",
		).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// contents into Viper, preserving defaults for absent fields.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, schemaDefinition, data, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file if none exists and
// returns its path and whether it was created.
func CreateDefaultConfig() (string, bool, error) {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration.
// The GitHub token is never written.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// vipsbundle configuration file\n")
	sb.WriteString("// Environment overrides use the VIPSBUNDLE_ prefix (e.g. VIPSBUNDLE_WINDOWS_REPO).\n\n")

	sb.WriteString("homebrew: {\n")
	fmt.Fprintf(&sb, "\tbinary: %q\n", cfg.Homebrew.Binary)
	fmt.Fprintf(&sb, "\tpackage: %q\n", cfg.Homebrew.Package)
	fmt.Fprintf(&sb, "\theader_packages: %s\n", cueList(cfg.Homebrew.HeaderPackages))
	sb.WriteString("}\n")

	sb.WriteString("\nlinux: {\n")
	fmt.Fprintf(&sb, "\tsystem_roots: %s\n", cueList(cfg.Linux.SystemRoots))
	fmt.Fprintf(&sb, "\talways_bundle: %s\n", cueList(cfg.Linux.AlwaysBundle))
	sb.WriteString("}\n")

	sb.WriteString("\nmacos: {\n")
	fmt.Fprintf(&sb, "\tsystem_roots: %s\n", cueList(cfg.MacOS.SystemRoots))
	fmt.Fprintf(&sb, "\talways_bundle: %s\n", cueList(cfg.MacOS.AlwaysBundle))
	fmt.Fprintf(&sb, "\tinstall_name_token: %q\n", cfg.MacOS.InstallNameToken)
	fmt.Fprintf(&sb, "\tcodesign: %v\n", cfg.MacOS.Codesign)
	sb.WriteString("}\n")

	sb.WriteString("\nwindows: {\n")
	fmt.Fprintf(&sb, "\towner: %q\n", cfg.Windows.Owner)
	fmt.Fprintf(&sb, "\trepo: %q\n", cfg.Windows.Repo)
	fmt.Fprintf(&sb, "\tapi_base_url: %q\n", cfg.Windows.APIBaseURL)
	fmt.Fprintf(&sb, "\tuser_agent: %q\n", cfg.Windows.UserAgent)
	fmt.Fprintf(&sb, "\tapi_timeout: %q\n", cfg.Windows.APITimeout.String())
	fmt.Fprintf(&sb, "\tdownload_timeout: %q\n", cfg.Windows.DownloadTimeout.String())
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
