package cliutil

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Preferences holds the CLI's own non-secret on-disk defaults. It never
// holds api_key — credentials live only in the dotenv files managed by
// internal/config.
type Preferences struct {
	OutputFormat      string `mapstructure:"output_format" yaml:"output_format"`
	DefaultModelAlias string `mapstructure:"default_model_alias" yaml:"default_model_alias"`
}

const defaultOutputFormat = "text"

// PreferencesPath returns ~/.config/venice/config.yml, resolved via
// go-homedir the same way the transport core resolves the global dotenv
// path.
func PreferencesPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "venice", "config.yml"), nil
}

// LoadPreferences reads the preference file through viper, returning
// defaults when the file does not exist.
func LoadPreferences() (Preferences, string, error) {
	path, err := PreferencesPath()
	if err != nil {
		return Preferences{}, "", err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("output_format", defaultOutputFormat)

	prefs := Preferences{OutputFormat: defaultOutputFormat}
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return prefs, path, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return prefs, path, nil
		}
		return prefs, path, err
	}
	if err := v.Unmarshal(&prefs); err != nil {
		return Preferences{}, path, err
	}
	return prefs, path, nil
}

// WritePreferences serializes prefs as YAML to PreferencesPath, creating
// parent directories as needed.
func WritePreferences(prefs Preferences) (string, error) {
	path, err := PreferencesPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("output_format", prefs.OutputFormat)
	v.Set("default_model_alias", prefs.DefaultModelAlias)
	if err := v.WriteConfigAs(path); err != nil {
		return "", err
	}
	return path, nil
}
