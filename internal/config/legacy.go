package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// legacyFile holds settings from earlier releases as "Key Name:: value"
// lines. It lives next to the user config file.
const legacyFile = "settings.txt"

var legacyLine = regexp.MustCompile(`^[\w\s]+::.+$`)

// legacyKeys maps dashed legacy names onto current keys. Names not listed
// are written under their dashed form.
var legacyKeys = map[string]string{
	"debug":           KeyDebug,
	"store-path":      KeyStorePath,
	"extra-names":     KeyExtraNames,
	"auth-url":        KeyAuthURL,
	"extension-id":    KeyAuthExtensionID,
	"email":           KeyAuthEmail,
	"developer-token": KeyAuthDeveloperToken,
	"dev":             KeyAuthDev,
	"server-addr":     KeyServerAddr,
}

type legacySetting struct {
	key   string
	value any
}

// legacyKey lowercases name and joins its words with dashes.
func legacyKey(name string) string {
	dashed := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	if key, ok := legacyKeys[dashed]; ok {
		return key
	}
	return dashed
}

// parseLegacySettings returns the "key:: value" settings in data and every
// other line unchanged.
func parseLegacySettings(data string) ([]legacySetting, []string) {
	var settings []legacySetting
	var rest []string
	for _, line := range strings.Split(data, "\n") {
		trimmed := strings.TrimSpace(line)
		if !legacyLine.MatchString(trimmed) {
			if trimmed != "" {
				rest = append(rest, line)
			}
			continue
		}
		name, value, _ := strings.Cut(trimmed, "::")
		key := legacyKey(name)
		value = strings.TrimSpace(value)
		var v any = value
		if key == KeyExtraNames {
			var names []string
			for _, part := range strings.Split(value, ",") {
				if part = strings.TrimSpace(part); part != "" {
					names = append(names, part)
				}
			}
			v = names
		}
		settings = append(settings, legacySetting{key: key, value: v})
	}
	return settings, rest
}

// MigrateLegacySettings moves every "key:: value" line of the legacy file
// into the YAML config at configPath, overwriting values already there.
// Migrated lines are removed from the legacy file, and the file is deleted
// once nothing is left in it. A missing legacy file is not an error.
// It returns the number of settings moved.
func MigrateLegacySettings(legacyPath, configPath string) (int, error) {
	//nolint:gosec // G304: the legacy file sits next to the user config
	data, err := os.ReadFile(legacyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", legacyPath, err)
	}
	settings, rest := parseLegacySettings(string(data))
	if len(settings) == 0 {
		return 0, nil
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := mergeConfigFile(v, configPath); err != nil {
		return 0, err
	}
	for _, s := range settings {
		v.Set(s.key, s.value)
	}
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return 0, fmt.Errorf("create config directory: %w", err)
	}
	if err := v.WriteConfigAs(configPath); err != nil {
		return 0, fmt.Errorf("write %s: %w", configPath, err)
	}

	if len(rest) == 0 {
		if err := os.Remove(legacyPath); err != nil {
			return len(settings), fmt.Errorf("remove %s: %w", legacyPath, err)
		}
		return len(settings), nil
	}
	if err := os.WriteFile(legacyPath, []byte(strings.Join(rest, "\n")+"\n"), 0600); err != nil {
		return len(settings), fmt.Errorf("rewrite %s: %w", legacyPath, err)
	}
	return len(settings), nil
}
