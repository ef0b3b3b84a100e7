package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitializeLoadsDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if GetBool(KeyDebug) {
		t.Fatalf("expected default %s to be false", KeyDebug)
	}
	if got := GetString(KeyStorePath); got != "" {
		t.Fatalf("expected default %s to be empty, got %q", KeyStorePath, got)
	}
	if got := GetString(KeyAuthURL); got != DefaultAuthURL {
		t.Fatalf("expected default %s, got %q", KeyAuthURL, got)
	}
	if got := GetDuration(KeyAuthTimeout); got != 30*time.Second {
		t.Fatalf("expected default auth timeout 30s, got %v", got)
	}
	if got := GetString(KeyServerAddr); got != DefaultServerAddr {
		t.Fatalf("expected default server addr, got %q", got)
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "repo")
	projectCfg := filepath.Join(projectDir, ".formdeck", "config.yaml")
	writeFile(t, projectCfg, `
store:
  path: /project/graph.db
search:
  extra-names: [Inbox, Someday]
`)

	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, `
store:
  path: /user/graph.db
auth:
  email: dev@example.com
`)

	// Discovery walks upward from a nested directory.
	nested := filepath.Join(projectDir, "a", "b")
	mustMkdir(t, nested)

	if err := Initialize(WithWorkingDir(nested), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyStorePath); got != "/project/graph.db" {
		t.Fatalf("expected project store path, got %q", got)
	}
	if got := GetString(KeyAuthEmail); got != "dev@example.com" {
		t.Fatalf("expected user config email to survive merge, got %q", got)
	}
	names := GetStringSlice(KeyExtraNames)
	if len(names) != 2 || names[0] != "Inbox" || names[1] != "Someday" {
		t.Fatalf("unexpected extra names %v", names)
	}
}

func TestEnvironmentDotEnvAndOverridesPrecedence(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectCfg := filepath.Join(tmp, ".formdeck", "config.yaml")
	writeFile(t, projectCfg, `
auth:
  extension-id: from-project
  dev: false
`)
	writeFile(t, filepath.Join(tmp, ".env"), "FD_AUTH_DEVELOPER_TOKEN=dotenv-token\nFD_AUTH_EXTENSION_ID=from-dotenv\n")

	// Real environment wins over .env.
	t.Setenv("FD_AUTH_EXTENSION_ID", "from-env")
	t.Setenv("FD_AUTH_DEV", "true")
	t.Cleanup(func() { _ = os.Unsetenv("FD_AUTH_DEVELOPER_TOKEN") })

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	auth := AuthSettings()
	if auth.ExtensionID != "from-env" {
		t.Fatalf("expected environment to win, got %q", auth.ExtensionID)
	}
	if auth.DeveloperToken != "dotenv-token" {
		t.Fatalf("expected .env value, got %q", auth.DeveloperToken)
	}
	if !auth.Dev {
		t.Fatalf("expected FD_AUTH_DEV to override project config")
	}

	if err := ApplyOverrides(map[string]any{KeyAuthDev: false, KeyStorePath: "/flag/graph.db"}); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if GetBool(KeyAuthDev) {
		t.Fatalf("expected CLI override to set %s=false", KeyAuthDev)
	}
	if got := GetString(KeyStorePath); got != "/flag/graph.db" {
		t.Fatalf("expected override store path, got %q", got)
	}
}

func TestExtraNamesFromCommaSeparatedEnv(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	t.Setenv("FD_SEARCH_EXTRA_NAMES", "Alpha, Beta,,Gamma")
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")), WithoutDotEnv()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	got := GetStringSlice(KeyExtraNames)
	want := []string{"Alpha", "Beta", "Gamma"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestProjectConfigDirectoryIsRejected(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	mustMkdir(t, filepath.Join(tmp, ".formdeck", "config.yaml"))

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml"))); err == nil {
		t.Fatal("expected error when project config path is a directory")
	}
}

func TestLegacySettingsMigrateIntoUserConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, `
store:
  path: /user/graph.db
auth:
  email: dev@example.com
`)
	legacy := filepath.Join(tmp, legacyFile)
	writeFile(t, legacy, `Store Path:: /legacy/graph.db
Extra Names:: Weekly Review, Inbox
Server Addr:: 127.0.0.1:9999
Theme  Color:: blue
a note without a value
`)

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg), WithoutDotEnv()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyStorePath); got != "/legacy/graph.db" {
		t.Fatalf("expected legacy store path to win, got %q", got)
	}
	if got := GetString(KeyServerAddr); got != "127.0.0.1:9999" {
		t.Fatalf("expected legacy server addr, got %q", got)
	}
	if got := GetString(KeyAuthEmail); got != "dev@example.com" {
		t.Fatalf("expected existing email to survive, got %q", got)
	}
	if got := GetString("theme-color"); got != "blue" {
		t.Fatalf("expected unknown key under its dashed name, got %q", got)
	}
	names := GetStringSlice(KeyExtraNames)
	if len(names) != 2 || names[0] != "Weekly Review" || names[1] != "Inbox" {
		t.Fatalf("unexpected extra names %v", names)
	}

	data, err := os.ReadFile(legacy)
	if err != nil {
		t.Fatalf("read legacy file: %v", err)
	}
	if string(data) != "a note without a value\n" {
		t.Fatalf("expected only the unmigrated line to remain, got %q", data)
	}

	// A second start finds nothing left to move.
	n, err := MigrateLegacySettings(legacy, userCfg)
	if err != nil || n != 0 {
		t.Fatalf("expected no further migration, got %d, %v", n, err)
	}
}

func TestLegacySettingsFileRemovedWhenEmptied(t *testing.T) {
	tmp := t.TempDir()
	legacy := filepath.Join(tmp, legacyFile)
	userCfg := filepath.Join(tmp, "nested", "config.yaml")
	writeFile(t, legacy, "Debug:: true\nDeveloper Token:: abc::def\n")

	n, err := MigrateLegacySettings(legacy, userCfg)
	if err != nil {
		t.Fatalf("MigrateLegacySettings returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 settings moved, got %d", n)
	}
	if _, err := os.Stat(legacy); !os.IsNotExist(err) {
		t.Fatalf("expected legacy file removed, got %v", err)
	}

	reset()
	t.Cleanup(reset)
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg), WithoutDotEnv()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if !GetBool(KeyDebug) {
		t.Fatalf("expected migrated %s to be true", KeyDebug)
	}
	if got := GetString(KeyAuthDeveloperToken); got != "abc::def" {
		t.Fatalf("expected value after the first separator kept whole, got %q", got)
	}
}

func TestLegacyKey(t *testing.T) {
	tests := map[string]string{
		"Store Path":     KeyStorePath,
		"  EMAIL ":       KeyAuthEmail,
		"Extension   ID": KeyAuthExtensionID,
		"Default Page":   "default-page",
		"debug":          KeyDebug,
	}
	for in, want := range tests {
		if got := legacyKey(in); got != want {
			t.Errorf("legacyKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
