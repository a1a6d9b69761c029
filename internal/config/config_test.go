package config

import (
	"errors"
	"os"
	"testing"

	"pgregory.net/rapid"
)

// Feature: scanstamp, Property 3: config merge precedence
func TestFileConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.-]{1,20}`)

	// Generator for a FileConfig with each field either unset or set.
	configGen := rapid.Custom(func(t *rapid.T) *FileConfig {
		fc := &FileConfig{}
		if rapid.Bool().Draw(t, "hasLogPath") {
			fc.LogPath = nonEmptyString.Draw(t, "logPath")
		}
		if rapid.Bool().Draw(t, "hasExcerptMode") {
			fc.ExcerptMode = nonEmptyString.Draw(t, "excerptMode")
		}
		if rapid.Bool().Draw(t, "hasModel") {
			fc.Model = nonEmptyString.Draw(t, "model")
		}
		if rapid.Bool().Draw(t, "hasChars") {
			fc.Chars = rapid.IntRange(1, 9000).Draw(t, "chars")
		}
		return fc
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkStringField(t, "LogPath", global.LogPath, project.LogPath, defaults.LogPath, merged.LogPath)
		checkStringField(t, "ExcerptMode", global.ExcerptMode, project.ExcerptMode, defaults.ExcerptMode, merged.ExcerptMode)
		checkStringField(t, "Model", global.Model, project.Model, defaults.Model, merged.Model)

		switch {
		case project.Chars > 0:
			if merged.Chars != project.Chars {
				t.Fatalf("Chars: both set, expected project value %d, got %d", project.Chars, merged.Chars)
			}
		case global.Chars > 0:
			if merged.Chars != global.Chars {
				t.Fatalf("Chars: only global set, expected global value %d, got %d", global.Chars, merged.Chars)
			}
		default:
			if merged.Chars != defaults.Chars {
				t.Fatalf("Chars: neither set, expected default %d, got %d", defaults.Chars, merged.Chars)
			}
		}
	})
}

// checkStringField asserts the merge precedence rule for a single string
// field: a non-empty project value wins, then a non-empty global value,
// then the default.
func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: both set, expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set, expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.LogPath != ".scanstamp-log.csv" {
		t.Errorf("LogPath: want %q, got %q", ".scanstamp-log.csv", d.LogPath)
	}
	if d.ExcerptMode != string(ExcerptFirstParas) {
		t.Errorf("ExcerptMode: want %q, got %q", ExcerptFirstParas, d.ExcerptMode)
	}
	if d.Chars != 1200 {
		t.Errorf("Chars: want 1200, got %d", d.Chars)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	fc, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	defaults := Defaults()
	if fc.LogPath != defaults.LogPath {
		t.Errorf("LogPath: want %q, got %q", defaults.LogPath, fc.LogPath)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	tmp := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	fc, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc != nil {
		t.Errorf("expected nil config, got %+v", fc)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfgDir := tmp + "/.config/scanstamp"
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgDir+"/config.json", []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid JSON, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestResolveMode(t *testing.T) {
	cases := []struct {
		dateOnly, redate, keepTitle bool
		want                        Mode
	}{
		{false, false, false, ModeSmartTitle},
		{true, false, false, ModeDateOnly},
		{false, true, false, ModeRedate},
		{false, false, true, ModeKeepTitle},
	}
	for _, c := range cases {
		got, err := ResolveMode(c.dateOnly, c.redate, c.keepTitle)
		if err != nil {
			t.Fatalf("ResolveMode(%v, %v, %v): unexpected error %v", c.dateOnly, c.redate, c.keepTitle, err)
		}
		if got != c.want {
			t.Errorf("ResolveMode(%v, %v, %v): want %q, got %q", c.dateOnly, c.redate, c.keepTitle, c.want, got)
		}
	}
}

func TestResolveModeRejectsMultipleFlags(t *testing.T) {
	_, err := ResolveMode(true, true, false)
	if err == nil {
		t.Fatal("expected an error for two mode flags, got nil")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
}

func TestPolicyFromFlags(t *testing.T) {
	cases := []struct {
		noLLM, localOnly bool
		want             LLMPolicy
	}{
		{false, false, LLMEnabled},
		{false, true, LLMLocalOnly},
		{true, false, LLMDisabled},
		{true, true, LLMDisabled},
	}
	for _, c := range cases {
		if got := PolicyFromFlags(c.noLLM, c.localOnly); got != c.want {
			t.Errorf("PolicyFromFlags(%v, %v): want %q, got %q", c.noLLM, c.localOnly, c.want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := RunConfig{
		Mode:        ModeSmartTitle,
		Chars:       1200,
		ExcerptMode: ExcerptFirstParas,
		LLM:         LLMEnabled,
		Collision:   CollisionSkip,
		LogPath:     ".scanstamp-log.csv",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{"keep-date outside smart-title", func(c *RunConfig) { c.Mode = ModeRedate; c.KeepDate = true }},
		{"malformed date", func(c *RunConfig) { c.Date = "2024-01-01" }},
		{"impossible date", func(c *RunConfig) { c.Date = "20241301" }},
		{"zero chars", func(c *RunConfig) { c.Chars = 0 }},
		{"unknown excerpt mode", func(c *RunConfig) { c.ExcerptMode = "everything" }},
		{"unknown llm policy", func(c *RunConfig) { c.LLM = "maybe" }},
		{"unknown collision policy", func(c *RunConfig) { c.Collision = "rename" }},
		{"empty log path", func(c *RunConfig) { c.LogPath = "" }},
	}
	for _, c := range cases {
		cfg := valid
		c.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected an error, got nil", c.name)
			continue
		}
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: expected *ConfigError, got %T: %v", c.name, err, err)
		}
	}
}

func TestKeepDateAllowedInSmartTitle(t *testing.T) {
	cfg := RunConfig{
		Mode:        ModeSmartTitle,
		KeepDate:    true,
		Chars:       800,
		ExcerptMode: ExcerptFirstLine,
		LLM:         LLMDisabled,
		Collision:   CollisionSuffix,
		LogPath:     "log.csv",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("keep-date with smart-title rejected: %v", err)
	}
}
