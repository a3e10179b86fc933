package config

import (
	"testing"
)

const settingsYAML = `
pre_install:
  java_check:
    min_major: 17
  disk_check:
    linux:
      path: /opt
      min_free_mb: 2048
install:
  tomcat:
    linux:
      download_url: https://example.org/tomcat.tar.gz
      archive_path: /tmp/tomcat.tar.gz
      install_root: /opt/tomcat
      strip_components: 1
      cleanup_archive: true
post_install:
  default_tomcat_home: /opt/tomcat-default
  tomcat_start:
    port: 8080
    ready_timeout: 120
  tomcat_validation:
    wait_seconds: 30
    host_template: "{host}"
`

func TestLoadSettings(t *testing.T) {
	path := writeFile(t, "settings.yaml", settingsYAML)

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	section := settings.Stage("install", "tomcat")
	if section == nil {
		t.Fatal("expected install.tomcat section")
	}
	linux := section.OS("linux")
	if linux.String("download_url", "") != "https://example.org/tomcat.tar.gz" {
		t.Fatalf("unexpected download_url: %v", linux)
	}
	if linux.Int("strip_components", 0) != 1 {
		t.Fatalf("unexpected strip_components: %v", linux)
	}
	if !linux.Bool("cleanup_archive", false) {
		t.Fatal("expected cleanup_archive true")
	}
}

func TestStageLevelScalars(t *testing.T) {
	path := writeFile(t, "settings.yaml", settingsYAML)

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("stage-level scalar keys must parse: %v", err)
	}

	options := settings.StageOptions("post_install")
	if options.String("default_tomcat_home", "") != "/opt/tomcat-default" {
		t.Fatalf("unexpected stage options: %v", options)
	}
	// Tool sections beside the scalar still load.
	if settings.Stage("post_install", "tomcat_start").Int("port", 0) != 8080 {
		t.Fatal("tool sections lost next to stage-level scalars")
	}
	if settings.StageOptions("pre_install") != nil {
		t.Fatal("expected no options for a stage without scalars")
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	if _, err := LoadSettings(t.TempDir() + "/missing.yaml"); err == nil {
		t.Fatal("expected error for missing settings file")
	}
}

func TestStageUnknownNamesReturnNil(t *testing.T) {
	path := writeFile(t, "settings.yaml", settingsYAML)
	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if settings.Stage("no_such_stage", "tomcat") != nil {
		t.Fatal("expected nil for unknown stage")
	}
	if settings.Stage("install", "no_such_tool") != nil {
		t.Fatal("expected nil for unknown tool")
	}
	var nilSettings *Settings
	if nilSettings.Stage("install", "tomcat") != nil {
		t.Fatal("expected nil settings to yield nil section")
	}
}

func TestSectionAccessors(t *testing.T) {
	section := Section{
		"name":    "tomcat",
		"count":   3,
		"ratio":   2.0,
		"enabled": true,
		"ports":   []interface{}{8080, 8005.0, "skipped"},
		"names":   []interface{}{"a", "b", 7},
	}

	if section.String("name", "x") != "tomcat" {
		t.Fatal("String lookup failed")
	}
	if section.String("missing", "fallback") != "fallback" {
		t.Fatal("String default failed")
	}
	if section.Int("count", 0) != 3 || section.Int("ratio", 0) != 2 {
		t.Fatal("Int lookup failed")
	}
	if !section.Bool("enabled", false) {
		t.Fatal("Bool lookup failed")
	}
	ports := section.Ints("ports")
	if len(ports) != 2 || ports[0] != 8080 || ports[1] != 8005 {
		t.Fatalf("unexpected ports: %v", ports)
	}
	names := section.Strings("names")
	if len(names) != 2 || names[0] != "a" {
		t.Fatalf("unexpected names: %v", names)
	}

	var nilSection Section
	if nilSection.String("k", "d") != "d" || nilSection.Int("k", 9) != 9 {
		t.Fatal("nil section defaults failed")
	}
	if nilSection.OS("linux") != nil {
		t.Fatal("expected nil OS block on nil section")
	}
}

func TestMergeSettings(t *testing.T) {
	base := &Settings{
		Install: map[string]Section{
			"tomcat": {
				"linux": map[string]interface{}{
					"download_url": "https://example.org/base.tar.gz",
					"install_root": "/opt/tomcat",
				},
			},
		},
	}
	override := &Settings{
		Install: map[string]Section{
			"tomcat": {
				"linux": map[string]interface{}{
					"download_url": "https://example.org/override.tar.gz",
				},
			},
			"tomcat_uninstall": {
				"cleanup_logs": true,
			},
		},
	}

	merged := MergeSettings(base, override)

	linux := merged.Stage("install", "tomcat").OS("linux")
	if linux.String("download_url", "") != "https://example.org/override.tar.gz" {
		t.Fatalf("override did not win: %v", linux)
	}
	if linux.String("install_root", "") != "/opt/tomcat" {
		t.Fatalf("base value lost in merge: %v", linux)
	}
	if merged.Stage("install", "tomcat_uninstall") == nil {
		t.Fatal("expected new section from override layer")
	}

	// The base must stay untouched.
	if base.Install["tomcat"].OS("linux").String("download_url", "") != "https://example.org/base.tar.gz" {
		t.Fatal("merge mutated the base settings")
	}
}
