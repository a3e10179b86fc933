package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds the per-stage provisioning configuration loaded from YAML.
// Each stage maps tool section names (java, tomcat, disk_check, ...) to free
// form dictionaries that the tools interpret.
type Settings struct {
	PreInstall  Stage `yaml:"pre_install"`
	Install     Stage `yaml:"install"`
	PostInstall Stage `yaml:"post_install"`
}

// Stage maps tool section names to their configuration. Scalar keys that sit
// directly under a stage (default_tomcat_home and friends) are collected into
// an options section reachable via Settings.StageOptions.
type Stage map[string]Section

// stageOptionsKey holds stage-level scalars. Tool sections are always
// mappings, so the key cannot collide with one.
const stageOptionsKey = "_options"

// UnmarshalYAML splits a stage mapping into tool sections and stage-level
// scalar options.
func (st *Stage) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("stage must be a mapping, got %s", node.Tag)
	}

	out := make(Stage, len(node.Content)/2)
	options := Section{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		if value.Kind == yaml.MappingNode {
			var section Section
			if err := value.Decode(&section); err != nil {
				return err
			}
			out[key] = section
			continue
		}
		var scalar interface{}
		if err := value.Decode(&scalar); err != nil {
			return err
		}
		options[key] = scalar
	}
	if len(options) > 0 {
		out[stageOptionsKey] = options
	}
	*st = out
	return nil
}

// Section is one tool's configuration block, usually containing nested
// "linux" and "windows" sub-sections.
type Section map[string]interface{}

// LoadSettings reads a YAML settings file. Unlike the agent config, a missing
// settings file is an error: tools cannot run without their stage config.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &settings, nil
}

// MergeSettings layers override files over a base, later layers winning.
// Nested maps merge recursively; scalars and lists replace.
func MergeSettings(base *Settings, overrides ...*Settings) *Settings {
	merged := &Settings{
		PreInstall:  mergeStage(nil, base.PreInstall),
		Install:     mergeStage(nil, base.Install),
		PostInstall: mergeStage(nil, base.PostInstall),
	}
	for _, layer := range overrides {
		if layer == nil {
			continue
		}
		merged.PreInstall = mergeStage(merged.PreInstall, layer.PreInstall)
		merged.Install = mergeStage(merged.Install, layer.Install)
		merged.PostInstall = mergeStage(merged.PostInstall, layer.PostInstall)
	}
	return merged
}

func mergeStage(base, overrides Stage) Stage {
	merged := make(Stage, len(base)+len(overrides))
	for name, section := range base {
		merged[name] = section
	}
	for name, section := range overrides {
		if existing, ok := merged[name]; ok {
			merged[name] = Section(deepMerge(existing, section))
		} else {
			merged[name] = section
		}
	}
	return merged
}

func deepMerge(base, overrides map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		existing, haveExisting := merged[key]
		existingMap, existingIsMap := toStringMap(existing)
		valueMap, valueIsMap := toStringMap(value)
		if haveExisting && existingIsMap && valueIsMap {
			merged[key] = deepMerge(existingMap, valueMap)
			continue
		}
		merged[key] = value
	}
	return merged
}

func toStringMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case Section:
		return v, true
	default:
		return nil, false
	}
}

// Stage returns one tool's section for a named stage; nil when absent.
func (s *Settings) Stage(stage, tool string) Section {
	if s == nil {
		return nil
	}
	var sections Stage
	switch stage {
	case "pre_install":
		sections = s.PreInstall
	case "install":
		sections = s.Install
	case "post_install":
		sections = s.PostInstall
	default:
		return nil
	}
	return sections[tool]
}

// StageOptions returns the scalar settings that sit directly under a stage
// rather than inside a tool section; nil when the stage carries none.
func (s *Settings) StageOptions(stage string) Section {
	return s.Stage(stage, stageOptionsKey)
}

// OS returns the nested sub-section for an operating system ("linux" or
// "windows"); nil when the section carries no such block.
func (sec Section) OS(name string) Section {
	if sec == nil {
		return nil
	}
	nested, ok := toStringMap(sec[name])
	if !ok {
		return nil
	}
	return Section(nested)
}

// String fetches a string value, falling back to def when absent or empty.
func (sec Section) String(key, def string) string {
	if sec == nil {
		return def
	}
	if v, ok := sec[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int fetches an integer value, accepting YAML's int and float decodings.
func (sec Section) Int(key string, def int) int {
	if sec == nil {
		return def
	}
	switch v := sec[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Bool fetches a boolean value with a default.
func (sec Section) Bool(key string, def bool) bool {
	if sec == nil {
		return def
	}
	if v, ok := sec[key].(bool); ok {
		return v
	}
	return def
}

// Ints fetches a list of integers, tolerating scalar and string entries the
// way the YAML decoder produces them.
func (sec Section) Ints(key string) []int {
	if sec == nil {
		return nil
	}
	raw, ok := sec[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case int:
			out = append(out, v)
		case int64:
			out = append(out, int(v))
		case float64:
			out = append(out, int(v))
		}
	}
	return out
}

// Strings fetches a list of strings.
func (sec Section) Strings(key string) []string {
	if sec == nil {
		return nil
	}
	raw, ok := sec[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if v, ok := item.(string); ok {
			out = append(out, v)
		}
	}
	return out
}
