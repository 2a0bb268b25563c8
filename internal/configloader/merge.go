package configloader

import (
	"fmt"
	"maps"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/zkit/pkg/config"
)

// settings is a nested configuration map keyed by lowercase YAML names.
type settings = map[string]any

// defaultSettings renders config.NewConfig as a settings map.
func defaultSettings() (settings, error) {
	data, err := config.NewConfig().ToYAML()
	if err != nil {
		return nil, err
	}
	out := settings{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}
	return out, nil
}

// readLayer reads one config file into a settings map.
func readLayer(path string) (settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return v.AllSettings(), nil
}

// merge layers override onto base and returns the result. Nested maps merge
// key by key, everything else is replaced. A layer that names a split type
// replaces the split attributes instead of merging into them, so a task split
// does not inherit a header level.
//
// Unlike a struct merge, a key present in override always wins, so a
// project file can switch a default-on toggle off.
func merge(base, override settings) settings {
	out := maps.Clone(base)
	if out == nil {
		out = settings{}
	}

	if split, ok := override["split"].(settings); ok {
		if _, typed := split["type"]; typed {
			if baseSplit, ok := out["split"].(settings); ok {
				baseSplit = maps.Clone(baseSplit)
				delete(baseSplit, "attributes")
				out["split"] = baseSplit
			}
		}
	}

	for key, value := range override {
		child, isMap := value.(settings)
		baseChild, baseIsMap := out[key].(settings)
		if isMap && baseIsMap {
			out[key] = merge(baseChild, child)
			continue
		}
		out[key] = value
	}
	return out
}
