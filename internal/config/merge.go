package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyOutput    = "output"
	keyLogging   = "logging"
	keyStorage   = "storage"
	keyCatalogue = "catalogue"
	keyAI        = "ai"
	keyTracking  = "tracking"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyOutput:    true,
	keyLogging:   true,
	keyStorage:   true,
	keyCatalogue: true,
	keyAI:        true,
	keyTracking:  true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Fields set in an overlay section replace the target's
// fields; sections and fields absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}
		if err = decodeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// decodeSection decodes node over a copy of the target's section so a
// malformed section leaves the target untouched.
func decodeSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyOutput:
		v := target.Output
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Output = v
	case keyLogging:
		v := target.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyStorage:
		v := target.Storage
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Storage = v
	case keyCatalogue:
		v := target.Catalogue
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Catalogue = v
	case keyAI:
		v := target.AI
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.AI = v
	case keyTracking:
		v := target.Tracking
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Tracking = v
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
