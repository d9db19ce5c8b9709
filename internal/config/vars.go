package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/value"
	"gopkg.in/yaml.v3"
)

// envPattern matches ${NAME} and ${NAME:-default}.
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// LoadVarsFile reads a YAML mapping of global overrides. ${NAME} references
// are replaced through getenv before parsing.
func LoadVarsFile(path string, getenv func(string) string) (map[string]value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file: %w", err)
	}
	data = interpolateEnv(data, getenv)

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse vars file %s: %w", path, err)
	}

	vars := make(map[string]value.Value, len(raw))
	for name, r := range raw {
		v, err := value.FromJSON(r)
		if err != nil {
			return nil, fmt.Errorf("vars file %s, variable %s: %w", path, name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		v := getenv(string(parts[1]))
		if v == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			v = string(parts[2])
		}
		return []byte(v)
	})
}

// ParseAssignment parses a command line `name=<json>` override.
func ParseAssignment(arg string) (string, value.Value, error) {
	name, raw, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid variable %q, expected name=<json>", arg)
	}
	v, err := value.ParseJSON([]byte(raw))
	if err != nil {
		return "", nil, fmt.Errorf("variable %s: %w", name, err)
	}
	return name, v, nil
}

// MergeVars combines override layers; later layers win.
func MergeVars(layers ...map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value)
	for _, layer := range layers {
		for name, v := range layer {
			out[name] = v
		}
	}
	return out
}
