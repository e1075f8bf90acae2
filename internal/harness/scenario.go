package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a schema, values that must
// encode and sort consistently, and values the schema must reject.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the schema source: CUE or JSON as accepted by compiler.CompileString.
	Schema string `yaml:"schema"`

	// Values are JSON texts of values that match the schema.
	Values []string `yaml:"values"`

	// Rejects are JSON texts of values that do not match the schema and
	// must fail to encode.
	Rejects []string `yaml:"rejects,omitempty"`

	// Order lists indices into Values in expected ascending order.
	// If empty, order is only checked for consistency with value.Compare.
	Order []int `yaml:"order,omitempty"`

	// Checks selects the checks to run. Empty means all of them.
	Checks []string `yaml:"checks,omitempty"`
}

// Check names.
const (
	CheckRoundTrip = "round_trip"
	CheckRejects   = "rejects"
	CheckOrder     = "order"
	CheckStore     = "store"
	CheckSpill     = "spill"
)

// AllChecks lists every check in execution order.
var AllChecks = []string{CheckRoundTrip, CheckRejects, CheckOrder, CheckStore, CheckSpill}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "value:" vs "values:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the scenario files under path: path itself if it is
// a file, or every .yaml/.yml file below it. A non-empty filter is a glob
// matched against file names without extension.
func FindScenarios(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(filepath.Base(p), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if strings.TrimSpace(s.Schema) == "" {
		return fmt.Errorf("schema is required")
	}

	if len(s.Values) == 0 {
		return fmt.Errorf("values list is required and must be non-empty")
	}

	if len(s.Order) > 0 {
		if len(s.Order) != len(s.Values) {
			return fmt.Errorf("order has %d entries, values has %d", len(s.Order), len(s.Values))
		}
		seen := make([]bool, len(s.Values))
		for i, idx := range s.Order {
			if idx < 0 || idx >= len(s.Values) {
				return fmt.Errorf("order[%d]: index %d out of range", i, idx)
			}
			if seen[idx] {
				return fmt.Errorf("order[%d]: index %d repeated", i, idx)
			}
			seen[idx] = true
		}
	}

	for i, c := range s.Checks {
		if !isCheck(c) {
			return fmt.Errorf("checks[%d]: unknown check %q (valid: %s)", i, c, strings.Join(AllChecks, ", "))
		}
	}

	return nil
}

func isCheck(name string) bool {
	for _, c := range AllChecks {
		if c == name {
			return true
		}
	}
	return false
}

// enabled reports whether the scenario runs check.
func (s *Scenario) enabled(check string) bool {
	if len(s.Checks) == 0 {
		return true
	}
	for _, c := range s.Checks {
		if c == check {
			return true
		}
	}
	return false
}
