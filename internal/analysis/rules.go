package analysis

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules reads custom category rules from a YAML file of the form
//
//	categories:
//	  groceries: [aldi, trader joe]
//	  pets: [petco, chewy]
//
// An empty path or missing file yields no rules.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open category rules: %w", err)
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes custom category rules, keeping the file's category order.
func ParseRules(r io.Reader) ([]Rule, error) {
	var doc struct {
		Categories yaml.Node `yaml:"categories"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode category rules: %w", err)
	}

	node := doc.Categories
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: categories must be a mapping of category to keywords", node.Line)
	}

	rules := make([]Rule, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var keywords []string
		if err := value.Decode(&keywords); err != nil {
			return nil, fmt.Errorf("line %d: category %q: keywords must be a list of strings", value.Line, key.Value)
		}
		rules = append(rules, Rule{Category: key.Value, Keywords: keywords})
	}
	return rules, nil
}
