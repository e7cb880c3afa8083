// Package branchconfig resolves the deployment profile for a branch from the
// branch_config section of appspec.yml.
// This is part of the Functional Core - Parse and Resolve do no I/O.
package branchconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/artpar/promoter/internal/core/domain"
)

// DefaultPath is where the repository keeps its deployment configuration.
const DefaultPath = "./appspec.yml"

const sectionKey = "branch_config"

// =============================================================================
// Document
// =============================================================================

// Entry is one named pattern of branch_config, kept in document order.
type Entry struct {
	Pattern string
	Empty   bool // explicit null value: do not deploy
	Profile domain.DeploymentProfile

	matcher *regexp.Regexp
}

// Matches reports whether the entry pattern matches the whole lookup key,
// ignoring case.
func (e Entry) Matches(lookupKey string) bool {
	return e.matcher.MatchString(lookupKey)
}

// Document is the parsed branch_config section.
type Document struct {
	Entries []Entry
}

// profileNode mirrors a non-empty branch_config value.
type profileNode struct {
	DeploymentGroupName   string         `yaml:"deploymentGroupName"`
	DeploymentGroupConfig map[string]any `yaml:"deploymentGroupConfig"`
	DeploymentConfig      map[string]any `yaml:"deploymentConfig"`
}

// =============================================================================
// Loading
// =============================================================================

// Load reads and parses the config file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		cfgErr := &ConfigError{Path: path, Message: "cannot read file", Err: ErrConfigUnreadable}
		if errors.Is(err, fs.ErrNotExist) {
			cfgErr.Message = "file not found"
			cfgErr.Hint = "did you run actions/checkout?"
		} else {
			cfgErr.Message = err.Error()
		}
		return nil, cfgErr
	}

	doc, err := Parse(data)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse parses appspec.yml content. Entry order follows the document, so the
// first pattern written wins when several match.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, NewConfigError("", fmt.Sprintf("invalid YAML: %v", err), ErrConfigUnreadable)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, NewConfigError("", "document is empty", ErrConfigUnreadable)
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, NewConfigError("", "document must be a mapping", ErrConfigUnreadable)
	}

	section := lookupKey(top, sectionKey)
	if section == nil || isNull(section) {
		return &Document{}, nil
	}
	if section.Kind != yaml.MappingNode {
		return nil, NewConfigError(sectionKey, "must be a mapping of branch patterns", ErrConfigUnreadable)
	}

	doc := &Document{Entries: make([]Entry, 0, len(section.Content)/2)}
	for i := 0; i+1 < len(section.Content); i += 2 {
		entry, err := parseEntry(section.Content[i], section.Content[i+1])
		if err != nil {
			return nil, err
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return doc, nil
}

func parseEntry(keyNode, valueNode *yaml.Node) (Entry, error) {
	pattern := keyNode.Value
	field := sectionKey + "." + pattern

	matcher, err := compilePattern(pattern)
	if err != nil {
		return Entry{}, NewConfigError(field, fmt.Sprintf("invalid pattern: %v", err), ErrConfigUnreadable)
	}

	entry := Entry{Pattern: pattern, matcher: matcher}
	if isNull(valueNode) {
		entry.Empty = true
		return entry, nil
	}
	if valueNode.Kind == yaml.AliasNode && valueNode.Alias != nil {
		valueNode = valueNode.Alias
	}
	if valueNode.Kind != yaml.MappingNode {
		return Entry{}, NewConfigError(field, "must be a mapping or empty", ErrConfigUnreadable)
	}

	var p profileNode
	if err := valueNode.Decode(&p); err != nil {
		return Entry{}, NewConfigError(field, err.Error(), ErrConfigUnreadable)
	}
	entry.Profile = domain.DeploymentProfile{
		Key:               pattern,
		GroupNameTemplate: p.DeploymentGroupName,
		GroupConfig:       p.DeploymentGroupConfig,
		DeploymentConfig:  p.DeploymentConfig,
	}
	return entry, nil
}

// compilePattern anchors an entry name at both ends, case-insensitively.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)^(?:" + pattern + ")$")
}

func lookupKey(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// =============================================================================
// Resolution
// =============================================================================

// Resolve returns the profile of the first entry whose pattern matches
// lookupKey. It returns ErrNotFound when nothing matches and ErrEmptyProfile
// when the matching entry is explicitly empty.
func (d *Document) Resolve(lookupKey string) (*domain.DeploymentProfile, error) {
	if lookupKey == "" {
		return nil, NewConfigError("", "cannot resolve an empty lookup key", ErrEmptyLookupKey)
	}

	for _, entry := range d.Entries {
		if !entry.Matches(lookupKey) {
			continue
		}
		if entry.Empty {
			return nil, NewConfigError(sectionKey+"."+entry.Pattern,
				fmt.Sprintf("empty entry for '%s'", lookupKey), ErrEmptyProfile)
		}
		profile := entry.Profile
		return &profile, nil
	}

	return nil, NewConfigError(sectionKey, fmt.Sprintf("no entry matches '%s'", lookupKey), ErrNotFound)
}
