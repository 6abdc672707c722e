// Package catalog loads the screen catalog: the declarative map of menu
// options, CL-style commands and per-screen metadata that the navigation
// layer is driven by.
//
// A default catalog is embedded in the binary. Operators can replace it
// with their own YAML file to rename options or add command aliases
// without rebuilding.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Command resolution errors.
var (
	ErrUnknownCommand   = errors.New("command not found")
	ErrAmbiguousCommand = errors.New("command is ambiguous")
)

// Option is one numbered entry on a menu screen.
type Option struct {
	Number int    `yaml:"number"`
	Text   string `yaml:"text"`
	Screen string `yaml:"screen"`
}

// Screen is the declarative metadata for one screen.
type Screen struct {
	Title  string `yaml:"title"`
	Parent string `yaml:"parent"`
	Keys   string `yaml:"keys"`
}

// Catalog is the loaded screen catalog.
type Catalog struct {
	SystemName string            `yaml:"system"`
	Commands   map[string]string `yaml:"commands"`
	Menu       []Option          `yaml:"menu"`
	Screens    map[string]Screen `yaml:"screens"`
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	return parse(defaultCatalog)
}

// Load reads a catalog from path, falling back to the embedded default
// when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if c.SystemName == "" {
		c.SystemName = "DK400"
	}
	sort.Slice(c.Menu, func(i, j int) bool { return c.Menu[i].Number < c.Menu[j].Number })
	for name, cmd := range c.Commands {
		upper := strings.ToUpper(name)
		if upper != name {
			delete(c.Commands, name)
			c.Commands[upper] = cmd
		}
	}
	return &c, nil
}

// OptionScreen resolves a numbered menu selection.
func (c *Catalog) OptionScreen(number int) (string, bool) {
	for _, o := range c.Menu {
		if o.Number == number {
			return o.Screen, true
		}
	}
	return "", false
}

// MatchCommand resolves a typed command to a screen. The first word is
// matched case-insensitively against the command table; a unique prefix
// is accepted the way OS/400 accepts abbreviated commands.
func (c *Catalog) MatchCommand(input string) (screen string, err error) {
	word := strings.ToUpper(strings.TrimSpace(input))
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word = word[:i]
	}
	if word == "" {
		return "", ErrUnknownCommand
	}

	if target, ok := c.Commands[word]; ok {
		return target, nil
	}

	var matches []string
	for name := range c.Commands {
		if strings.HasPrefix(name, word) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, word)
	case 1:
		return c.Commands[matches[0]], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: %s matches %s", ErrAmbiguousCommand, word, strings.Join(matches, ", "))
	}
}

// ScreenMeta returns the metadata for a screen id, zero value when absent.
func (c *Catalog) ScreenMeta(id string) Screen {
	return c.Screens[id]
}
