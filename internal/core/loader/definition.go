package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/behave/internal/core/blackboard"
)

// Node types understood by the loader.
const (
	TypeSequence  = "sequence"
	TypeSelector  = "selector"
	TypeParallel  = "parallel"
	TypeInverter  = "inverter"
	TypeAction    = "action"
	TypeCondition = "condition"
	TypeSplice    = "splice"
)

// Definition describes a tree in JSON or YAML. Leaves name their logic
// through a Registry; subtrees are built once and spliced by reference.
type Definition struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Blackboard  map[string]any     `json:"blackboard,omitempty" yaml:"blackboard,omitempty"`
	Subtrees    map[string]NodeDef `json:"subtrees,omitempty" yaml:"subtrees,omitempty"`
	Root        *NodeDef           `json:"root" yaml:"root"`
}

type NodeDef struct {
	Type           string         `json:"type" yaml:"type"`
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	Use            string         `json:"use,omitempty" yaml:"use,omitempty"`
	Params         map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Stateless      bool           `json:"stateless,omitempty" yaml:"stateless,omitempty"`
	RequireFail    int            `json:"require_fail,omitempty" yaml:"require_fail,omitempty"`
	RequireSucceed int            `json:"require_succeed,omitempty" yaml:"require_succeed,omitempty"`
	Ref            string         `json:"ref,omitempty" yaml:"ref,omitempty"`
	Children       []NodeDef      `json:"children,omitempty" yaml:"children,omitempty"`
}

// LoadJSON loads a definition from a JSON reader.
func LoadJSON(r io.Reader) (*Definition, error) {
	var d Definition
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode json definition: %w", err)
	}
	return &d, nil
}

// LoadYAML loads a definition from a YAML reader.
func LoadYAML(r io.Reader) (*Definition, error) {
	var d Definition
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode yaml definition: %w", err)
	}
	return &d, nil
}

// Load picks the decoder from the file extension: .json, otherwise YAML.
func Load(path string, r io.Reader) (*Definition, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(r)
	}
	return LoadYAML(r)
}

// Validate checks what can be checked without a registry: node types, leaf
// shape, splice references and subtree cycles. Tree structure is checked by
// the builder when the definition is built.
func (d *Definition) Validate() error {
	if d.Root == nil {
		return ErrMissingRoot
	}

	var errs []error
	errs = append(errs, d.validateNode("root", *d.Root)...)
	for _, name := range slices.Sorted(maps.Keys(d.Subtrees)) {
		errs = append(errs, d.validateNode("subtrees."+name, d.Subtrees[name])...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, name := range slices.Sorted(maps.Keys(d.Subtrees)) {
		if err := d.checkCycle(name, nil); err != nil {
			return err
		}
	}
	return nil
}

func (d *Definition) validateNode(path string, n NodeDef) []error {
	var errs []error
	kind := normalizeType(n.Type)
	switch kind {
	case TypeSequence, TypeSelector, TypeParallel, TypeInverter:
	case TypeAction, TypeCondition:
		if n.Use == "" {
			errs = append(errs, fmt.Errorf("%s: %w", path, ErrMissingUse))
		}
		if len(n.Children) > 0 {
			errs = append(errs, fmt.Errorf("%s: %w", path, ErrLeafChildren))
		}
	case TypeSplice:
		switch {
		case n.Ref == "":
			errs = append(errs, fmt.Errorf("%s: %w", path, ErrMissingRef))
		case !d.hasSubtree(n.Ref):
			errs = append(errs, fmt.Errorf("%s: %q: %w", path, n.Ref, ErrUnknownSubtree))
		}
		if len(n.Children) > 0 {
			errs = append(errs, fmt.Errorf("%s: %w", path, ErrLeafChildren))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: %q: %w", path, n.Type, ErrUnknownType))
	}

	for i, ch := range n.Children {
		errs = append(errs, d.validateNode(fmt.Sprintf("%s.children[%d]", path, i), ch)...)
	}
	return errs
}

func (d *Definition) checkCycle(name string, path []string) error {
	if slices.Contains(path, name) {
		return fmt.Errorf("%s: %w", strings.Join(append(path, name), " -> "), ErrSubtreeCycle)
	}
	path = append(path, name)
	for _, ref := range refs(d.Subtrees[name]) {
		if err := d.checkCycle(ref, path); err != nil {
			return err
		}
	}
	return nil
}

func (d *Definition) hasSubtree(name string) bool {
	_, ok := d.Subtrees[name]
	return ok
}

// NewBlackboard returns a blackboard seeded with the definition's initial values.
func (d *Definition) NewBlackboard() *blackboard.Blackboard {
	bb := blackboard.New()
	for _, k := range slices.Sorted(maps.Keys(d.Blackboard)) {
		bb.Set(k, d.Blackboard[k])
	}
	return bb
}

func refs(n NodeDef) []string {
	var out []string
	if normalizeType(n.Type) == TypeSplice && n.Ref != "" {
		out = append(out, n.Ref)
	}
	for _, ch := range n.Children {
		out = append(out, refs(ch)...)
	}
	return out
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
