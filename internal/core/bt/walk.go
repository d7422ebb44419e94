package bt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// WalkFunc is called for every node visited by Walk. Returning false skips
// the node's children.
type WalkFunc func(depth int, n Node) bool

// Walk visits root and its descendants depth-first, in evaluation order. A
// spliced subtree is visited once per occurrence. A node that appears among
// its own ancestors is reported but not descended into. Nodes whose dynamic
// type is not comparable are treated as leaves.
func Walk(root Node, fn WalkFunc) {
	if root == nil {
		return
	}
	walk(root, 0, make(map[Node]struct{}), fn)
}

func walk(n Node, depth int, path map[Node]struct{}, fn WalkFunc) {
	if !fn(depth, n) {
		return
	}
	if !Comparable(n) {
		return
	}
	if _, cycle := path[n]; cycle {
		return
	}
	path[n] = struct{}{}
	for _, ch := range children(n) {
		walk(ch, depth+1, path, fn)
	}
	delete(path, n)
}

// Comparable reports whether n can be used as a map key. Identity checks
// such as aliasing detection only apply to comparable nodes.
func Comparable(n Node) bool {
	return n != nil && reflect.ValueOf(n).Comparable()
}

func children(n Node) []Node {
	switch v := n.(type) {
	case *Sequence:
		return v.children
	case *Selector:
		return v.children
	case *Parallel:
		return v.children
	case *Inverter:
		if v.child != nil {
			return []Node{v.child}
		}
	}
	return nil
}

// Describe renders the tree one node per line, indented by depth.
func Describe(root Node) string {
	var sb strings.Builder
	Walk(root, func(depth int, n Node) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(describeNode(n))
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

func describeNode(n Node) string {
	line := fmt.Sprintf("%s %q", n.Kind(), n.Name())
	switch v := n.(type) {
	case *Parallel:
		line += fmt.Sprintf(" fail=%d succeed=%d", v.requiredToFail, v.requiredToSucceed)
	case *Sequence:
		if v.cursor.stateless {
			line += " stateless"
		}
	case *Selector:
		if v.cursor.stateless {
			line += " stateless"
		}
	}
	return line
}

// Fingerprint hashes the shape of a tree. Trees with the same node kinds,
// names, parameters and order share a fingerprint.
func Fingerprint(root Node) uint64 {
	return xxhash.Sum64String(Describe(root))
}

// Count returns the number of node occurrences in the tree.
func Count(root Node) int {
	n := 0
	Walk(root, func(int, Node) bool {
		n++
		return true
	})
	return n
}
