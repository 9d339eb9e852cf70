// Package vdl implements the Versatiles Definition Language: a small
// declarative grammar for describing tile-pipeline graphs. See spec.md
// section 4.4.
package vdl

import "fmt"

// Node is a single pipeline stage: a name, a map of properties (each an
// ordered list of values; duplicate keys concatenate in declaration
// order), and an ordered list of child pipelines for composite operations
// like overlays.
type Node struct {
	Name       string
	Properties map[string][]string
	Children   []Pipeline
}

// Pipeline is an ordered list of nodes joined by '|'.
type Pipeline struct {
	Nodes []Node
}

// Prop returns the first value for key, or "" if the key is absent or has
// no values.
func (n Node) Prop(key string) (string, bool) {
	v, ok := n.Properties[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// PropList returns every value for key, in declaration order.
func (n Node) PropList(key string) []string {
	return n.Properties[key]
}

// RequireProp returns the first value for key, erroring if absent.
func (n Node) RequireProp(key string) (string, error) {
	v, ok := n.Prop(key)
	if !ok {
		return "", fmt.Errorf("vdl: node %q missing required property %q", n.Name, key)
	}
	return v, nil
}
