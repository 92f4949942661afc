// SPDX-License-Identifier: MPL-2.0

// Package dag orders the module import graph. Nodes are module ids; an
// edge from importer to imported module records an import declaration.
// BuildOrder yields imported modules before their importers so reports can
// be assembled leaves-first, and reports the offending path when imports
// form a cycle.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates the import graph contains a cycle.
	CycleError struct {
		// Cycle is a closed path through the graph: the first and last
		// entries are the same node.
		Cycle []string
	}

	// Graph is a directed import graph.
	Graph struct {
		// imports maps each node to the nodes it imports, in declaration order.
		imports map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes   []string
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		imports: make(map[string][]string),
		nodeSet: make(map[string]bool),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddImport records that importer imports imported. Both nodes are added
// if missing; repeated edges are kept once.
func (g *Graph) AddImport(importer, imported string) {
	g.AddNode(importer)
	g.AddNode(imported)
	if slices.Contains(g.imports[importer], imported) {
		return
	}
	g.imports[importer] = append(g.imports[importer], imported)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Imports returns the nodes imported by name, in declaration order.
func (g *Graph) Imports(name string) []string {
	return slices.Clone(g.imports[name])
}

// BuildOrder returns every node such that each module comes after all the
// modules it imports (Kahn's algorithm over the reversed edges). Nodes
// that become ready together keep their insertion order. A cycle yields a
// *CycleError.
func (g *Graph) BuildOrder() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// pending counts the imports of a node not yet placed in the order.
	pending := make(map[string]int, len(g.nodes))
	importers := make(map[string][]string, len(g.nodes))
	for _, node := range g.nodes {
		pending[node] = len(g.imports[node])
		for _, imported := range g.imports[node] {
			importers[imported] = append(importers[imported], node)
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		if pending[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, importer := range importers[node] {
			pending[importer]--
			if pending[importer] == 0 {
				queue = append(queue, importer)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle(pending)}
	}
	return result, nil
}

// findCycle walks import edges among the nodes Kahn's algorithm could not
// place until it revisits a node on the current path. Every unplaced node
// imports at least one other unplaced node, so the walk always closes.
func (g *Graph) findCycle(pending map[string]int) []string {
	var start string
	for _, node := range g.nodes {
		if pending[node] > 0 {
			start = node
			break
		}
	}

	path := []string{start}
	for {
		current := path[len(path)-1]
		var next string
		for _, imported := range g.imports[current] {
			if pending[imported] > 0 {
				next = imported
				break
			}
		}
		if i := slices.Index(path, next); i >= 0 {
			return append(path[i:], next)
		}
		path = append(path, next)
	}
}
