//
// Tencent is pleased to support the open source community by making trpc-crmflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crmflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"context"
	"fmt"
)

// Special node identifiers for graph routing.
const (
	// Start represents the virtual start node for routing.
	Start = "__start__"
	// End represents the virtual end node for routing.
	End = "__end__"
)

// NodeFunc is a stage handler. It receives the conversation state with
// exclusive access and mutates it in place; the executor is the sole arbiter
// of ordering, so no two nodes ever touch the same state concurrently.
type NodeFunc func(ctx context.Context, s *State) error

// ConditionalFunc determines the next node based on state.
type ConditionalFunc func(ctx context.Context, s *State) (string, error)

// Node represents a node in the graph.
type Node struct {
	ID          string
	Name        string
	Description string
	Function    NodeFunc
}

// Edge represents an unconditional edge in the graph.
type Edge struct {
	From string
	To   string
}

// ConditionalEdge represents a conditional edge with routing logic.
// A condition result missing from PathMap is an execution fault, never a
// silent default.
type ConditionalEdge struct {
	From      string
	Condition ConditionalFunc
	PathMap   map[string]string
}

// Graph is the compiled, immutable runtime structure created by
// StateGraph.Compile. It is safe for concurrent executors.
type Graph struct {
	nodes            map[string]*Node
	edges            map[string][]*Edge
	conditionalEdges map[string]*ConditionalEdge
	entryPoint       string
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Edges returns all outgoing edges from a node.
func (g *Graph) Edges(nodeID string) []*Edge {
	return g.edges[nodeID]
}

// ConditionalEdge returns the conditional edge from a node.
func (g *Graph) ConditionalEdge(nodeID string) (*ConditionalEdge, bool) {
	edge, exists := g.conditionalEdges[nodeID]
	return edge, exists
}

// EntryPoint returns the entry point node ID.
func (g *Graph) EntryPoint() string {
	return g.entryPoint
}

// validate validates the graph structure.
func (g *Graph) validate() error {
	if g.entryPoint == "" {
		return fmt.Errorf("graph must have an entry point")
	}
	if _, exists := g.nodes[g.entryPoint]; !exists {
		return fmt.Errorf("entry point node %s does not exist", g.entryPoint)
	}
	for from, edges := range g.edges {
		for _, edge := range edges {
			if edge.To == End {
				continue
			}
			if _, exists := g.nodes[edge.To]; !exists {
				return fmt.Errorf("edge %s -> %s targets unknown node", from, edge.To)
			}
		}
	}
	for from, condEdge := range g.conditionalEdges {
		for _, to := range condEdge.PathMap {
			if to == End {
				continue
			}
			if _, exists := g.nodes[to]; !exists {
				return fmt.Errorf("conditional edge from %s targets unknown node %s", from, to)
			}
		}
	}
	return nil
}

// StateGraph builds a Graph incrementally. Construction errors are deferred
// to Compile so calls can be chained.
//
// Example usage:
//
//	graph, err := workflow.NewStateGraph().
//	  AddNode("enrich", enrichFunc).
//	  SetEntryPoint("enrich").
//	  SetFinishPoint("enrich").
//	  Compile()
type StateGraph struct {
	graph *Graph
	err   error
}

// NewStateGraph creates a new graph builder.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		graph: &Graph{
			nodes:            make(map[string]*Node),
			edges:            make(map[string][]*Edge),
			conditionalEdges: make(map[string]*ConditionalEdge),
		},
	}
}

// Option is a function that configures a Node.
type Option func(*Node)

// WithName sets the name of the node.
func WithName(name string) Option {
	return func(node *Node) {
		node.Name = name
	}
}

// WithDescription sets the description of the node.
func WithDescription(description string) Option {
	return func(node *Node) {
		node.Description = description
	}
}

// AddNode adds a node with the given ID and function.
// The name and description of the node can be set with the options.
func (sg *StateGraph) AddNode(id string, function NodeFunc, opts ...Option) *StateGraph {
	if sg.err != nil {
		return sg
	}
	if id == "" {
		sg.err = fmt.Errorf("node ID cannot be empty")
		return sg
	}
	if _, exists := sg.graph.nodes[id]; exists {
		sg.err = fmt.Errorf("node with ID %s already exists", id)
		return sg
	}
	node := &Node{
		ID:       id,
		Name:     id,
		Function: function,
	}
	for _, opt := range opts {
		opt(node)
	}
	sg.graph.nodes[id] = node
	return sg
}

// AddEdge adds a normal edge between two nodes.
func (sg *StateGraph) AddEdge(from, to string) *StateGraph {
	if sg.err != nil {
		return sg
	}
	if from == "" || to == "" {
		sg.err = fmt.Errorf("edge from and to cannot be empty")
		return sg
	}
	sg.graph.edges[from] = append(sg.graph.edges[from], &Edge{From: from, To: to})
	return sg
}

// AddConditionalEdges adds conditional routing from a node.
func (sg *StateGraph) AddConditionalEdges(
	from string,
	condition ConditionalFunc,
	pathMap map[string]string,
) *StateGraph {
	if sg.err != nil {
		return sg
	}
	if from == "" {
		sg.err = fmt.Errorf("conditional edge from cannot be empty")
		return sg
	}
	sg.graph.conditionalEdges[from] = &ConditionalEdge{
		From:      from,
		Condition: condition,
		PathMap:   pathMap,
	}
	return sg
}

// SetEntryPoint sets the entry point of the graph.
func (sg *StateGraph) SetEntryPoint(nodeID string) *StateGraph {
	if sg.err != nil {
		return sg
	}
	sg.graph.entryPoint = nodeID
	return sg
}

// SetFinishPoint adds an edge from the given node to End.
func (sg *StateGraph) SetFinishPoint(nodeID string) *StateGraph {
	return sg.AddEdge(nodeID, End)
}

// Compile validates the graph structure and returns the immutable Graph.
func (sg *StateGraph) Compile() (*Graph, error) {
	if sg.err != nil {
		return nil, sg.err
	}
	if err := sg.graph.validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return sg.graph, nil
}
