// Package patch describes the audio-block graph of the device: named
// stages with indexed block ports, compiled into a processing order.
//
// Edges marked Feedback are excluded from ordering. Their destination reads
// the source's output from the previous period, which gives a feedback loop
// one block of latency.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Kind names a stage type.
type Kind string

const (
	KindInput    Kind = "input"
	KindFilter   Kind = "filter"
	KindFeedback Kind = "feedback"
	KindDelay    Kind = "delay"
	KindTap      Kind = "tap"
	KindSink     Kind = "sink"
	KindLimiter  Kind = "limiter"
	KindOutput   Kind = "output"
)

// Ports returns the number of input and output ports of a stage kind.
func (k Kind) Ports() (in, out int, ok bool) {
	switch k {
	case KindInput:
		return 0, 1, true
	case KindFilter:
		return 1, 1, true
	case KindFeedback:
		return 2, 1, true
	case KindDelay:
		return 1, 2, true
	case KindTap:
		return 1, 0, true
	case KindSink:
		return 0, 2, true
	case KindLimiter:
		return 2, 2, true
	case KindOutput:
		return 2, 0, true
	default:
		return 0, 0, false
	}
}

// Tap roles.
const (
	TapClean = "clean"
	TapDirty = "dirty"
)

// Channels is the number of stereo channels a tap may address.
const Channels = 2

type tapKey struct {
	channel int
	role    string
}

var (
	ErrCycle          = errors.New("patch: graph contains a cycle")
	ErrDuplicateNode  = errors.New("patch: duplicate node")
	ErrUnknownNode    = errors.New("patch: unknown node")
	ErrUnknownKind    = errors.New("patch: unknown node kind")
	ErrInvalidPort    = errors.New("patch: port index out of range")
	ErrMissingNode    = errors.New("patch: required node missing")
	ErrInvalidTap     = errors.New("patch: invalid tap")
	ErrSinkDependency = errors.New("patch: tap or input downstream of the mix")
)

// Node is one stage. Channel and Role are used by tap nodes only.
type Node struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Channel int    `json:"channel,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Edge connects an output port to an input port.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	FromPort int    `json:"fromPort,omitempty"` //nolint:tagliatelle
	ToPort   int    `json:"toPort,omitempty"`   //nolint:tagliatelle
	Feedback bool   `json:"feedback,omitempty"`
}

// Graph is the serializable form of a patch.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Default returns the device patch:
//
//	input -> filter -> feedback -> delay
//	delay:0 -> feedback:1 (feedback)
//	filter -> clean_l, filter -> clean_r
//	delay:0 -> dirty_l, delay:1 -> dirty_r
//	mix:0/1 -> limiter:0/1 -> output:0/1
func Default() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "input", Kind: KindInput},
			{ID: "filter", Kind: KindFilter},
			{ID: "feedback", Kind: KindFeedback},
			{ID: "delay", Kind: KindDelay},
			{ID: "clean_l", Kind: KindTap, Channel: 0, Role: TapClean},
			{ID: "clean_r", Kind: KindTap, Channel: 1, Role: TapClean},
			{ID: "dirty_l", Kind: KindTap, Channel: 0, Role: TapDirty},
			{ID: "dirty_r", Kind: KindTap, Channel: 1, Role: TapDirty},
			{ID: "mix", Kind: KindSink},
			{ID: "limiter", Kind: KindLimiter},
			{ID: "output", Kind: KindOutput},
		},
		Edges: []Edge{
			{From: "input", To: "filter"},
			{From: "filter", To: "feedback"},
			{From: "feedback", To: "delay"},
			{From: "delay", To: "feedback", ToPort: 1, Feedback: true},
			{From: "filter", To: "clean_l"},
			{From: "filter", To: "clean_r"},
			{From: "delay", To: "dirty_l"},
			{From: "delay", To: "dirty_r", FromPort: 1},
			{From: "mix", To: "limiter"},
			{From: "mix", To: "limiter", FromPort: 1, ToPort: 1},
			{From: "limiter", To: "output"},
			{From: "limiter", To: "output", FromPort: 1, ToPort: 1},
		},
	}
}

// Parse decodes a JSON graph.
func Parse(raw []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return Graph{}, fmt.Errorf("patch: invalid graph json: %w", err)
	}
	return g, nil
}

// Compiled is a validated graph with adjacency and processing order.
type Compiled struct {
	Nodes    map[string]Node
	Incoming map[string][]Edge
	Outgoing map[string][]Edge

	// Pre runs before the mixer, Post after it. Post holds every node
	// reachable from a sink.
	Pre  []string
	Post []string
}

// Compile validates g and computes the processing order (Kahn's algorithm,
// feedback edges excluded). Ties are broken by declaration order so the
// result is deterministic.
func Compile(g Graph) (*Compiled, error) {
	nodes := make(map[string]Node, len(g.Nodes))
	taps := make(map[tapKey]struct{})
	for i, n := range g.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: empty id at %d", ErrUnknownNode, i)
		}
		if _, dup := nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
		if _, _, ok := n.Kind.Ports(); !ok {
			return nil, fmt.Errorf("%w: %q on %q", ErrUnknownKind, n.Kind, n.ID)
		}
		if n.Kind == KindTap {
			if n.Role != TapClean && n.Role != TapDirty {
				return nil, fmt.Errorf("%w: %q has role %q", ErrInvalidTap, n.ID, n.Role)
			}
			if n.Channel < 0 || n.Channel >= Channels {
				return nil, fmt.Errorf("%w: %q has channel %d", ErrInvalidTap, n.ID, n.Channel)
			}
			key := tapKey{n.Channel, n.Role}
			if _, dup := taps[key]; dup {
				return nil, fmt.Errorf("%w: %q duplicates %s channel %d", ErrInvalidTap, n.ID, n.Role, n.Channel)
			}
			taps[key] = struct{}{}
		}
		nodes[n.ID] = n
	}

	for _, kind := range []Kind{KindInput, KindSink, KindOutput} {
		if !slices.ContainsFunc(g.Nodes, func(n Node) bool { return n.Kind == kind }) {
			return nil, fmt.Errorf("%w: no %s node", ErrMissingNode, kind)
		}
	}

	incoming := make(map[string][]Edge, len(nodes))
	outgoing := make(map[string][]Edge, len(nodes))
	indegree := make(map[string]int, len(nodes))

	for _, e := range g.Edges {
		from, ok := nodes[e.From]
		if !ok {
			return nil, fmt.Errorf("%w: edge from %q", ErrUnknownNode, e.From)
		}
		to, ok := nodes[e.To]
		if !ok {
			return nil, fmt.Errorf("%w: edge to %q", ErrUnknownNode, e.To)
		}
		_, outs, _ := from.Kind.Ports()
		ins, _, _ := to.Kind.Ports()
		if e.FromPort < 0 || e.FromPort >= outs {
			return nil, fmt.Errorf("%w: %s:%d", ErrInvalidPort, e.From, e.FromPort)
		}
		if e.ToPort < 0 || e.ToPort >= ins {
			return nil, fmt.Errorf("%w: %s:%d", ErrInvalidPort, e.To, e.ToPort)
		}

		outgoing[e.From] = append(outgoing[e.From], e)
		incoming[e.To] = append(incoming[e.To], e)
		if !e.Feedback {
			indegree[e.To]++
		}
	}

	order, err := topoSort(g.Nodes, outgoing, indegree)
	if err != nil {
		return nil, err
	}

	post := downstreamOfSinks(g.Nodes, outgoing)
	c := &Compiled{
		Nodes:    nodes,
		Incoming: incoming,
		Outgoing: outgoing,
	}
	for _, id := range order {
		if post[id] {
			c.Post = append(c.Post, id)
		} else {
			c.Pre = append(c.Pre, id)
		}
	}

	for _, id := range c.Post {
		if k := nodes[id].Kind; k == KindTap || k == KindInput {
			return nil, fmt.Errorf("%w: %s %q is fed by the mix", ErrSinkDependency, k, id)
		}
	}

	return c, nil
}

func topoSort(decl []Node, outgoing map[string][]Edge, indegree map[string]int) ([]string, error) {
	queue := make([]string, 0, len(decl))
	for _, n := range decl {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(decl))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		order = append(order, id)
		for _, e := range outgoing[id] {
			if e.Feedback {
				continue
			}
			indegree[e.To]--
			if indegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	if len(order) != len(decl) {
		return nil, ErrCycle
	}
	return order, nil
}

func downstreamOfSinks(decl []Node, outgoing map[string][]Edge) map[string]bool {
	seen := make(map[string]bool, len(decl))
	var stack []string
	for _, n := range decl {
		if n.Kind == KindSink {
			stack = append(stack, n.ID)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, e := range outgoing[id] {
			if !e.Feedback {
				stack = append(stack, e.To)
			}
		}
	}
	return seen
}

// Taps returns the tap nodes in processing order.
func (c *Compiled) Taps() []Node {
	var taps []Node
	for _, id := range c.Pre {
		if n := c.Nodes[id]; n.Kind == KindTap {
			taps = append(taps, n)
		}
	}
	return taps
}

// Find returns the first node of the given kind, in processing order.
func (c *Compiled) Find(kind Kind) (Node, bool) {
	for _, id := range slices.Concat(c.Pre, c.Post) {
		if n := c.Nodes[id]; n.Kind == kind {
			return n, true
		}
	}
	return Node{}, false
}
