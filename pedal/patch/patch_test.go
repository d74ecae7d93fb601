package patch

import (
	"errors"
	"slices"
	"testing"
)

func TestDefaultCompiles(t *testing.T) {
	c, err := Compile(Default())
	if err != nil {
		t.Fatalf("Compile(Default()) error = %v", err)
	}

	wantPre := []string{"input", "filter", "feedback", "clean_l", "clean_r", "delay", "dirty_l", "dirty_r"}
	if !slices.Equal(c.Pre, wantPre) {
		t.Errorf("Pre = %v, want %v", c.Pre, wantPre)
	}
	wantPost := []string{"mix", "limiter", "output"}
	if !slices.Equal(c.Post, wantPost) {
		t.Errorf("Post = %v, want %v", c.Post, wantPost)
	}

	taps := c.Taps()
	if len(taps) != 4 {
		t.Fatalf("Taps() = %v", taps)
	}
	if n, ok := c.Find(KindDelay); !ok || n.ID != "delay" {
		t.Errorf("Find(delay) = %v, %v", n, ok)
	}
}

func TestFeedbackEdgeRequiredForLoop(t *testing.T) {
	g := Default()
	for i := range g.Edges {
		g.Edges[i].Feedback = false
	}
	if _, err := Compile(g); !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Graph)
		want   error
	}{
		{"duplicate node", func(g *Graph) { g.Nodes = append(g.Nodes, Node{ID: "delay", Kind: KindDelay}) }, ErrDuplicateNode},
		{"unknown kind", func(g *Graph) { g.Nodes[1].Kind = "reverb" }, ErrUnknownKind},
		{"unknown edge source", func(g *Graph) { g.Edges[0].From = "nowhere" }, ErrUnknownNode},
		{"bad from port", func(g *Graph) { g.Edges[0].FromPort = 3 }, ErrInvalidPort},
		{"bad to port", func(g *Graph) { g.Edges[1].ToPort = 2 }, ErrInvalidPort},
		{"missing sink", func(g *Graph) {
			g.Nodes = slices.DeleteFunc(g.Nodes, func(n Node) bool { return n.Kind == KindSink })
			g.Edges = slices.DeleteFunc(g.Edges, func(e Edge) bool { return e.From == "mix" })
		}, ErrMissingNode},
		{"bad tap role", func(g *Graph) { g.Nodes[4].Role = "wet" }, ErrInvalidTap},
		{"bad tap channel", func(g *Graph) { g.Nodes[4].Channel = 2 }, ErrInvalidTap},
		{"duplicate tap", func(g *Graph) { g.Nodes[5].Channel = 0 }, ErrInvalidTap},
		{"tap fed by mix", func(g *Graph) { g.Edges = append(g.Edges, Edge{From: "limiter", To: "dirty_l"}) }, ErrSinkDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Default()
			tt.mutate(&g)
			if _, err := Compile(g); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "in", "kind": "input"},
			{"id": "d", "kind": "delay"},
			{"id": "c", "kind": "tap", "channel": 0, "role": "clean"},
			{"id": "w", "kind": "tap", "channel": 0, "role": "dirty"},
			{"id": "m", "kind": "sink"},
			{"id": "out", "kind": "output"}
		],
		"edges": [
			{"from": "in", "to": "d"},
			{"from": "in", "to": "c"},
			{"from": "d", "to": "w"},
			{"from": "m", "to": "out"},
			{"from": "m", "to": "out", "fromPort": 1, "toPort": 1}
		]
	}`)
	g, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !slices.Equal(c.Pre, []string{"in", "d", "c", "w"}) {
		t.Errorf("Pre = %v", c.Pre)
	}

	if _, err := Parse([]byte("{")); err == nil {
		t.Fatal("expected json error")
	}
}

func TestKindPorts(t *testing.T) {
	if in, out, ok := KindDelay.Ports(); !ok || in != 1 || out != 2 {
		t.Fatalf("delay ports = %d/%d/%v", in, out, ok)
	}
	if _, _, ok := Kind("phaser").Ports(); ok {
		t.Fatal("unknown kind reported ports")
	}
}
