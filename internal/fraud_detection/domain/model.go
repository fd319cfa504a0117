package domain

import (
	"slices"
	"sort"
)

type Attrs map[string]any

type Node struct {
	ID     string   `json:"id"`
	Labels []string `json:"labels"`
	// properties as stored in the graph, e.g. claim_amount, is_fraud, suspicion_score
	Props Attrs `json:"properties,omitempty"`
}

type Edge struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Type RelType `json:"type"`
	// e.g. kickback_amount on REFERS_TO, shared_claims on SUSPICIOUS_RELATIONSHIP
	Props Attrs `json:"properties,omitempty"`
}

type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges []*Edge          `json:"edges"`
	// adjacency for algorithms
	Out map[string][]*Edge `json:"-"`
	In  map[string][]*Edge `json:"-"`
}

func NewGraph() *Graph {
	return &Graph{
		Nodes: map[string]*Node{},
		Edges: []*Edge{},
		Out:   map[string][]*Edge{},
		In:    map[string][]*Edge{},
	}
}

func (g *Graph) AddNode(n *Node) {
	if n.Props == nil {
		n.Props = Attrs{}
	}
	if _, ok := g.Nodes[n.ID]; !ok {
		g.Nodes[n.ID] = n
	}
}

func (g *Graph) AddEdge(e *Edge) {
	if e.Props == nil {
		e.Props = Attrs{}
	}
	g.Edges = append(g.Edges, e)
	g.Out[e.From] = append(g.Out[e.From], e)
	g.In[e.To] = append(g.In[e.To], e)
}

// RemoveEdges drops every edge for which drop returns true and rebuilds adjacency.
func (g *Graph) RemoveEdges(drop func(*Edge) bool) int {
	kept := g.Edges[:0]
	removed := 0
	for _, e := range g.Edges {
		if drop(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	g.Out = map[string][]*Edge{}
	g.In = map[string][]*Edge{}
	for _, e := range g.Edges {
		g.Out[e.From] = append(g.Out[e.From], e)
		g.In[e.To] = append(g.In[e.To], e)
	}
	return removed
}

// Incident returns every edge touching id, outgoing first.
func (g *Graph) Incident(id string) []*Edge {
	out := make([]*Edge, 0, len(g.Out[id])+len(g.In[id]))
	out = append(out, g.Out[id]...)
	return append(out, g.In[id]...)
}

// Degree counts incident relationships in both directions.
func (g *Graph) Degree(id string) int {
	return len(g.Out[id]) + len(g.In[id])
}

// Other returns the endpoint of e that is not id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

// NodesWithLabel returns matching nodes ordered by id.
func (g *Graph) NodesWithLabel(label string) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.HasLabel(label) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for _, n := range g.Nodes {
		c.AddNode(n.Clone())
	}
	for _, e := range g.Edges {
		c.AddEdge(&Edge{From: e.From, To: e.To, Type: e.Type, Props: cloneAttrs(e.Props)})
	}
	return c
}

func (n *Node) Clone() *Node {
	return &Node{ID: n.ID, Labels: slices.Clone(n.Labels), Props: cloneAttrs(n.Props)}
}

func cloneAttrs(a Attrs) Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (n *Node) HasLabel(label string) bool {
	return slices.Contains(n.Labels, label)
}

func (n *Node) HasAnyLabel(labels ...string) bool {
	for _, l := range labels {
		if n.HasLabel(l) {
			return true
		}
	}
	return false
}

func (n *Node) Name() string { return n.Str(PropName) }

// IsFraud reports the ground-truth label; absent means false.
func (n *Node) IsFraud() bool { return n.Bool(PropIsFraud) }

// IsSuspicious is true only for non-fraud nodes flagged by a detector.
func (n *Node) IsSuspicious() bool { return !n.IsFraud() && n.Bool(PropSuspicious) }

func (n *Node) Status() Status {
	switch {
	case n.IsFraud():
		return StatusFraud
	case n.IsSuspicious():
		return StatusSuspicious
	default:
		return StatusClean
	}
}

func (n *Node) Str(key string) string {
	if s, ok := n.Props[key].(string); ok {
		return s
	}
	return ""
}

func (n *Node) Bool(key string) bool {
	b, _ := n.Props[key].(bool)
	return b
}

func (n *Node) Float(key string) float64 {
	return toFloat(n.Props[key])
}

func (n *Node) Int(key string) int {
	return int(toFloat(n.Props[key]))
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	default:
		return 0
	}
}

// PrimaryLabel is the first stored label, matching labels(n)[0] in Cypher.
func (n *Node) PrimaryLabel() string {
	if len(n.Labels) == 0 {
		return ""
	}
	return n.Labels[0]
}

var displayPriority = []string{
	LabelClaimant, LabelWitness, LabelAdjuster, LabelMedicalProvider,
	LabelAttorney, LabelBodyShop, LabelClaim, LabelPerson,
}

// DisplayLabel picks the most specific role label for presentation.
func (n *Node) DisplayLabel() string {
	for _, l := range displayPriority {
		if n.HasLabel(l) {
			return l
		}
	}
	return n.PrimaryLabel()
}
