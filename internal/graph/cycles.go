package graph

import "context"

// Severity ranks a cycle; shorter cycles are tighter entanglements
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityFor maps a cycle length to its severity
func SeverityFor(length int) Severity {
	switch {
	case length <= 2:
		return SeverityCritical
	case length == 3:
		return SeverityHigh
	case length <= 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Cycle is an elementary cycle, starting at its earliest node in walk order
type Cycle struct {
	Nodes    []string `json:"nodes" yaml:"nodes"`
	Length   int      `json:"length" yaml:"length"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// Cycles enumerates every distinct elementary cycle of length two or more.
// At most max cycles are returned (max <= 0 means no cap); truncated reports
// whether more exist. Cycles come out ordered by their first node, then by
// the walk order of the nodes that follow it.
func (g *Graph) Cycles(ctx context.Context, max int) (cycles []Cycle, truncated bool, err error) {
	if len(g.edges) == 0 {
		return nil, false, nil
	}

	s := &cycleSearch{
		g:        g,
		ctx:      ctx,
		max:      max,
		comp:     g.components(),
		blocked:  make([]bool, len(g.nodes)),
		blockSet: make([]map[int]struct{}, len(g.nodes)),
	}

	// Johnson's circuit search: each start node only explores later nodes of
	// its own component, so every cycle is found once, from its earliest node
	for start := range g.nodes {
		if s.comp[start] < 0 {
			continue
		}
		s.start = start
		for i := start; i < len(g.nodes); i++ {
			s.blocked[i] = false
			s.blockSet[i] = nil
		}
		if _, err := s.circuit(start); err != nil {
			return s.cycles, s.truncated, err
		}
		if s.truncated {
			break
		}
	}
	return s.cycles, s.truncated, nil
}

type cycleSearch struct {
	g         *Graph
	ctx       context.Context
	max       int
	comp      []int
	start     int
	stack     []int
	blocked   []bool
	blockSet  []map[int]struct{}
	cycles    []Cycle
	truncated bool
	steps     int
}

func (s *cycleSearch) eligible(v int) bool {
	return v >= s.start && s.comp[v] == s.comp[s.start]
}

func (s *cycleSearch) circuit(v int) (bool, error) {
	if err := checkContext(s.ctx, &s.steps); err != nil {
		return false, err
	}

	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true

	for _, w := range s.g.out[v] {
		if !s.eligible(w) {
			continue
		}
		if w == s.start {
			if s.max > 0 && len(s.cycles) >= s.max {
				s.truncated = true
				break
			}
			s.record()
			found = true
			continue
		}
		if !s.blocked[w] {
			ok, err := s.circuit(w)
			if err != nil {
				return false, err
			}
			found = found || ok
		}
		if s.truncated {
			break
		}
	}

	if found {
		s.unblock(v)
	} else {
		for _, w := range s.g.out[v] {
			if !s.eligible(w) {
				continue
			}
			if s.blockSet[w] == nil {
				s.blockSet[w] = make(map[int]struct{})
			}
			s.blockSet[w][v] = struct{}{}
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found, nil
}

func (s *cycleSearch) unblock(u int) {
	s.blocked[u] = false
	for w := range s.blockSet[u] {
		delete(s.blockSet[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *cycleSearch) record() {
	nodes := make([]string, len(s.stack))
	for i, id := range s.stack {
		nodes[i] = s.g.nodes[id]
	}
	s.cycles = append(s.cycles, Cycle{
		Nodes:    nodes,
		Length:   len(nodes),
		Severity: SeverityFor(len(nodes)),
	})
}
