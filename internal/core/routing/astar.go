package routing

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/pkg/geospatial"
)

// OptimizerConfig tunes the constrained-deviation search.
type OptimizerConfig struct {
	// StepMeters is the forward distance of every expansion.
	StepMeters float64
	// AngleRangeDeg bounds the bearing offsets of the candidate fan to
	// [-AngleRangeDeg, +AngleRangeDeg] around the direct course.
	AngleRangeDeg float64
	// Fan is the number of candidate bearings per expansion.
	Fan int
	// MaxDeviationRatio caps a node's perpendicular distance from the
	// straight start-end line as a fraction of that line's length.
	MaxDeviationRatio float64
}

// DefaultOptimizerConfig returns the production tuning.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		StepMeters:        1000,
		AngleRangeDeg:     30,
		Fan:               10,
		MaxDeviationRatio: 0.20,
	}
}

// Optimizer searches for a route that trades a bounded detour for lower
// population exposure. It holds no state between calls; each FindPath owns
// its open and closed sets.
type Optimizer struct {
	cfg OptimizerConfig
}

// NewOptimizer creates an Optimizer with the given tuning.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	if cfg.Fan < 2 {
		cfg.Fan = 2
	}
	return &Optimizer{cfg: cfg}
}

// searchNode is one entry in the open set. seq breaks exact priority ties
// in insertion order.
type searchNode struct {
	pt     domain.Point
	g      float64
	f      float64
	seq    int
	parent *searchNode
	index  int
}

// openSet is a min-heap ordered by f, then g, then insertion order.
type openSet []*searchNode

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].g != o[j].g {
		return o[i].g < o[j].g
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openSet) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*o)
	*o = append(*o, n)
}

func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	return n
}

// FindPath returns an ordered polyline from start to end minimizing
// cumulative population exposure while keeping every node within the
// deviation budget. On context expiry or an exhausted search it falls back
// to the straight line. The returned path always has length ≥ 2.
func (o *Optimizer) FindPath(ctx context.Context, start, end domain.Point, corridor []domain.GeoPoint) []domain.Point {
	var populated []domain.GeoPoint
	for _, p := range corridor {
		if p.Type == domain.TypePopulation {
			populated = append(populated, p)
		}
	}

	straight := geospatial.Distance(start.Lat, start.Lon, end.Lat, end.Lon)
	maxDeviation := o.cfg.MaxDeviationRatio * straight

	open := &openSet{}
	heap.Init(open)
	closed := make(map[string]struct{})
	seq := 0

	push := func(n *searchNode) {
		n.seq = seq
		seq++
		heap.Push(open, n)
	}

	push(&searchNode{pt: start, g: 0, f: straight})

	for open.Len() > 0 {
		if ctx.Err() != nil {
			return []domain.Point{start, end}
		}

		n := heap.Pop(open).(*searchNode)
		key := nodeKey(n.pt)
		if _, ok := closed[key]; ok {
			continue
		}
		closed[key] = struct{}{}

		if geospatial.Distance(n.pt.Lat, n.pt.Lon, end.Lat, end.Lon) <= o.cfg.StepMeters {
			return reconstruct(n, end)
		}

		direct := geospatial.RhumbBearing(n.pt.Lat, n.pt.Lon, end.Lat, end.Lon)
		for i := 0; i < o.cfg.Fan; i++ {
			offset := o.cfg.AngleRangeDeg * (2*float64(i)/float64(o.cfg.Fan-1) - 1)
			lat, lon := geospatial.RhumbDestination(n.pt.Lat, n.pt.Lon, o.cfg.StepMeters, direct+offset)
			m := domain.Point{Lat: lat, Lon: lon}

			if _, ok := closed[nodeKey(m)]; ok {
				continue
			}
			if geospatial.PerpendicularDistance(m.Lat, m.Lon, start.Lat, start.Lon, end.Lat, end.Lon) > maxDeviation {
				continue
			}

			g := n.g + stepCost(m, populated)
			h := geospatial.Distance(m.Lat, m.Lon, end.Lat, end.Lon)
			push(&searchNode{pt: m, g: g, f: g + h, parent: n})
		}
	}

	return []domain.Point{start, end}
}

// stepCost is the population penalty of arriving at candidate m, evaluated
// once per candidate over the corridor's population cells.
func stepCost(m domain.Point, populated []domain.GeoPoint) float64 {
	var cost float64
	for _, p := range populated {
		d := geospatial.Distance(p.Lat, p.Lon, m.Lat, m.Lon)
		switch {
		case d <= 500:
			cost += float64(p.Population) * 2
		case d <= 1000:
			cost += float64(p.Population)
		}
	}
	return cost
}

func reconstruct(n *searchNode, end domain.Point) []domain.Point {
	var reversed []domain.Point
	for cur := n; cur != nil; cur = cur.parent {
		reversed = append(reversed, cur.pt)
	}
	path := make([]domain.Point, 0, len(reversed)+1)
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return append(path, end)
}

// nodeKey identifies a node by its coordinates rounded to 6 decimal places
// (~11 cm), which merges re-expansions of effectively identical points.
func nodeKey(p domain.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}
