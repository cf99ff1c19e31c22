package state

import (
	"github.com/dhconnelly/rtreego"

	"github.com/cityflow-dev/cityflow/pkg/protocol"
)

// pointExtent is the degenerate rectangle size used to index point
// locations; rtreego requires strictly positive edge lengths.
const pointExtent = 1e-9

// indexedNode adapts a protocol.Node to rtreego's Spatial interface.
type indexedNode struct {
	node     protocol.Node
	envelope rtreego.Rect
}

func (in *indexedNode) Bounds() rtreego.Rect {
	return in.envelope
}

// nodeIndex is an immutable spatial index over one snapshot's node list.
// It is rebuilt on every snapshot replace and swapped in whole, so lookups
// never race with a merge.
type nodeIndex struct {
	tree *rtreego.Rtree
	size int
}

func newNodeIndex(nodes []protocol.Node) *nodeIndex {
	tree := rtreego.NewTree(2, 8, 16)
	size := 0
	for _, n := range nodes {
		rect, err := rtreego.NewRect(rtreego.Point{n.Lat, n.Lng}, []float64{pointExtent, pointExtent})
		if err != nil {
			continue
		}
		tree.Insert(&indexedNode{node: n, envelope: rect})
		size++
	}
	return &nodeIndex{tree: tree, size: size}
}

func (ni *nodeIndex) nearest(lat, lng float64) (protocol.Node, bool) {
	if ni.size == 0 {
		return protocol.Node{}, false
	}
	hit := ni.tree.NearestNeighbor(rtreego.Point{lat, lng})
	in, ok := hit.(*indexedNode)
	if !ok {
		return protocol.Node{}, false
	}
	return in.node, true
}
