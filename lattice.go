package wakachi

import "math"

const (
	maxCost    = int32(math.MaxInt32)
	invalidIdx = uint16(math.MaxUint16)
)

// node is one lattice element. startNode is the char position its
// predecessors end at; startWord is where its surface starts. The two differ
// only when the space policy turns a space run into a cost-free prefix.
// minCost is the best cumulative cost from BOS through this node; minIdx is
// the index of the chosen predecessor within ends[startNode].
type node struct {
	wordID    uint32
	startNode int32
	startWord int32
	minCost   int32
	leftID    uint16
	rightID   uint16
	minIdx    uint16
	lexType   LexType
}

func (n *node) wordIdx() WordIdx { return WordIdx{LexType: n.lexType, WordID: n.wordID} }

// lattice holds candidate nodes grouped by their end char position. Node
// storage and the per-position lists are pooled and reset per sentence, so
// steady-state tokenization does not allocate.
//
// The minimum-cost search runs during insertion: a node's best predecessor
// is fixed the moment it enters the lattice, which is valid because nodes
// are inserted in increasing end position and predecessors always end
// strictly earlier.
type lattice struct {
	ends    [][]node
	eos     node
	lenChar int
}

func (la *lattice) reset(lenChar int) {
	for i := range la.ends {
		la.ends[i] = la.ends[i][:0]
	}
	for len(la.ends) <= lenChar {
		la.ends = append(la.ends, make([]node, 0, 16))
	}
	la.lenChar = lenChar
	la.eos = node{}
	la.insertBos()
}

func (la *lattice) insertBos() {
	la.ends[0] = append(la.ends[0], node{
		wordID:    math.MaxUint32,
		startNode: -1,
		startWord: -1,
		leftID:    invalidIdx,
		rightID:   bosEOSConnectionID,
		minIdx:    invalidIdx,
		minCost:   0,
	})
}

// searchMinNode finds the best predecessor among the nodes ending at
// startNode. Ties keep the first-inserted node (strict less-than), so among
// equal-cost predecessors the smallest node index wins.
func (la *lattice) searchMinNode(startNode int, leftID uint16, conn *matrixConnector) (uint16, int32) {
	assert(len(la.ends[startNode]) != 0, "lattice: no previous node")
	minIdx := invalidIdx
	minCost := maxCost
	for i := range la.ends[startNode] {
		left := &la.ends[startNode][i]
		cost := left.minCost + conn.cost(left.rightID, leftID)
		if cost < minCost {
			minIdx = uint16(i)
			minCost = cost
		}
	}
	return minIdx, minCost
}

func (la *lattice) insertNode(startNode, startWord, endWord int, widx WordIdx,
	param WordParam, conn *matrixConnector) {
	//
	assert(startNode <= startWord, "lattice: startNode > startWord")
	assert(startWord < endWord, "lattice: empty span")
	minIdx, minCost := la.searchMinNode(startNode, param.LeftID, conn)
	la.ends[endWord] = append(la.ends[endWord], node{
		wordID:    widx.WordID,
		lexType:   widx.LexType,
		startNode: int32(startNode),
		startWord: int32(startWord),
		leftID:    param.LeftID,
		rightID:   param.RightID,
		minIdx:    minIdx,
		minCost:   minCost + int32(param.WordCost),
	})
}

func (la *lattice) insertEos(startNode int, conn *matrixConnector) {
	minIdx, minCost := la.searchMinNode(startNode, bosEOSConnectionID, conn)
	la.eos = node{
		wordID:    math.MaxUint32,
		startNode: int32(startNode),
		startWord: int32(la.lenChar),
		leftID:    bosEOSConnectionID,
		rightID:   invalidIdx,
		minIdx:    minIdx,
		minCost:   minCost,
	}
}

// hasPreviousNode reports whether at least one node ends at char position i.
func (la *lattice) hasPreviousNode(i int) bool {
	return i < len(la.ends) && len(la.ends[i]) != 0
}

// topNode pairs a best-path node with its end position.
type topNode struct {
	endWord int32
	node    node
}

// appendTopNodes walks the back pointers from EOS to BOS, appending the
// best path in reverse (EOS side first). BOS and EOS themselves are
// excluded.
func (la *lattice) appendTopNodes(dst []topNode) []topNode {
	endNode := int(la.eos.startNode)
	minIdx := la.eos.minIdx
	for endNode != 0 {
		n := la.ends[endNode][minIdx]
		dst = append(dst, topNode{endWord: int32(endNode), node: n})
		endNode, minIdx = int(n.startNode), n.minIdx
	}
	return dst
}
