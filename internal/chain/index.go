package chain

import (
	"math/big"

	"github.com/nozmo-king/eMoney/internal/consensus"
	"github.com/nozmo-king/eMoney/pkg/block"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// blockNode is one vertex of the block-index tree. Nodes link only to
// their parent; ancestry and fork-point queries walk upward. Nodes are
// created when a block is accepted into the index and live for the
// process lifetime, whether or not they are on the active chain.
type blockNode struct {
	hash   types.Hash
	block  *block.Block
	parent *blockNode
	height uint32

	// workSum is the cumulative work from genesis through this block.
	workSum *big.Int

	// invalid marks a node whose block failed to connect, so future
	// submissions do not build on a branch that can never activate.
	invalid bool
}

// newBlockNode creates an index node for blk on top of parent.
// A nil parent denotes the genesis node.
func newBlockNode(blk *block.Block, parent *blockNode) *blockNode {
	node := &blockNode{
		hash:   blk.Hash(),
		block:  blk,
		parent: parent,
	}
	if parent == nil {
		// Genesis carries no accumulated work of its own.
		node.workSum = big.NewInt(0)
		return node
	}
	node.height = parent.height + 1
	node.workSum = new(big.Int).Add(parent.workSum, consensus.CalcWork(blk.Header.Bits))
	return node
}

// Ancestor returns the node's ancestor at the given height, or nil if
// height is above the node's own.
func (n *blockNode) Ancestor(height uint32) *blockNode {
	if height > n.height {
		return nil
	}
	walk := n
	for walk != nil && walk.height != height {
		walk = walk.parent
	}
	return walk
}

// hasInvalidAncestor reports whether the node sits on a branch with a
// failed connect anywhere below it.
func (n *blockNode) hasInvalidAncestor() bool {
	for walk := n; walk != nil; walk = walk.parent {
		if walk.invalid {
			return true
		}
	}
	return false
}

// blockIndex maps block hashes to index nodes. It is append-only:
// nodes are never removed during a session.
type blockIndex struct {
	byHash map[types.Hash]*blockNode
}

// newBlockIndex creates an empty index.
func newBlockIndex() *blockIndex {
	return &blockIndex{byHash: make(map[types.Hash]*blockNode)}
}

// Lookup returns the node for a block hash, or nil.
func (bi *blockIndex) Lookup(hash types.Hash) *blockNode {
	return bi.byHash[hash]
}

// Add inserts a node. Cycles are impossible: a node's parent must
// already be indexed and entries are never replaced.
func (bi *blockIndex) Add(node *blockNode) {
	bi.byHash[node.hash] = node
}

// findForkPoint returns the deepest common ancestor of a and b.
// The deeper node first steps up to the shallower one's height, then
// both step in lockstep until they coincide. Both chains share the
// genesis node, so a fork point always exists.
func findForkPoint(a, b *blockNode) *blockNode {
	for a.height > b.height {
		a = a.parent
	}
	for b.height > a.height {
		b = b.parent
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}
