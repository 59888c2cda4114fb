// Package huffcode implements HuffTree, the binary trie used by every
// entropy decoder in this module. Nodes are stored in a flat arena of
// (child0, child1, symbol) triples so traversal never allocates, built as
// an explicit trie rather than a packed lookup table because the TRUE
// codec builds trees from a (length, prefix-byte) stream rather than a
// sorted code-length histogram.
package huffcode

import "errors"

// UndefinedLeaf is the sentinel used for a node slot that has not been set.
const UndefinedLeaf uint32 = 0xffffffff

// MaxPackedTableCodeLength is the longest code length the packed-table
// builder accepts.
const MaxPackedTableCodeLength = 27

// MaxTrueCodeLength is the longest code length the length-then-code
// builder accepts.
const MaxTrueCodeLength = 8

// ErrDesync is returned by Decode when traversal falls off the tree: an
// internal node is missing the child named by the next bit. This is
// treated as a fatal stream-desync; the caller halts the current plane.
var ErrDesync = errors.New("huffcode: fell off tree (missing child)")

// ErrInvalidTable is returned when a table encoding cannot be built into a
// tree (e.g. a code length exceeds the format's maximum).
var ErrInvalidTable = errors.New("huffcode: invalid code table")

// node is one arena slot: either an internal node with two child indices,
// or a leaf carrying a symbol. child0/child1 are UndefinedLeaf when unset;
// isLeaf distinguishes a leaf whose symbol happens to be 0 from an unset
// internal child.
type node struct {
	child0, child1 uint32
	symbol         uint32
	isLeaf         bool
}

// Tree is a binary Huffman trie with explicit leaves.
type Tree struct {
	nodes []node
}

// bitReader is the minimal interface Decode needs; internal/bitio.Reader
// satisfies it.
type bitReader interface {
	GetBit() int
}

func newTree(capacity int) *Tree {
	nodes := make([]node, 1, capacity+1)
	nodes[0] = node{child0: UndefinedLeaf, child1: UndefinedLeaf}
	return &Tree{nodes: nodes}
}

// ensureChild returns the index of the child of nodes[at] along bit,
// allocating a fresh internal node if the child is unset.
func (t *Tree) ensureChild(at uint32, bit int) uint32 {
	n := &t.nodes[at]
	var child *uint32
	if bit == 0 {
		child = &n.child0
	} else {
		child = &n.child1
	}
	if *child == UndefinedLeaf {
		t.nodes = append(t.nodes, node{child0: UndefinedLeaf, child1: UndefinedLeaf})
		*child = uint32(len(t.nodes) - 1)
	}
	return *child
}

// setLeaf marks nodes[at] as a leaf carrying symbol and clears its child
// links; the caller has already created or located nodes[at].
func (t *Tree) setLeaf(at uint32, symbol uint32) {
	t.nodes[at].isLeaf = true
	t.nodes[at].symbol = symbol
	t.nodes[at].child0 = UndefinedLeaf
	t.nodes[at].child1 = UndefinedLeaf
}

// insert walks from the root, creating internal nodes for each bit of
// code (MSB-first, length bits long, length >= 1), and marks the final
// node as a leaf carrying symbol.
func (t *Tree) insert(code uint32, length int, symbol uint32) {
	at := uint32(0)
	for i := length - 1; i > 0; i-- {
		bit := int((code >> uint(i)) & 1)
		at = t.ensureChild(at, bit)
	}
	bit := int(code & 1)
	leaf := t.ensureChild(at, bit)
	t.setLeaf(leaf, symbol)
}

// Decode walks the tree from the root, consuming one bit at a time from r,
// and returns the symbol at the reached leaf. It returns ErrDesync if an
// internal node lacks the child named by the next bit.
func (t *Tree) Decode(r bitReader) (uint32, error) {
	at := uint32(0)
	for {
		n := &t.nodes[at]
		if n.isLeaf {
			return n.symbol, nil
		}
		bit := r.GetBit()
		var next uint32
		if bit == 0 {
			next = n.child0
		} else {
			next = n.child1
		}
		if next == UndefinedLeaf {
			return 0, ErrDesync
		}
		at = next
	}
}

// BuildPackedTable builds a Tree from a table of u32 codes where bits
// 27..31 hold the code length (0 = absent) and bits 0..26 hold the code
// bits, left-justified within length. The table index is the symbol,
// unless mapping is non-nil and has the same length as table, in which
// case mapping[index] is the external symbol.
//
// Maximum code length is MaxPackedTableCodeLength (27).
func BuildPackedTable(table []uint32, mapping []uint16) (*Tree, error) {
	leaves := 0
	for _, entry := range table {
		length := int(entry >> 27)
		if length > 0 {
			leaves++
		}
	}
	t := newTree((MaxPackedTableCodeLength + 1) * (leaves + 1))

	useMapping := mapping != nil && len(mapping) == len(table)
	for idx, entry := range table {
		length := int(entry >> 27)
		if length == 0 {
			continue
		}
		if length > MaxPackedTableCodeLength {
			return nil, ErrInvalidTable
		}
		codeBits := entry & ((1 << 27) - 1)
		code := codeBits >> uint(27-length)
		symbol := uint32(idx)
		if useMapping {
			symbol = uint32(mapping[idx])
		}
		t.insert(code, length, symbol)
	}
	return t, nil
}

// LengthCodeEntry is one (length, prefix-byte) pair from the TRUE-codec
// table encoding.
type LengthCodeEntry struct {
	Length int
	Prefix byte
}

// BuildLengthCodeTable builds a Tree from a stream of (length, prefix-byte)
// pairs. The prefix byte is passed as read verbatim from the stream, with
// the code left-justified in it; this function right-justifies it with the
// `>> (8-length)` adjustment. The symbol is the index of the entry in
// entries (a terminating length==0 entry, if present, is not itself a
// symbol and must not be included in entries).
//
// Maximum length is MaxTrueCodeLength (8).
func BuildLengthCodeTable(entries []LengthCodeEntry) (*Tree, error) {
	t := newTree((MaxTrueCodeLength + 1) * (len(entries) + 1))
	for symbol, e := range entries {
		if e.Length == 0 {
			continue
		}
		if e.Length > MaxTrueCodeLength {
			return nil, ErrInvalidTable
		}
		code := uint32(e.Prefix) >> uint(8-e.Length)
		t.insert(code, e.Length, uint32(symbol))
	}
	return t, nil
}
