package nodestore

import (
	"encoding/binary"
	"fmt"

	"github.com/dacapoday/idxkv/bkeys"
)

// Kind distinguishes an internal node (carries child node ids) from a
// leaf (does not).
type Kind byte

const (
	KindLeaf     Kind = 1
	KindInternal Kind = 2
)

// Node is one persistent B-tree node: spec.md §3.
type Node struct {
	ID        uint64
	Kind      Kind
	Container bkeys.Container
	// Children holds this node's child node ids, len() == Container.Len()+1,
	// only meaningful when Kind == KindInternal.
	Children []uint64
}

// serialize produces the length-delimited envelope spec.md §4.2
// describes: {1-byte kind tag, container bytes, optional children-id
// vector}, the container bytes length-prefixed and the children written
// as a count-prefixed sequence of varints.
func (n *Node) serialize() []byte {
	containerBytes := n.Container.Serialize()

	var tmp [binary.MaxVarintLen64]byte
	buf := make([]byte, 0, 1+binary.MaxVarintLen64+len(containerBytes)+8*len(n.Children))
	buf = append(buf, byte(n.Kind))

	cn := binary.PutUvarint(tmp[:], uint64(len(containerBytes)))
	buf = append(buf, tmp[:cn]...)
	buf = append(buf, containerBytes...)

	if n.Kind == KindInternal {
		cn = binary.PutUvarint(tmp[:], uint64(len(n.Children)))
		buf = append(buf, tmp[:cn]...)
		for _, id := range n.Children {
			cn = binary.PutUvarint(tmp[:], id)
			buf = append(buf, tmp[:cn]...)
		}
	}
	return buf
}

func deserializeNode(id uint64, variant bkeys.Variant, data []byte) (*Node, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: node %d: empty record", ErrCorruptTree, id)
	}
	kind := Kind(data[0])
	if kind != KindLeaf && kind != KindInternal {
		return nil, fmt.Errorf("%w: node %d: unknown kind tag %d", ErrCorruptTree, id, data[0])
	}
	data = data[1:]

	clen, n := binary.Uvarint(data)
	if n <= 0 || uint64(len(data)-n) < clen {
		return nil, fmt.Errorf("%w: node %d: corrupt container length", ErrCorruptTree, id)
	}
	data = data[n:]
	containerBytes := data[:clen]
	data = data[clen:]

	container, err := bkeys.Deserialize(variant, containerBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: node %d: %v", ErrCorruptTree, id, err)
	}

	node := &Node{ID: id, Kind: kind, Container: container}

	if kind == KindInternal {
		count, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("%w: node %d: corrupt children count", ErrCorruptTree, id)
		}
		data = data[n:]
		children := make([]uint64, 0, count)
		for i := uint64(0); i < count; i++ {
			cid, n := binary.Uvarint(data)
			if n <= 0 {
				return nil, fmt.Errorf("%w: node %d: corrupt child id %d", ErrCorruptTree, id, i)
			}
			data = data[n:]
			children = append(children, cid)
		}
		node.Children = children
	}
	return node, nil
}
