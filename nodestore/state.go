package nodestore

import (
	"encoding/binary"
	"fmt"

	"github.com/dacapoday/idxkv/bkeys"
)

const stateMagic = 0xB7

// State is the B-tree's small persisted header: spec.md §3's Tree State.
// Owned in-memory by the B-tree engine (C5) for the duration of one
// public call; Store only loads and saves its serialized form.
type State struct {
	Order   uint32
	Variant bkeys.Variant
	RootID  uint64 // 0 = absent (empty tree)
	NextID  uint64
	Count   uint64
	Height  uint32
}

// serializedStateLen is {magic u8, order u32, variant u8, root_id u64,
// next_id u64, count u64, height u32}.
const serializedStateLen = 1 + 4 + 1 + 8 + 8 + 8 + 4

func (s *State) serialize() []byte {
	buf := make([]byte, serializedStateLen)
	buf[0] = stateMagic
	binary.BigEndian.PutUint32(buf[1:5], s.Order)
	buf[5] = byte(s.Variant)
	binary.BigEndian.PutUint64(buf[6:14], s.RootID)
	binary.BigEndian.PutUint64(buf[14:22], s.NextID)
	binary.BigEndian.PutUint64(buf[22:30], s.Count)
	binary.BigEndian.PutUint32(buf[30:34], s.Height)
	return buf
}

func deserializeState(data []byte) (*State, error) {
	if len(data) != serializedStateLen {
		return nil, fmt.Errorf("%w: state record has wrong length %d", ErrCorruptTree, len(data))
	}
	if data[0] != stateMagic {
		return nil, fmt.Errorf("%w: state record bad magic byte", ErrCorruptTree)
	}
	return &State{
		Order:   binary.BigEndian.Uint32(data[1:5]),
		Variant: bkeys.Variant(data[5]),
		RootID:  binary.BigEndian.Uint64(data[6:14]),
		NextID:  binary.BigEndian.Uint64(data[14:22]),
		Count:   binary.BigEndian.Uint64(data[22:30]),
		Height:  binary.BigEndian.Uint32(data[30:34]),
	}, nil
}

// Empty constructs the fresh State for a tree being created for the first
// time (spec.md §3 Lifecycle): no root, order and variant as chosen at
// Open time, the first allocatable node id is 1 since 0 is reserved for
// "no node".
func Empty(order uint32, variant bkeys.Variant) *State {
	return &State{Order: order, Variant: variant, RootID: 0, NextID: 1, Count: 0, Height: 0}
}
