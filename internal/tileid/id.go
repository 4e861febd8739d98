// Package tileid derives stable 64-bit tile identities from directory
// entries.
package tileid

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/slidecraft/zisraw/segment"
)

// Sum computes the xxHash64 identity of a tile from its source ordinal and
// its dimension entries.
//
// Entries are hashed in axis order, so the identity does not depend on how
// the writer ordered the dimension list on disk. Two tiles share an identity
// only when they belong to the same source and occupy the same coordinates
// on every axis, mosaic index included.
func Sum(source int, dims []segment.DimensionEntry) uint64 {
	sorted := make([]segment.DimensionEntry, len(dims))
	copy(sorted, dims)
	slices.SortFunc(sorted, func(a, b segment.DimensionEntry) int {
		return strings.Compare(string(a.Axis), string(b.Axis))
	})

	d := xxhash.New()

	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(int64(source)))
	_, _ = d.Write(buf[0:8])

	for _, dim := range sorted {
		copy(buf[0:4], dim.Axis)
		for i := len(dim.Axis); i < 4; i++ {
			buf[i] = 0
		}
		binary.LittleEndian.PutUint32(buf[4:8], uint32(dim.Start))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(dim.Size))
		_, _ = d.Write(buf[:])
	}

	return d.Sum64()
}
