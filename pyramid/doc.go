// Package pyramid reconstructs resolution levels from a flat tile directory.
//
// The container stores no explicit pyramid. Every tile carries a pair of
// integer subsampling factors instead, so the pyramid is recovered by
// grouping tiles on that pair: the (1,1) group is the base level, coarser
// groups stack above it ordered by total subsampling. Level geometry falls
// out of the union of the member tiles' extents; nothing guarantees tiles
// align to a grid, cover the level, or refrain from overlapping.
//
// Reconstruction is deterministic. Levels order by subsampling product with
// a fixed tie-break, tiles within a level order by position, and tile
// identities hash canonicalized directory entries, so the same bytes always
// produce the same pyramid.
package pyramid
