// Package codec decompresses stored tile payloads.
//
// Every tile in a container independently declares one of several
// compression schemes, so tile loading dispatches through a small registry
// keyed by compression type. Decoders are stateless values, safe for
// concurrent use; the zstd path keeps pooled decompressors behind the
// scenes.
//
// The registry deliberately has no entry for JPEG XR: the scheme is part of
// the container format but has no Go decoder, so those tiles parse fine and
// fail only when their pixels are actually requested.
package codec
