// Package archive resolves source containers to ordered page-image files.
//
// Two container formats are readable: zip-backed archives always use the
// in-process reader, while rar-backed archives try the external unar tool
// first (it is considerably faster on large books) and fall back to the
// in-process reader when the tool is missing, fails, or times out. EPUB is
// recognized so the CLI can name it, but reading it is not implemented.
//
// Extraction lands in a uniquely named subdirectory of the temp root per
// archive, so concurrent conversions never collide on temp paths. The
// returned paths are deduplicated but deliberately unsorted; ordering policy
// belongs to the renderer.
package archive
