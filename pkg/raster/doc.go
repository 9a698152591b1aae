// Package raster draws serialized scenes onto opaque off-screen surfaces.
//
// # Surfaces
//
// [NewSurface] allocates a surface of exactly the requested pixel size and
// fills it with a solid background before anything is drawn. Scenes are
// serialized with a transparent background, so without this step an export
// would come out transparent or black. Sizes that are non-positive or larger
// than [MaxPixels] fail with SURFACE_UNAVAILABLE.
//
// # Backends
//
// Two [Rasterizer] implementations are available:
//
//   - [Native] draws geometry (paths, circles, rects, group transforms and
//     inline styles) with github.com/srwiley/oksvg on a rasterx scanner.
//     Labels are shaped with github.com/go-text/typesetting, which joins
//     Arabic letters and orders right-to-left runs, and drawn with
//     github.com/go-text/render using the faces in pkg/fonts. Style and
//     script elements are skipped. It needs nothing installed on the host.
//   - [RSVG] shells out to rsvg-convert (librsvg) for full SVG support and
//     composites the result over the background with
//     github.com/disintegration/imaging.
//
// A scene that cannot be decoded fails with RASTERIZATION. No partial image
// is returned on error.
//
//	r, _ := raster.New(raster.KindNative)
//	img, err := r.Rasterize(ctx, svg, 800, 600, color.Black)
package raster
