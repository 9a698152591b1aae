// Package export turns a scene into a downloadable PNG image or single-page
// PDF document.
//
// # Pipeline
//
// [Exporter.Export] runs four steps:
//
//  1. Serialize the scene in its idle, fully revealed form.
//  2. Rasterize it onto an opaque surface of the scene's exact pixel size.
//  3. Encode the surface as PNG, or as a PDF page of the same size in points
//     (landscape when wider than tall) with the image filling the page.
//  4. Hand the bytes to the configured [Sink] under the name
//     unix-mindmap-<epoch-ms>.<ext>.
//
// # Mutual Exclusion
//
// An Exporter runs at most one export at a time. A call made while another is
// in flight does nothing and returns an EXPORT_IN_PROGRESS error. The busy flag
// is released on every exit path, success or failure. Failed exports are
// logged and returned; nothing is written to the sink and nothing is retried.
package export
