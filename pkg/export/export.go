package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/observability"
	"github.com/unixblacksteel/mindmap/pkg/raster"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

// FilePrefix starts every exported file name.
const FilePrefix = "unix-mindmap-"

// Format is an export encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "png" or "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatPDF:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q (want png or pdf)", s)
	}
}

// MIMEType returns the media type of the format.
func (f Format) MIMEType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// Orientation of a document page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// OrientationFor returns Landscape when w > h and Portrait otherwise.
func OrientationFor(w, h int) Orientation {
	if w > h {
		return Landscape
	}
	return Portrait
}

// Artifact is one finished export.
type Artifact struct {
	Name        string
	Format      Format
	Data        []byte
	Width       int
	Height      int
	Orientation Orientation
	CreatedAt   time.Time
	Location    string // where the sink stored it, if anywhere
}

// FileName builds the export name for a timestamp.
func FileName(at time.Time, f Format) string {
	return fmt.Sprintf("%s%d.%s", FilePrefix, at.UnixMilli(), f)
}

// Exporter produces artifacts from scenes. The zero value is not usable; call New.
type Exporter struct {
	rasterizer raster.Rasterizer
	sink       Sink
	logger     *log.Logger
	now        func() time.Time
	background color.Color

	busy atomic.Bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRasterizer sets the rasterizer (default raster.Native).
func WithRasterizer(r raster.Rasterizer) Option {
	return func(e *Exporter) {
		if r != nil {
			e.rasterizer = r
		}
	}
}

// WithSink sets where artifacts are written. Without a sink artifacts only
// carry their bytes.
func WithSink(s Sink) Option { return func(e *Exporter) { e.sink = s } }

// WithLogger sets the logger for export diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithBackground overrides the scene theme's background.
func WithBackground(c color.Color) Option { return func(e *Exporter) { e.background = c } }

// New returns an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		rasterizer: raster.Native{},
		logger:     log.New(io.Discard),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether an export is in flight.
func (e *Exporter) Busy() bool { return e.busy.Load() }

// Export renders s in format f. It returns EXPORT_IN_PROGRESS without doing
// anything when another export is running.
func (e *Exporter) Export(ctx context.Context, s *scene.Scene, f Format) (*Artifact, error) {
	if !e.busy.CompareAndSwap(false, true) {
		e.logger.Debug("export ignored, another export is in flight", "format", f)
		return nil, errors.New(errors.ErrCodeExportInProgress, "an export is already in progress")
	}
	defer e.busy.Store(false)

	start := time.Now()
	observability.Pipeline().OnExportStart(ctx, string(f))
	art, err := e.export(ctx, s, f)
	size := 0
	if art != nil {
		size = len(art.Data)
	}
	observability.Pipeline().OnExportComplete(ctx, string(f), size, time.Since(start), err)

	if err != nil {
		e.logger.Error("export failed", "format", f, "err", err)
		return nil, err
	}
	e.logger.Info("exported mind map", "file", art.Name, "size", fmt.Sprintf("%dx%d", art.Width, art.Height), "bytes", len(art.Data))
	return art, nil
}

func (e *Exporter) export(ctx context.Context, s *scene.Scene, f Format) (*Artifact, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "nothing to export")
	}
	f, err := ParseFormat(string(f))
	if err != nil {
		return nil, err
	}

	w, h := s.Size()
	svg := s.Serialize()

	bg := e.background
	if bg == nil {
		bg = s.Theme().Background
	}
	img, err := e.rasterizer.Rasterize(ctx, svg, w, h, bg)
	if err != nil {
		if errors.GetCode(err) == "" && ctx.Err() == nil {
			err = errors.Wrap(errors.ErrCodeRasterization, err, "rasterize scene")
		}
		return nil, err
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		return nil, errors.New(errors.ErrCodeRasterization, "rasterizer returned %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}

	png, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	at := e.now()
	art := &Artifact{
		Name:        FileName(at, f),
		Format:      f,
		Data:        png,
		Width:       w,
		Height:      h,
		Orientation: OrientationFor(w, h),
		CreatedAt:   at,
	}
	if f == FormatPDF {
		if art.Data, err = encodePDF(png, w, h, at); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.sink != nil {
		loc, err := e.sink.Save(ctx, art.Name, art.Data)
		if err != nil {
			return nil, err
		}
		art.Location = loc
	}
	return art, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
