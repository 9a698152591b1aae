package export

import (
	"bytes"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

const pdfImageName = "mindmap"

// encodePDF places a PNG on a single page of exactly w×h points.
func encodePDF(png []byte, w, h int, at time.Time) ([]byte, error) {
	orientation := "P"
	if OrientationFor(w, h) == Landscape {
		orientation = "L"
	}
	// gofpdf swaps the page size for landscape, so it is given short side first.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(min(w, h)), Ht: float64(max(w, h))},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(at)
	pdf.SetTitle("Unix Blacksteel mind map", true)
	pdf.SetCreator("mindmap", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(pdfImageName, opts, bytes.NewReader(png))
	pdf.ImageOptions(pdfImageName, 0, 0, float64(w), float64(h), false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode pdf")
	}
	return buf.Bytes(), nil
}
