// Package document renders approved requests into single page certificates.
package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"brgygo/pkg/types"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth   = 595.28
	pageHeight  = 841.89
	margin      = 50.0
	contentWide = pageWidth - 2*margin

	qrPlacedSize = 80.0
	sealSize     = 70.0

	watermarkText = "BrgyGo"
)

// Artifact is a fully buffered document ready to stream or encode.
type Artifact struct {
	Filename        string
	ReferenceNumber string
	ContentType     string
	Bytes           []byte
}

func (a *Artifact) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Bytes)
}

// Input is everything a render needs besides office metadata.
type Input struct {
	Request *types.Request

	// Signature is an optional PNG or JPEG of the bearer's signature.
	Signature []byte
}

type Renderer struct {
	office    types.Office
	encodeQR  QREncoder
	now       func() time.Time
	leftSeal  []byte
	rightSeal []byte
}

type Option func(*Renderer)

func WithQREncoder(enc QREncoder) Option {
	return func(r *Renderer) { r.encodeQR = enc }
}

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func WithSeals(left, right []byte) Option {
	return func(r *Renderer) {
		r.leftSeal = left
		r.rightSeal = right
	}
}

// NewRenderer loads the seal images named in office. Missing paths fall back to a drawn seal.
func NewRenderer(office types.Office, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		office:   office,
		encodeQR: EncodeQR,
		now:      time.Now,
	}

	var err error
	if office.LeftSealPath != "" {
		if r.leftSeal, err = os.ReadFile(office.LeftSealPath); err != nil {
			return nil, fmt.Errorf("read left seal: %w", err)
		}
	}
	if office.RightSealPath != "" {
		if r.rightSeal, err = os.ReadFile(office.RightSealPath); err != nil {
			return nil, fmt.Errorf("read right seal: %w", err)
		}
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Render produces the certificate for an approved request. Any failure is returned as a
// *types.RenderError and no partial artifact is produced.
func (r *Renderer) Render(in Input) (*Artifact, error) {
	req := in.Request
	if req == nil {
		return nil, &types.RenderError{Stage: "input", Err: fmt.Errorf("request is nil")}
	}
	if !req.Type.Valid() {
		return nil, &types.RenderError{Stage: "input", Err: types.ErrInvalidDocumentType}
	}

	issued := r.now()
	refNo := ReferenceNumber(req.Type, issued.Year(), req.ID)

	qrPNG, err := r.encodeQR(refNo, QRSize)
	if err != nil {
		return nil, &types.RenderError{Stage: "qr", Err: err}
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(string(req.Type), true)
	pdf.SetAuthor(fmt.Sprintf("Barangay %s", r.office.Barangay), true)
	pdf.SetCreationDate(issued)
	pdf.AddPage()

	l := &layout{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	r.drawWatermark(l)
	r.drawHeader(l)
	l.title(strings.ToUpper(string(req.Type)))
	l.paragraph("To Whom It May Concern:", "B")
	for _, p := range bodyParagraphs(req, r.office) {
		l.paragraph(p, "")
	}
	l.paragraph(fmt.Sprintf("Given this %s at Barangay %s, %s, %s.",
		IssuanceDate(issued), r.office.Barangay, r.office.Municipality, r.office.Province), "")
	r.drawSignatures(l, req, in.Signature)
	r.drawFooter(l, issued, refNo, qrPNG)

	if pdf.Err() {
		return nil, &types.RenderError{Stage: "layout", Err: pdf.Error()}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &types.RenderError{Stage: "output", Err: err}
	}

	return &Artifact{
		Filename:        Filename(req),
		ReferenceNumber: refNo,
		ContentType:     "application/pdf",
		Bytes:           buf.Bytes(),
	}, nil
}

type layout struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (l *layout) centered(text, style string, size, height float64) {
	l.pdf.SetFont("Times", style, size)
	l.pdf.SetX(margin)
	l.pdf.CellFormat(contentWide, height, l.tr(text), "", 1, "C", false, 0, "")
}

func (l *layout) title(text string) {
	l.pdf.Ln(24)
	l.centered(text, "B", 18, 24)
	l.pdf.Ln(18)
}

func (l *layout) paragraph(text, style string) {
	l.pdf.SetFont("Times", style, 12)
	l.pdf.SetX(margin)
	l.pdf.MultiCell(contentWide, 18, l.tr(text), "", "J", false)
	l.pdf.Ln(8)
}

func (r *Renderer) drawHeader(l *layout) {
	pdf := l.pdf
	top := margin

	r.drawSeal(l, "seal-left", r.leftSeal, margin, top)
	r.drawSeal(l, "seal-right", r.rightSeal, pageWidth-margin-sealSize, top)

	pdf.SetY(top)
	l.centered("Republic of the Philippines", "", 11, 15)
	l.centered("Province of "+r.office.Province, "", 11, 15)
	l.centered("Municipality of "+r.office.Municipality, "", 11, 15)
	l.centered("Barangay "+r.office.Barangay, "B", 13, 17)
	l.centered("OFFICE OF THE PUNONG BARANGAY", "B", 11, 15)

	y := top + sealSize + 12
	pdf.SetLineWidth(1.5)
	pdf.Line(margin, y, pageWidth-margin, y)
	pdf.SetLineWidth(0.5)
	pdf.Line(margin, y+3, pageWidth-margin, y+3)
	pdf.SetY(y + 6)
}

func (r *Renderer) drawSeal(l *layout, name string, img []byte, x, y float64) {
	if len(img) > 0 {
		if r.placeImage(l.pdf, name, img, x, y, sealSize, sealSize) {
			return
		}
	}

	cx, cy := x+sealSize/2, y+sealSize/2
	l.pdf.SetDrawColor(40, 60, 120)
	l.pdf.SetLineWidth(1.2)
	l.pdf.Circle(cx, cy, sealSize/2, "D")
	l.pdf.SetLineWidth(0.6)
	l.pdf.Circle(cx, cy, sealSize/2-6, "D")
	l.pdf.SetFont("Helvetica", "B", 7)
	l.pdf.SetTextColor(40, 60, 120)
	label := l.tr("BRGY. " + strings.ToUpper(r.office.Barangay))
	l.pdf.Text(cx-l.pdf.GetStringWidth(label)/2, cy+2, label)
	l.pdf.SetTextColor(0, 0, 0)
	l.pdf.SetDrawColor(0, 0, 0)
}

// placeImage reports false when the bytes are not a PNG or JPEG.
func (r *Renderer) placeImage(pdf *fpdf.Fpdf, name string, img []byte, x, y, w, h float64) bool {
	imageType := imageTypeOf(img)
	if imageType == "" {
		return false
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return true
}

func imageTypeOf(img []byte) string {
	switch http.DetectContentType(img) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	}
	return ""
}

func (r *Renderer) drawSignatures(l *layout, req *types.Request, signature []byte) {
	pdf := l.pdf
	pdf.Ln(30)

	y := pdf.GetY()
	colWidth := contentWide / 2

	if len(signature) > 0 {
		r.placeImage(pdf, "bearer-signature", signature, margin+colWidth/2-50, y-10, 100, 36)
	}

	lineY := y + 30
	pdf.Line(margin+20, lineY, margin+colWidth-20, lineY)
	pdf.Line(margin+colWidth+20, lineY, pageWidth-margin-20, lineY)

	pdf.SetY(lineY + 2)
	pdf.SetFont("Times", "B", 12)
	pdf.SetX(margin)
	pdf.CellFormat(colWidth, 16, l.tr(strings.ToUpper(req.FullName())), "", 0, "C", false, 0, "")
	pdf.CellFormat(colWidth, 16, l.tr("Hon. "+r.office.PunongBarangay), "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "I", 11)
	pdf.SetX(margin)
	pdf.CellFormat(colWidth, 14, "Signature of Bearer", "", 0, "C", false, 0, "")
	pdf.CellFormat(colWidth, 14, "Punong Barangay", "", 1, "C", false, 0, "")
}

func (r *Renderer) drawFooter(l *layout, issued time.Time, refNo string, qrPNG []byte) {
	pdf := l.pdf
	top := pageHeight - margin - qrPlacedSize - 20

	ctc := r.office.CTCNumber
	if ctc == "" {
		ctc = "____________"
	}

	pdf.SetFont("Times", "", 10)
	lines := []string{
		"CTC No.: " + ctc,
		"ISSUED at: " + r.office.IssuedAt,
		"ISSUED on: " + issued.Format("January 2, 2006"),
		"",
		"Issued By: Sec. " + r.office.Secretary,
		"Barangay Secretary",
	}
	for i, line := range lines {
		pdf.Text(margin, top+float64(i)*14, l.tr(line))
	}

	qrX := pageWidth - margin - qrPlacedSize
	if !r.placeImage(pdf, "reference-qr", qrPNG, qrX, top-10, qrPlacedSize, qrPlacedSize) {
		pdf.SetError(fmt.Errorf("qr image is not a png"))
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	label := "REF#: " + refNo
	pdf.Text(qrX+qrPlacedSize/2-pdf.GetStringWidth(label)/2, top+qrPlacedSize+2, label)
}

func (r *Renderer) drawWatermark(l *layout) {
	pdf := l.pdf
	pdf.SetAlpha(0.07, "Normal")
	pdf.SetFont("Helvetica", "B", 64)
	pdf.SetTextColor(30, 60, 140)

	for _, y := range []float64{220, 470, 720} {
		for _, x := range []float64{90, 330} {
			pdf.TransformBegin()
			pdf.TransformRotate(35, x, y)
			pdf.Text(x, y, watermarkText)
			pdf.TransformEnd()
		}
	}

	pdf.SetAlpha(1, "Normal")
	pdf.SetTextColor(0, 0, 0)
}
