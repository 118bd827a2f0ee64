package render

import (
	"bytes"
	"fmt"
	"image/png"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// RowsPerCertificatePage is the fixed row capacity of one certificate
// page; additional recipients overflow onto further pages.
const RowsPerCertificatePage = 4

const (
	certTitle        = "Signing Certificate"
	certFontSize     = 10
	certCellIndent   = 20
	certTimeLayout   = "2006-01-02 15:04:05 MST"
	certHeaderSigner = "Signer Events"
	certHeaderSig    = "Signature"
	certHeaderTime   = "Timestamp"
)

// CertificateRow is one recipient's line in the signing certificate.
// Timestamp pointers are nil when the audit log holds no matching
// event (viewer and CC roles routinely lack some); those cells render
// blank rather than failing.
type CertificateRow struct {
	Name          string
	Email         string
	Role          string
	SigningReason string
	AuthLevel     string
	SignatureID   string
	SignaturePNG  []byte
	SignatureText string
	IPAddress     string
	SentAt        *time.Time
	ViewedAt      *time.Time
	SignedAt      *time.Time
}

// Certificate carries the rows to render, already in the originating
// query's order. The composer never re-sorts them, so repeated
// generation over the same audit log is reproducible.
type Certificate struct {
	Rows []CertificateRow
}

// CertificatePageCount returns the number of trailing pages needed for
// the given row count.
func CertificatePageCount(rows int) int {
	if rows <= 0 {
		return 0
	}
	return (rows + RowsPerCertificatePage - 1) / RowsPerCertificatePage
}

// AppendCertificate appends the signing-certificate pages to the PDF
// buffer and returns the updated buffer.
func (r *Renderer) AppendCertificate(pdf []byte, cert Certificate) ([]byte, error) {
	for _, row := range cert.Rows {
		if row.SignaturePNG == nil && row.SignatureText != "" {
			if err := r.ensureFonts(); err != nil {
				return nil, err
			}
			break
		}
	}

	pages := CertificatePageCount(len(cert.Rows))
	if pages == 0 {
		return pdf, nil
	}

	base, err := r.PageCount(pdf)
	if err != nil {
		return nil, err
	}

	pdf, err = r.appendBlankPages(pdf, base, pages)
	if err != nil {
		return nil, err
	}

	pageW, pageH, err := r.pageSize(pdf, base+1)
	if err != nil {
		return nil, err
	}
	layout := newCertLayout(pageW, pageH)

	var stamps []stamp
	for p := 0; p < pages; p++ {
		stamps = append(stamps, r.certPageStamps(base+1+p, layout)...)
	}
	for i, row := range cert.Rows {
		page := base + 1 + i/RowsPerCertificatePage
		slot := i % RowsPerCertificatePage
		rowStamps, err := r.certRowStamps(page, slot, layout, row)
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, rowStamps...)
	}

	return r.applyStamps(pdf, stamps)
}

// appendBlankPages inserts n blank pages after page last.
func (r *Renderer) appendBlankPages(pdf []byte, last, n int) ([]byte, error) {
	for i := 0; i < n; i++ {
		var buf bytes.Buffer
		sel := []string{strconv.Itoa(last + i)}
		if err := api.InsertPages(bytes.NewReader(pdf), &buf, sel, false, nil, r.conf); err != nil {
			return nil, fmt.Errorf("append certificate page: %w", err)
		}
		pdf = buf.Bytes()
	}
	return pdf, nil
}

// certLayout fixes the certificate table geometry as fractions of the
// page size, mirrored across every certificate page.
type certLayout struct {
	pageW, pageH float64
	tableX       float64
	tableW       float64
	titleY       float64
	headerY      float64
	firstRowY    float64
	colW         float64
	rowH         float64
}

func newCertLayout(pageW, pageH float64) certLayout {
	tableH := pageH * 0.85
	titleCellH := pageH * 0.04
	headerY := pageH * 0.9

	return certLayout{
		pageW:     pageW,
		pageH:     pageH,
		tableX:    pageW * 0.07,
		tableW:    pageW * 0.9,
		titleY:    pageH * 0.95,
		headerY:   headerY,
		firstRowY: headerY - titleCellH/2,
		colW:      pageW * 0.9 / 3,
		rowH:      (tableH - titleCellH) / RowsPerCertificatePage,
	}
}

// certPageStamps draws the static chrome of one certificate page.
func (r *Renderer) certPageStamps(page int, l certLayout) []stamp {
	font := r.fontName(FamilyStandard)

	return []stamp{
		textStamp(page, certTitle, font, certFontSize+4, l.pageW*0.05, l.titleY),
		textStamp(page, certHeaderSigner, font, certFontSize, l.tableX, l.headerY),
		textStamp(page, certHeaderSig, font, certFontSize, l.tableX+l.colW, l.headerY),
		textStamp(page, certHeaderTime, font, certFontSize, l.tableX+l.colW*2, l.headerY),
	}
}

// certRowStamps draws one recipient row into the given slot (0-3).
func (r *Renderer) certRowStamps(page, slot int, l certLayout, row CertificateRow) ([]stamp, error) {
	font := r.fontName(FamilyStandard)
	top := l.firstRowY - l.rowH*float64(slot)

	identity := fmt.Sprintf(
		"%s\n%s\nSecurity Level: %s",
		row.Name, row.Email, row.AuthLevel,
	)
	events := fmt.Sprintf(
		"Sent: %s\nViewed: %s\nSigned: %s",
		certTime(row.SentAt), certTime(row.ViewedAt), certTime(row.SignedAt),
	)
	detail := fmt.Sprintf(
		"Signature ID: %s\nIP Address: %s\nReason: %s",
		row.SignatureID, row.IPAddress, row.SigningReason,
	)

	stamps := []stamp{
		textStamp(page, identity, font, certFontSize, l.tableX, top-certCellIndent),
		textStamp(page, events, font, certFontSize, l.tableX+l.colW*2, top-certCellIndent),
	}

	sigW := l.colW / 2
	sigH := l.rowH / 4

	switch {
	case row.SignaturePNG != nil:
		cfg, err := png.DecodeConfig(bytes.NewReader(row.SignaturePNG))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
		}
		scale := sigW / float64(cfg.Width)
		stamps = append(
			stamps,
			imageStamp(page, row.SignaturePNG, scale, l.tableX+l.colW, top-sigH),
		)
	case row.SignatureText != "":
		stamps = append(
			stamps,
			textStamp(page, row.SignatureText, r.fontName(FamilyHandwriting), certFontSize+8, l.tableX+l.colW, top-sigH),
		)
	}

	stamps = append(
		stamps,
		textStamp(page, detail, font, certFontSize, l.tableX+l.colW, top-sigH-certCellIndent*1.5),
	)
	return stamps, nil
}

// certTime formats an optional timestamp, rendering blank when absent.
func certTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(certTimeLayout)
}
