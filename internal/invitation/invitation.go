// Package invitation renders the printable A4 invitation card handed to
// registered guests.
package invitation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/qrcode"
)

const (
	margin       = 10.0
	qrSize       = 80.0
	qrBorder     = 5.0
	tokenPreview = 20
)

var ErrMissingToken = errors.New("invitation: user has no QR token")

// Event holds the texts printed on every card.
type Event struct {
	Title        string
	Subtitle     string
	Date         string
	Venue        string
	Instructions string
	Footer       string
	// LogoPath is an optional PNG or JPEG drawn above the header.
	LogoPath string
}

type Renderer struct {
	event Event
}

func NewRenderer(event Event) *Renderer {
	if event.Title == "" {
		event.Title = "Carte d'Invitation"
	}
	if event.Instructions == "" {
		event.Instructions = "[!] Ce QR code est obligatoire pour le check-in a l'evenement. Veuillez le telecharger et le presenter a votre arrivee."
	}
	return &Renderer{event: event}
}

// Render draws the card for u. The user must already carry a QR token.
func (r *Renderer) Render(u *model.User) ([]byte, error) {
	if u.QRCode == nil || *u.QRCode == "" {
		return nil, ErrMissingToken
	}
	token := *u.QRCode
	png, err := qrcode.PNG(token)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetCreator(r.event.Title, true)
	pdf.SetTitle(r.event.Title+" - "+u.FullName(), true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	width := pageW - 2*margin
	y := margin

	if r.drawLogo(pdf, pageW, y) {
		y += 15
	}
	y += 5

	// header band
	const headerH = 25.0
	pdf.SetFillColor(37, 99, 235)
	pdf.Rect(margin, y, width, headerH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetY(y + 5)
	pdf.CellFormat(0, 8, tr(r.event.Title), "", 1, "C", false, 0, "")
	if r.event.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.SetY(y + 15)
		pdf.CellFormat(0, 6, tr(r.event.Subtitle), "", 1, "C", false, 0, "")
	}
	y += headerH + 10

	// guest
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetY(y)
	pdf.CellFormat(0, 8, tr(guestName(u)), "", 1, "C", false, 0, "")
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetY(y)
	pdf.CellFormat(0, 6, u.CodeOrDefault(), "", 1, "C", false, 0, "")
	y += 6
	if u.Email != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.SetTextColor(107, 114, 128)
		pdf.SetY(y)
		pdf.CellFormat(0, 6, tr(u.Email), "", 1, "C", false, 0, "")
		y += 6
	}
	y += 10

	y = r.drawDateVenue(pdf, tr, pageW, width, y)

	// QR section
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetY(y)
	pdf.CellFormat(0, 8, tr("QR Code d'Invitation"), "", 1, "C", false, 0, "")
	y += 8
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(75, 85, 99)
	pdf.SetY(y)
	pdf.CellFormat(0, 6, tr("Présentez ce QR code lors de l'enregistrement"), "", 1, "C", false, 0, "")
	y += 10

	qrX := (pageW - qrSize) / 2
	pdf.SetFillColor(209, 213, 219)
	pdf.Rect(qrX-qrBorder, y-qrBorder, qrSize+2*qrBorder, qrSize+2*qrBorder, "F")
	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(qrX, y, qrSize, qrSize, "F")
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", qrX, y, qrSize, qrSize, false, opts, 0, "")
	y += qrSize + 2*qrBorder + 8

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(107, 114, 128)
	pdf.SetY(y)
	pdf.CellFormat(0, 5, "Code: "+preview(token)+"...", "", 1, "C", false, 0, "")
	y += 10

	// instructions
	const bannerH = 15.0
	pdf.SetFillColor(254, 252, 232)
	pdf.Rect(margin, y, width, bannerH, "F")
	pdf.SetTextColor(133, 77, 14)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(margin, y+4)
	pdf.MultiCell(width, 5, tr(r.event.Instructions), "", "C", false)
	y += bannerH + 10

	if r.event.Footer != "" {
		const footerH = 12.0
		pdf.SetFillColor(249, 250, 251)
		pdf.Rect(margin, y, width, footerH, "F")
		pdf.SetTextColor(75, 85, 99)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetY(y + 4)
		pdf.CellFormat(0, 5, tr(r.event.Footer), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invitation: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawDateVenue(pdf *fpdf.Fpdf, tr func(string) string, pageW, width, y float64) float64 {
	if r.event.Date == "" && r.event.Venue == "" {
		return y
	}
	const boxH = 35.0
	boxW := width - 20
	boxX := margin + 10

	pdf.SetFont("Helvetica", "B", 14)
	widest := pdf.GetStringWidth(tr(r.event.Date))
	if w := pdf.GetStringWidth(tr(r.event.Venue)); w > widest {
		widest = w
	}
	if widest > boxW-10 {
		boxW = widest + 10
		boxX = (pageW - boxW) / 2
	}

	pdf.SetFillColor(239, 246, 255)
	pdf.Rect(boxX, y, boxW, boxH, "F")
	pdf.SetTextColor(0, 0, 0)
	rows := []struct {
		label, value string
		offset       float64
	}{
		{"Date", r.event.Date, 5},
		{"Lieu", r.event.Venue, 22},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(boxX, y+row.offset)
		pdf.CellFormat(boxW, 6, row.label, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(boxX, y+row.offset+7)
		pdf.MultiCell(boxW, 7, tr(row.value), "", "C", false)
	}
	return y + boxH + 15
}

func (r *Renderer) drawLogo(pdf *fpdf.Fpdf, pageW, y float64) bool {
	if r.event.LogoPath == "" {
		return false
	}
	f, err := os.Open(r.event.LogoPath)
	if err != nil {
		log.Warn().Err(err).Str("path", r.event.LogoPath).Msg("Invitation logo unavailable")
		return false
	}
	defer f.Close()

	imageType := strings.TrimPrefix(strings.ToUpper(filepath.Ext(r.event.LogoPath)), ".")
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("logo", opts, f)
	if pdf.Err() {
		log.Warn().Err(pdf.Error()).Str("path", r.event.LogoPath).Msg("Invitation logo unreadable")
		pdf.ClearError()
		return false
	}
	const logoW = 40.0
	pdf.ImageOptions("logo", (pageW-logoW)/2, y, logoW, 0, false, opts, 0, "")
	return true
}

// guestName prints "last first", falling back to the account name.
func guestName(u *model.User) string {
	var parts []string
	if u.LastName != nil {
		parts = append(parts, *u.LastName)
	}
	if u.FirstName != nil {
		parts = append(parts, *u.FirstName)
	}
	if name := strings.TrimSpace(strings.Join(parts, " ")); name != "" {
		return name
	}
	return u.FullName()
}

func preview(token string) string {
	if len(token) <= tokenPreview {
		return token
	}
	return token[:tokenPreview]
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]`)

// Filename is the download name for u's card.
func Filename(u *model.User) string {
	return "invitation-" + nonSlug.ReplaceAllString(strings.ToLower(u.FullName()), "-") + ".pdf"
}
