// Package export renders storyboards to printable documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var ErrEmptyBoard = errors.New("export: storyboard has no scenes")

type Scene struct {
	Number     int      `json:"number"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Prompt     string   `json:"prompt"`
	ImageURL   string   `json:"image_url,omitempty"`
	Characters []string `json:"characters"`
}

// Board is the printable form of a storyboard.
type Board struct {
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

const (
	margin    = 48.0
	bodyWidth = 595.28 - 2*margin // A4 portrait in points
	fontBody  = 11.0
	lineStep  = 15.0
)

// PDF writes one A4 page per scene, in scene order as given.
func PDF(w io.Writer, board Board) error {
	if len(board.Scenes) == 0 {
		return ErrEmptyBoard
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(board.Title, true)
	pdf.SetCreator("storyboard", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, s := range board.Scenes {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(bodyWidth, lineStep, tr(board.Title), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetTextColor(0, 0, 0)
		heading := fmt.Sprintf("Scene %d", s.Number)
		if s.Title != "" {
			heading += ": " + s.Title
		}
		pdf.MultiCell(bodyWidth, 22, tr(heading), "", "L", false)
		pdf.Ln(6)

		frame(pdf, tr, s.ImageURL)

		section(pdf, tr, "Summary", s.Summary)
		section(pdf, tr, "Prompt", s.Prompt)
		if len(s.Characters) > 0 {
			section(pdf, tr, "Characters", strings.Join(s.Characters, ", "))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// frame draws the image placeholder box with the image url inside.
func frame(pdf *gofpdf.Fpdf, tr func(string) string, imageURL string) {
	const height = 270.0

	x, y := pdf.GetXY()
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y, bodyWidth, height, "D")

	label := "No image generated yet."
	if imageURL != "" {
		label = imageURL
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.SetXY(x+8, y+height/2-lineStep/2)
	pdf.MultiCell(bodyWidth-16, lineStep, tr(label), "", "C", false)

	pdf.SetXY(x, y+height+12)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, label, text string) {
	if text == "" {
		return
	}

	pdf.SetFont("Helvetica", "B", fontBody)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(bodyWidth, lineStep, label, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", fontBody)
	pdf.MultiCell(bodyWidth, lineStep, tr(text), "", "L", false)
	pdf.Ln(8)
}
