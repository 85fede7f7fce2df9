// Package certificate renders PNG completion certificates.
package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// ErrRender is returned when a certificate image cannot be produced.
var ErrRender = errors.New("certificate render failed")

const (
	canvasWidth  = 1000
	canvasHeight = 700

	accentColor  = "#4F46E5"
	headingColor = "#1F2937"
	bodyColor    = "#4B5563"

	largePoints  = 48
	mediumPoints = 36
	smallPoints  = 24
)

// Renderer draws certificates on a fixed-layout canvas. Fonts are resolved
// from an ordered list of candidate TTF paths; when none loads, a built-in
// basic face is used for every size tier.
type Renderer struct {
	fontPaths []string
}

// NewRenderer constructs a Renderer with the given font candidates.
func NewRenderer(fontPaths []string) *Renderer {
	return &Renderer{fontPaths: fontPaths}
}

type faceSet struct {
	large    font.Face
	medium   font.Face
	small    font.Face
	scalable bool
}

// loadFaces tries each candidate path at all three point sizes and keeps the
// first path that loads for every size.
func (r *Renderer) loadFaces() faceSet {
	for _, path := range r.fontPaths {
		large, err := gg.LoadFontFace(path, largePoints)
		if err != nil {
			continue
		}
		medium, err := gg.LoadFontFace(path, mediumPoints)
		if err != nil {
			continue
		}
		small, err := gg.LoadFontFace(path, smallPoints)
		if err != nil {
			continue
		}
		return faceSet{large: large, medium: medium, small: small, scalable: true}
	}
	face := basicfont.Face7x13
	return faceSet{large: face, medium: face, small: face, scalable: false}
}

// Render produces the PNG certificate for one participant.
func (r *Renderer) Render(name, sessionName, date string) ([]byte, error) {
	dc := gg.NewContext(canvasWidth, canvasHeight)

	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	dc.SetHexColor(accentColor)
	dc.SetLineWidth(3)
	dc.DrawRectangle(40, 40, canvasWidth-80, canvasHeight-80)
	dc.Stroke()
	dc.SetLineWidth(1)
	dc.DrawRectangle(50, 50, canvasWidth-100, canvasHeight-100)
	dc.Stroke()

	faces := r.loadFaces()
	lines := []struct {
		text  string
		y     float64
		color string
		face  font.Face
	}{
		{"Certificate of Completion", 150, headingColor, faces.large},
		{"This certifies that", 250, bodyColor, faces.small},
		{name, 300, headingColor, faces.medium},
		{"has successfully completed", 350, bodyColor, faces.small},
		{sessionName, 400, headingColor, faces.medium},
		{"Date: " + date, 500, bodyColor, faces.small},
	}

	const centerX = canvasWidth / 2
	for _, line := range lines {
		dc.SetHexColor(line.color)
		dc.SetFontFace(line.face)
		if faces.scalable {
			dc.DrawStringAnchored(line.text, centerX, line.y, 0.5, 0.5)
		} else {
			// The basic face has no anchored metrics worth trusting; center
			// by measured width instead.
			w, _ := dc.MeasureString(line.text)
			dc.DrawString(line.text, centerX-w/2, line.y)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// FileName builds the download name for a participant's certificate:
// lowercased, spaces replaced with underscores.
func FileName(participantName string) string {
	slug := strings.ReplaceAll(strings.ToLower(participantName), " ", "_")
	return "certificate_" + slug + ".png"
}
