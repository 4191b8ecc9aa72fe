package display

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/tauraamui/duocam/pkg/imagetext"
	"github.com/tauraamui/duocam/pkg/log"
	"golang.org/x/image/draw"
)

// Alerter shows a message and returns once the user has seen it.
type Alerter interface {
	Alert(message string)
}

type WriterAlerter struct {
	Out io.Writer
}

func (a WriterAlerter) Alert(message string) {
	if _, err := fmt.Fprintf(a.Out, "\n%s\n\n", message); err != nil {
		log.Error("Unable to show alert: %v", err)
	}
}

const (
	alertWidth    = 640
	alertTextSize = 18
	alertPadding  = 24
)

var alertBackground = color.RGBA{R: 32, G: 32, B: 32, A: 255}

// WindowAlerter opens a dedicated window with the message and blocks
// until any key is pressed in it.
type WindowAlerter struct {
	Title string
}

func (a WindowAlerter) Alert(message string) {
	img, err := RenderAlert(message, alertWidth)
	if err != nil {
		log.Error("Unable to render alert: %v. Alert: %s", err, message)
		return
	}

	w := NewWindow(a.Title)
	defer w.Close()
	if err := w.Show(img); err != nil {
		log.Error("Unable to show alert window: %v. Alert: %s", err, message)
		return
	}
	w.WaitKey(0)
}

// RenderAlert lays message out as wrapped lines on a dark card of
// the given width.
func RenderAlert(message string, width int) (*image.RGBA, error) {
	lines, lineHeight, err := WrapText(message, alertTextSize, width-alertPadding*2)
	if err != nil {
		return nil, err
	}

	height := alertPadding*2 + len(lines)*lineHeight
	card := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(card, card.Bounds(), image.NewUniform(alertBackground), image.Point{}, draw.Src)

	for i, line := range lines {
		if err := imagetext.Draw(card, image.White, alertPadding, alertPadding+i*lineHeight, alertTextSize, line); err != nil {
			return nil, err
		}
	}
	return card, nil
}

// WrapText breaks text on spaces so no line is wider than maxWidth
// pixels, unless a single word already is.
func WrapText(text string, size float64, maxWidth int) ([]string, int, error) {
	_, lineHeight, err := imagetext.Measure(size, "Hg")
	if err != nil {
		return nil, 0, err
	}
	lineHeight = lineHeight * 3 / 2

	lines := []string{}
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if len(current) > 0 {
			candidate = current + " " + word
		}
		w, _, err := imagetext.Measure(size, candidate)
		if err != nil {
			return nil, 0, err
		}
		if w > maxWidth && len(current) > 0 {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines, lineHeight, nil
}
