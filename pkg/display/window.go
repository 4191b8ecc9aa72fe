package display

import (
	"image"
	"math"

	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// aspectBase is the width reported for a window whose true pixel size
// is unknown; only the ratio of the reported size is meaningful.
const aspectBase = 1000

// Window is a HighGUI window. All methods must run on the thread that
// created it.
type Window struct {
	title string
	win   *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{title: title, win: gocv.NewWindow(title)}
}

func (w *Window) RequestFullscreen() error {
	w.win.SetWindowProperty(gocv.WindowPropertyFullscreen, gocv.WindowFullscreen)
	if !w.IsFullscreen() {
		return xerror.Errorf("window [%s] did not enter fullscreen", w.title)
	}
	return nil
}

func (w *Window) IsFullscreen() bool {
	return w.win.GetWindowProperty(gocv.WindowPropertyFullscreen) == float64(gocv.WindowFullscreen)
}

// Dimensions reports a size with the same aspect ratio as the window.
func (w *Window) Dimensions() (videoframe.Dimensions, error) {
	d, ok := viewportFromAspectRatio(w.win.GetWindowProperty(gocv.WindowPropertyAspectRatio))
	if !ok {
		return videoframe.Dimensions{}, xerror.Errorf("window [%s] has no usable aspect ratio", w.title)
	}
	return d, nil
}

// viewportFromAspectRatio turns a width/height ratio into a size. GTK
// reports the real ratio. Qt reports its keep-ratio flag, 0 or 1, which
// says nothing about shape, so exactly 1 is treated as unknown too and
// callers fall back to the configured viewport.
func viewportFromAspectRatio(ratio float64) (videoframe.Dimensions, bool) {
	if ratio <= 0 || ratio == 1 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return videoframe.Dimensions{}, false
	}
	return videoframe.Dimensions{W: aspectBase, H: int(math.Round(aspectBase / ratio))}, true
}

func (w *Window) Show(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return xerror.Errorf("unable to convert frame for display: %w", err)
	}
	defer mat.Close()
	w.win.IMShow(mat)
	return nil
}

func (w *Window) WaitKey(delay int) int {
	return w.win.WaitKey(delay)
}

func (w *Window) IsOpen() bool {
	return w.win.IsOpen()
}

func (w *Window) Close() error {
	return w.win.Close()
}
