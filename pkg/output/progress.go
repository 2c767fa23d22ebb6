package output

import (
	"io"
	"os"
	"runtime"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"
)

const (
	defaultWidth = 120

	uploadTemplate = `{{string . "prefix"}} {{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{speed . }}`
)

// refreshRate returns the bar redraw interval based on OS
// Windows terminals have higher latency with ANSI sequences, so we use a longer interval
func refreshRate() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// TermWidth returns the width of the terminal behind w, or 120 when w is
// a pipe or a file
func TermWidth(w io.Writer) int {
	if file, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

// UploadBar draws the progress of one upload. Without a terminal it
// draws nothing.
type UploadBar struct {
	bar *pb.ProgressBar
}

// NewUploadBar prepares a bar for name. size is the content length, or -1
// when unknown. enabled false (or a non-terminal w) yields a silent bar.
func NewUploadBar(w io.Writer, name string, size int64, enabled bool) *UploadBar {
	if !enabled || !IsTerminal(w) {
		return &UploadBar{}
	}
	total := size
	if total < 0 {
		total = 0
	}
	bar := pb.New64(total)
	bar.SetTemplateString(uploadTemplate)
	bar.SetWriter(w)
	bar.SetMaxWidth(TermWidth(w))
	bar.SetRefreshRate(refreshRate())
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", name)
	return &UploadBar{bar: bar}
}

// Wrap starts the bar and returns a reader advancing it
func (u *UploadBar) Wrap(r io.Reader) io.Reader {
	if u.bar == nil {
		return r
	}
	u.bar.Start()
	return u.bar.NewProxyReader(r)
}

// Finish stops redrawing and leaves the final state on screen
func (u *UploadBar) Finish() {
	if u.bar == nil || !u.bar.IsStarted() {
		return
	}
	u.bar.Finish()
}

// Active reports whether the bar draws anything
func (u *UploadBar) Active() bool {
	return u.bar != nil
}
