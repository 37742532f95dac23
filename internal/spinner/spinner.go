package spinner

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// Interval is the cosmetic frame cadence. It is deliberately much faster
// than any logical check interval so the animation stays smooth between
// network waits.
const Interval = 100 * time.Millisecond

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

var waitingPhrases = []string{
	"Brewing logs",
	"Stewing updates",
	"Cooking recap",
	"Crunching entries",
	"Stirring summary",
	"Wrangling notes",
	"Jamming highlights",
	"Squeezing reports",
	"Glazing commits",
	"Mashing bullets",
	"Churning work",
	"Entering digest mode",
	"Pureeing patches",
	"Simmering lines",
	"Rounding up recap",
	"Whirling worklogs",
	"Twirling tasks",
	"Spinning summaries",
	"Waltzing through work",
	"Winking at work",
}

// Spinner renders a single-line liveness indicator. It only animates on a
// terminal; on any other writer every method is a no-op so piped output
// stays clean.
type Spinner struct {
	w       io.Writer
	phrase  string
	start   time.Time
	index   int
	enabled bool
	dirty   bool
}

// New builds a spinner writing to w with a randomly chosen waiting phrase.
func New(w io.Writer) *Spinner {
	return &Spinner{
		w:       w,
		phrase:  waitingPhrases[rand.Intn(len(waitingPhrases))],
		start:   time.Now(),
		enabled: writerIsTerminal(w),
	}
}

// WithPhrase overrides the waiting phrase.
func (s *Spinner) WithPhrase(phrase string) *Spinner {
	if strings.TrimSpace(phrase) != "" {
		s.phrase = phrase
	}
	return s
}

// Tick advances and redraws the animation frame in place.
func (s *Spinner) Tick() {
	if !s.enabled {
		return
	}
	frame := frames[s.index%len(frames)]
	seconds := int(time.Since(s.start).Seconds())
	fmt.Fprintf(s.w, "\r%c %s... (%ds)", frame, s.phrase, seconds)
	s.index++
	s.dirty = true
}

// Clear erases the indicator line. It must run on every coordinator state
// transition and at terminal states so no stale text remains on the display.
func (s *Spinner) Clear() {
	if !s.enabled || !s.dirty {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", 80))
	s.dirty = false
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
