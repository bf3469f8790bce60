package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// displayICE displays an internal error message.
func (r *Reporter) displayICE(message string) {
	fmt.Fprintln(r.out, ErrorStyleBG.Sprint("Internal Error")+" "+ErrorColorFG.Sprint(message))
	fmt.Fprint(r.out, "This error was not supposed to happen: the code generator is in an inconsistent state.\n\n")
}

// displayFatal displays a fatal error message.
func (r *Reporter) displayFatal(message string) {
	fmt.Fprint(r.out, "\n")
	fmt.Fprintln(r.out, ErrorStyleBG.Sprint("Fatal Error")+" "+ErrorColorFG.Sprint(message))
}

// displayTagged prints a tag in the given background style followed by the
// message in the matching foreground colour.
func (r *Reporter) displayTagged(tagStyle *pterm.Style, msgColor pterm.Color, tag, msg string) {
	fmt.Fprintln(r.out, tagStyle.Sprint(tag)+" "+msgColor.Sprint(msg))
}

// displayBlock prints a tagged, multi-line body.  The body is indented so it
// stands apart from surrounding diagnostics.
func (r *Reporter) displayBlock(tag, body string) {
	fmt.Fprintln(r.out, InfoStyleBG.Sprint(tag))
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		fmt.Fprintln(r.out, "  "+line)
	}
}

// -----------------------------------------------------------------------------

const maxPhaseLength = len("Optimizing")

// displayBeginPhase records the beginning of a code generation phase.
func (r *Reporter) displayBeginPhase(phase string) {
	r.phase = phase
	r.phaseStart = time.Now()
}

// displayEndPhase displays the end of a code generation phase along with its
// elapsed time.
func (r *Reporter) displayEndPhase(success bool) {
	if r.phase == "" {
		return
	}

	padding := 0
	if len(r.phase) < maxPhaseLength {
		padding = maxPhaseLength - len(r.phase)
	}
	phaseText := r.phase + strings.Repeat(" ", padding+2)

	if success {
		fmt.Fprintln(
			r.out,
			SuccessStyleBG.Sprint("Done")+" "+phaseText+
				fmt.Sprintf("(%.3fs)", time.Since(r.phaseStart).Seconds()),
		)
	} else {
		fmt.Fprintln(r.out, ErrorStyleBG.Sprint("Fail")+" "+phaseText)
	}

	r.phase = ""
}
