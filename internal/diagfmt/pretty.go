// Package diagfmt renders diagnostic bags for terminals and tools.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"irforge/internal/diag"
)

// Pretty writes one block per diagnostic in bag order (call bag.Sort first):
//
//	error[IR1003] main: store type mismatch
//	  = note: define main: statement 2: ...
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	if bag == nil {
		return
	}
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan, color.Bold),
	}
	subjColor := color.New(color.Bold)
	noteColor := color.New(color.FgBlue)
	for _, c := range sevColor {
		setColor(c, opts.Color)
	}
	setColor(subjColor, opts.Color)
	setColor(noteColor, opts.Color)

	for _, d := range bag.Items() {
		sev := sevColor[d.Severity]
		if sev == nil {
			sev = sevColor[diag.SevError]
		}
		head := sev.Sprintf("%s[%s]", d.Severity, d.Code.ID())
		if d.Subject != "" {
			fmt.Fprintf(w, "%s %s: %s\n", head, subjColor.Sprint(d.Subject), d.Message)
		} else {
			fmt.Fprintf(w, "%s %s\n", head, d.Message)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			label := noteColor.Sprint("= note:")
			if n.Subject != "" {
				fmt.Fprintf(w, "  %s %s: %s\n", label, n.Subject, n.Msg)
			} else {
				fmt.Fprintf(w, "  %s %s\n", label, n.Msg)
			}
		}
	}
}

func setColor(c *color.Color, on bool) {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}
