package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

// Presenter renders faults and warnings on a terminal.
// It implements the Display port for rich mode; degraded mode deliberately
// does not use it.
type Presenter struct {
	out     io.Writer
	errC    *color.Color
	warnC   *color.Color
	mediumC *color.Color
}

// New creates a console presenter. disableColors strips all ANSI codes.
func New(out io.Writer, disableColors bool) *Presenter {
	p := &Presenter{
		out:     out,
		errC:    color.New(color.FgRed, color.Bold),
		warnC:   color.New(color.FgYellow),
		mediumC: color.New(color.FgYellow),
	}
	if disableColors {
		p.errC.DisableColor()
		p.warnC.DisableColor()
		p.mediumC.DisableColor()
	} else {
		p.errC.EnableColor()
		p.warnC.EnableColor()
		p.mediumC.EnableColor()
	}
	return p
}

// DisplayError surfaces an unrecovered fault to the user
func (p *Presenter) DisplayError(f *fault.Fault, context string) {
	c := p.errC
	if f.Severity() <= model.SeverityMedium {
		c = p.mediumC
	}
	line := fmt.Sprintf("✗ [%s] %s: %s", f.Severity(), f.Category(), f.Message())
	if context != "" {
		line += fmt.Sprintf(" (%s)", context)
	}
	fmt.Fprintln(p.out, c.Sprint(line))
}

// DisplayWarning prints a non-fatal notice
func (p *Presenter) DisplayWarning(text string) {
	fmt.Fprintln(p.out, p.warnC.Sprint("⚠ "+text))
}
