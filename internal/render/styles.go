package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type paint func(string) string

func plain(s string) string { return s }

type styles struct {
	err     paint
	code    paint
	loc     paint
	gutter  paint
	caret   paint
	expect  paint
	suggest paint
	ok      paint
	dim     paint
}

// newStyles builds the palette for w. With color off every style is the
// identity, so plain output never depends on the terminal.
func newStyles(w io.Writer, color bool) styles {
	if !color {
		return styles{
			err: plain, code: plain, loc: plain, gutter: plain, caret: plain,
			expect: plain, suggest: plain, ok: plain, dim: plain,
		}
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	return styles{
		err:     use(fg("1").Bold(true)),
		code:    use(fg("3")),
		loc:     use(r.NewStyle().Bold(true)),
		gutter:  use(fg("4")),
		caret:   use(fg("1").Bold(true)),
		expect:  use(fg("6")),
		suggest: use(fg("2")),
		ok:      use(fg("2")),
		dim:     use(fg("8")),
	}
}

// use adapts the variadic Style.Render to a paint.
func use(st lipgloss.Style) paint {
	return func(s string) string { return st.Render(s) }
}
