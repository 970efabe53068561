package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
)

// Banner renders title as a large ASCII header.
type Banner func(w io.Writer, title string)

// FigureBanner returns a Banner drawing titles in a FIGlet font.
func FigureBanner(font string) Banner {
	return func(w io.Writer, title string) {
		fig := figure.NewFigure(title, font, false)
		fmt.Fprintln(w, fig.String())
	}
}

// PlainBanner underlines the title.
func PlainBanner(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", len([]rune(title))))
}
