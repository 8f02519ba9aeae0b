package harness

import (
	"fmt"
	"io"
	"strings"
)

const (
	phaseRule = ">>>>>>>>>>>>>>>>>>>>>>>>>>>>>>"
	entryRule = "=========================="
)

func writeLine(w io.Writer, s string) {
	fmt.Fprintln(w, s)
}

// writePhaseBanner frames a heading with a blank line on either side.
func writePhaseBanner(w io.Writer, heading string) {
	fmt.Fprintf(w, "\n%s\n>>>>>>>>>> %s\n%s\n\n", phaseRule, heading, phaseRule)
}

func caseStudyHeading(name, label string) string {
	return strings.ToUpper(name) + ", " + strings.ToUpper(label)
}

func writeEntryBanner(w io.Writer, id string) {
	fmt.Fprintf(w, "%s\nModel %s\n%s\n\n", entryRule, id, entryRule)
}
