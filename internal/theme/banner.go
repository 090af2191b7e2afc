package theme

import (
	"fmt"
)

// Banner returns the CLI banner.
func Banner() string {
	const cyan = "\033[36m"
	const magenta = "\033[35m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	art := "" +
		"   »»»   " + magenta + "FLOCKS" + reset + "   «««\n" +
		cyan + "    ·v·   ·v·v·   ·v·\n" + reset +
		cyan + "  ·v·v·v·   ·v·   ·v·v·\n" + reset +
		yellow + "  ─────────────────────────\n" + reset +
		"  follow-graph account discovery\n"

	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
