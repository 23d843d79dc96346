package format

import "strings"

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"</", `<\/`,
)

// jsString escapes s for use inside a quoted JavaScript literal.
func jsString(s string) string {
	return jsEscaper.Replace(s)
}

// quote returns s as a single-quoted JavaScript literal.
func quote(s string) string {
	return "'" + jsString(s) + "'"
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = quote(s)
	}
	return strings.Join(q, ",")
}
