package transform

import (
	"fmt"
	"strings"
	"time"
)

// strftimeToGoLayout translates a POSIX-style strftime format string into a
// Go reference-time layout. Only the specifiers spec §4.3 calls for
// ("a well-known POSIX-style specifier set") are supported; an unsupported
// specifier is left as a literal two-character sequence, which will simply
// fail to match during parsing — surfacing as an input error rather than
// silently mis-formatting.
var strftimeSpecifiers = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
}

func strftimeToGoLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			if layout, ok := strftimeSpecifiers[format[i+1]]; ok {
				b.WriteString(layout)
				i++
				continue
			}
		}
		b.WriteByte(format[i])
	}
	return b.String()
}

// ReformatDateTime parses value under the strftime-style inFmt and emits it
// under outFmt.
func ReformatDateTime(value, inFmt, outFmt string) (string, error) {
	inLayout := strftimeToGoLayout(inFmt)
	outLayout := strftimeToGoLayout(outFmt)

	t, err := time.Parse(inLayout, value)
	if err != nil {
		return "", fmt.Errorf("date_time: parse %q with format %q: %w", value, inFmt, err)
	}
	return t.Format(outLayout), nil
}
