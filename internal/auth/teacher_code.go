package auth

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// fullUpper applies the one-to-many upper-case mappings that strings.ToUpper
// leaves alone, so codes match what a browser computes for the same name.
var fullUpper = strings.NewReplacer(
	"\u00DF", "SS",
	"\u0149", "\u02BCN",
	"\u01F0", "J\u030C",
	"\u0390", "\u0399\u0308\u0301",
	"\u03B0", "\u03A5\u0308\u0301",
	"\u0587", "\u0535\u0552",
	"\u1E96", "H\u0331",
	"\u1E97", "T\u0308",
	"\u1E98", "W\u030A",
	"\u1E99", "Y\u030A",
	"\u1E9A", "A\u02BE",
	"\u1FBC", "\u0391\u0399",
	"\u1FCC", "\u0397\u0399",
	"\u1FFC", "\u03A9\u0399",
	"\uFB00", "FF",
	"\uFB01", "FI",
	"\uFB02", "FL",
	"\uFB03", "FFI",
	"\uFB04", "FFL",
	"\uFB05", "ST",
	"\uFB06", "ST",
	"\uFB13", "\u0544\u0546",
	"\uFB14", "\u0544\u0535",
	"\uFB15", "\u0544\u053B",
	"\uFB16", "\u054E\u0546",
	"\uFB17", "\u0544\u053D",
)

// TeacherCode derives the six-digit verification code a teacher must present
// at signup. The code depends only on the upper-cased name.
func TeacherCode(name string) string {
	if name == "" {
		return ""
	}
	t := 0
	for i, unit := range utf16.Encode([]rune(fullUpper.Replace(strings.ToUpper(name)))) {
		t += int(unit) * (i + 1) * (i + 1)
	}
	t = int(math.Floor(math.Sqrt(float64(t)*1234567))) + t%997
	return strconv.Itoa(t%900000 + 100000)
}
