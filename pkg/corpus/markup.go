package corpus

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	tagPattern        = regexp.MustCompile(`<.*?>`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Z}]+`)

	strongPattern = regexp.MustCompile(`<strong>([^<]+)</strong>`)
	boldPattern   = regexp.MustCompile(`<b>([^<]+)</b>`)
)

// SpeakerColor is the colour applied to speaker names in the transcript viewer.
const SpeakerColor = "#1f4e79"

// StripMarkup replaces every tag with a space, collapses whitespace runs to
// a single space and trims. It is a lossy text extraction, not an HTML parser:
// entities are left as-is and tags spanning lines survive.
func StripMarkup(markup string) string {
	text := tagPattern.ReplaceAllString(markup, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// HighlightSpeakers recolours <strong> and <b> runs, which the transcription
// export uses for speaker names.
func HighlightSpeakers(markup string) string {
	style := `style="color: ` + SpeakerColor + `; font-weight: bold;"`
	out := strongPattern.ReplaceAllString(markup, `<strong `+style+`>$1</strong>`)
	return boldPattern.ReplaceAllString(out, `<b `+style+`>$1</b>`)
}

// decodeText returns data as a string, decoding it as Windows-1252 when it
// is not valid UTF-8. A UTF-8 byte order mark is dropped.
func decodeText(data []byte) string {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}
