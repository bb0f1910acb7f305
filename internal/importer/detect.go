package importer

import "os"

// SniffBytes bounds how much of a file Detect looks at.
const SniffBytes = 500

var formatMarkers = []struct {
	format   Format
	keywords []string
}{
	{FormatPichincha, []string{"pichincha", "movimientos"}},
	{FormatPacifico, []string{"pacifico", "fecha", "descripcion"}},
}

// Detect classifies decoded statement text. Markers are checked in priority
// order against the folded prefix; no match yields FormatGeneric.
func Detect(text string) Format {
	prefix := []rune(text)
	if len(prefix) > SniffBytes {
		prefix = prefix[:SniffBytes]
	}
	s := fold(string(prefix))
	for _, m := range formatMarkers {
		if containsAny(s, m.keywords) {
			return m.format
		}
	}
	return FormatGeneric
}

// DetectFile reads and classifies the file at path. Unreadable or empty
// files yield FormatUnknown.
func DetectFile(path string) Format {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormatUnknown
	}
	text, err := Decode(data)
	if err != nil {
		return FormatUnknown
	}
	return Detect(text)
}
