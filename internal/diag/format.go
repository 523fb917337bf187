package diag

import (
	"fmt"
	"strings"

	"fsema/internal/source"
)

// FormatShort renders diagnostics one per line as
// "severity CODE path:line:col message", with notes on following lines.
// Diagnostics whose span has no file are printed with "<generated>".
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	var b strings.Builder
	for _, d := range diags {
		writeLine(&b, severityLabel(d.Severity), d.Code, d.Primary, d.Message, fs)
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			writeLine(&b, "note", d.Code, note.Span, note.Msg, fs)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeLine(b *strings.Builder, label string, code Code, span source.Span, msg string, fs *source.FileSet) {
	fmt.Fprintf(b, "%s %s %s %s\n", label, code.ID(), location(fs, span), sanitizeMessage(msg))
}

func location(fs *source.FileSet, span source.Span) string {
	if fs == nil {
		return "<generated>"
	}
	f := fs.Get(span.File)
	if f == nil {
		return "<generated>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
