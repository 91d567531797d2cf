package logfile

import "strings"

// RawRow is one data row keyed by header text.
type RawRow map[string]string

// RawTable is a header row plus data rows, exactly as read from the file.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}

// Column resolves name against the headers ignoring case and surrounding
// space. It returns the header as spelled in the file.
func (t *RawTable) Column(name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return "", false
	}
	for _, h := range t.Headers {
		if strings.ToLower(h) == want {
			return h, true
		}
	}
	return "", false
}
