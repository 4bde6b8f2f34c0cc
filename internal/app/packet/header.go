package packet

import "strings"

// Keys recognised in a log header
const (
	HeaderAppName  = "appname"
	HeaderHostName = "hostname"
)

// NewLogHeader builds a log header and derives its app and host names from content
func NewLogHeader(content string) *LogHeader {
	values := ParseHeaderContent(content)

	return &LogHeader{
		Content:  content,
		AppName:  values[HeaderAppName],
		HostName: values[HeaderHostName],
	}
}

// ParseHeaderContent parses CRLF separated key=value lines. Keys are lowercased,
// lines without '=' are ignored and the first occurrence of a key wins.
func ParseHeaderContent(content string) map[string]string {
	values := make(map[string]string)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}

		if _, exists := values[key]; !exists {
			values[key] = strings.TrimSpace(value)
		}
	}

	return values
}

// FormatHeaderContent renders key=value pairs as header content in the given order
func FormatHeaderContent(pairs ...[2]string) string {
	var b strings.Builder

	for _, pair := range pairs {
		b.WriteString(pair[0])
		b.WriteByte('=')
		b.WriteString(pair[1])
		b.WriteString("\r\n")
	}

	return b.String()
}
