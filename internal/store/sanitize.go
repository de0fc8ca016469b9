package store

import "bytes"

// Sanitize rewrites the non-JSON sentinels that loosely generated blobs
// contain so the result can be decoded by encoding/json. Outside string
// literals, NaN, Infinity and -Infinity become 0 and undefined becomes null.
func Sanitize(raw []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(raw))

	inString := false
	escaped := false
	for i := 0; i < len(raw); {
		c := raw[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			i++
			continue
		}
		if word, repl, ok := sentinelAt(raw, i); ok {
			out.WriteString(repl)
			i += len(word)
			continue
		}
		out.WriteByte(c)
		i++
	}
	return out.Bytes()
}

var sentinels = []struct {
	word, repl string
}{
	{"-Infinity", "0"},
	{"+Infinity", "0"},
	{"Infinity", "0"},
	{"-NaN", "0"},
	{"NaN", "0"},
	{"undefined", "null"},
}

func sentinelAt(raw []byte, i int) (string, string, bool) {
	if i > 0 && isIdent(raw[i-1]) {
		return "", "", false
	}
	for _, s := range sentinels {
		end := i + len(s.word)
		if end > len(raw) || string(raw[i:end]) != s.word {
			continue
		}
		if end < len(raw) && isIdent(raw[end]) {
			continue
		}
		return s.word, s.repl, true
	}
	return "", "", false
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
