package udf

import "strings"

// decodeOSTACompressedUnicode decodes an OSTA CS0 compressed-unicode string:
// the first byte is a compression ID (8 = Latin-1/ASCII, 16 = UTF-16BE), the
// rest the payload. An empty or unrecognised input decodes to "".
func decodeOSTACompressedUnicode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	switch data[0] {
	case 8:
		s := string(data[1:])
		if idx := strings.IndexByte(s, 0); idx >= 0 {
			s = s[:idx]
		}
		return s
	case 16:
		b := data[1:]
		runes := make([]rune, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			u := uint16(b[i])<<8 | uint16(b[i+1])
			if u == 0 {
				break
			}
			runes = append(runes, rune(u))
		}
		return string(runes)
	default:
		return ""
	}
}
