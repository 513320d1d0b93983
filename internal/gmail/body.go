package gmail

import (
	"encoding/base64"

	gmail "google.golang.org/api/gmail/v1"
)

// ExtractBody returns the decoded body of the first text/plain leaf in the
// payload tree. A single part with a body is used as-is; containers are
// walked depth-first, recursing into nested containers before moving to the
// next sibling. The search is best-effort: HTML-only messages (text/html
// with no text/plain sibling) yield an empty string.
func ExtractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) == 0 {
		return decodePartBody(payload)
	}

	return findPlainText(payload.Parts)
}

// findPlainText walks parts depth-first and returns the first decodable
// text/plain leaf.
func findPlainText(parts []*gmail.MessagePart) string {
	for _, part := range parts {
		if part == nil {
			continue
		}
		if part.MimeType == "text/plain" {
			if body := decodePartBody(part); body != "" {
				return body
			}
		}
		if len(part.Parts) > 0 {
			if body := findPlainText(part.Parts); body != "" {
				return body
			}
		}
	}
	return ""
}

// decodePartBody decodes a part's base64url body data. The first attempt
// expects padding; the fallback accepts the unpadded form the API usually
// sends.
func decodePartBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}

	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}
