package gmail

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/emersion/go-message/charset"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// extractPlainText recursively walks a MIME part tree and returns the first
// text/plain body found, base64url decoded and converted to UTF-8. For
// multipart/alternative it prefers text/plain over text/html.
func extractPlainText(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.ToLower(part.MimeType) == "text/plain" && part.Body != nil && part.Body.Data != "" {
		return decodePart(part)
	}

	// Direct text/plain children first, then anything deeper.
	for _, sub := range part.Parts {
		if strings.ToLower(sub.MimeType) == "text/plain" {
			if body := extractPlainText(sub); body != "" {
				return body
			}
		}
	}
	for _, sub := range part.Parts {
		if body := extractPlainText(sub); body != "" {
			return body
		}
	}
	return ""
}

// extractHTML returns the first text/html body in the tree.
func extractHTML(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}
	if strings.ToLower(part.MimeType) == "text/html" && part.Body != nil && part.Body.Data != "" {
		return decodePart(part)
	}
	for _, sub := range part.Parts {
		if body := extractHTML(sub); body != "" {
			return body
		}
	}
	return ""
}

// bodyText prefers text/plain and falls back to HTML rendered as markdown.
func bodyText(payload *gmailv1.MessagePart) string {
	if body := extractPlainText(payload); body != "" {
		return body
	}
	html := extractHTML(payload)
	if html == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return html
	}
	return strings.TrimSpace(md)
}

func decodePart(part *gmailv1.MessagePart) string {
	raw := decodeBase64URL(part.Body.Data)
	if raw == nil {
		return ""
	}
	return toUTF8(raw, partCharset(part))
}

// partCharset reads the charset parameter of the part's Content-Type header.
func partCharset(part *gmailv1.MessagePart) string {
	for _, h := range part.Headers {
		if !strings.EqualFold(h.Name, "Content-Type") {
			continue
		}
		_, params, err := mime.ParseMediaType(h.Value)
		if err != nil {
			return ""
		}
		return params["charset"]
	}
	return ""
}

func toUTF8(raw []byte, label string) string {
	switch strings.ToLower(label) {
	case "", "utf-8", "utf8", "us-ascii":
		return string(raw)
	}
	r, err := charset.Reader(label, bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func decodeBase64URL(data string) []byte {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail usually sends unpadded base64url.
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return nil
		}
	}
	return b
}
