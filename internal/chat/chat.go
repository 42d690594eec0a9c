// Package chat converts between structured JSON text and the legacy
// section-sign formatted strings older clients render.
package chat

import (
	"bytes"
	"strings"

	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec"
	"go.minekube.com/common/minecraft/component/codec/legacy"
)

// SectionSign prefixes a legacy formatting code.
const SectionSign = '§'

// Converter translates text between the two representations.
type Converter interface {
	JSONToLegacy(json string) string
	LegacyToJSON(text string) string
}

// Codec is the default Converter.
type Codec struct {
	json   *codec.Json
	legacy *legacy.Legacy
}

func NewCodec() *Codec {
	return &Codec{
		json:   &codec.Json{},
		legacy: &legacy.Legacy{Char: legacy.SectionChar},
	}
}

// JSONToLegacy renders a JSON text component as legacy text. Input that is
// not valid JSON is returned unchanged.
func (c *Codec) JSONToLegacy(json string) string {
	if json == "" {
		return ""
	}
	comp, err := c.json.Unmarshal([]byte(json))
	if err != nil {
		return json
	}
	var buf bytes.Buffer
	if err := c.legacy.Marshal(&buf, comp); err != nil {
		return json
	}
	return buf.String()
}

// LegacyToJSON wraps legacy text into a JSON text component.
func (c *Codec) LegacyToJSON(text string) string {
	comp, err := c.legacy.Unmarshal([]byte(text))
	if err != nil {
		comp = &component.Text{Content: text}
	}
	var buf bytes.Buffer
	if err := c.json.Marshal(&buf, comp); err != nil {
		return `{"text":""}`
	}
	return buf.String()
}

func isColor(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func isFormat(c byte) bool {
	return isColor(c) || (c >= 'k' && c <= 'o') || c == 'r'
}

// RemoveUnusedColor drops formatting codes that change nothing: a color
// equal to the one already active (starting from last), codes overridden by
// a later color before any text follows, and codes trailing at the end.
func RemoveUnusedColor(text string, last byte) string {
	const sign = string(SectionSign)
	var b strings.Builder
	active := last
	formatted := false
	var pending []byte
	for len(text) > 0 {
		if strings.HasPrefix(text, sign) && len(text) > len(sign) && isFormat(text[len(sign)]) {
			code := text[len(sign)]
			text = text[len(sign)+1:]
			if isColor(code) {
				pending = pending[:0]
				if code == active && !formatted {
					continue
				}
			}
			pending = append(pending, code)
			continue
		}
		for _, code := range pending {
			b.WriteString(sign)
			b.WriteByte(code)
			switch {
			case isColor(code):
				active, formatted = code, false
			case code == 'r':
				active, formatted = 0, false
			default:
				formatted = true
			}
		}
		pending = pending[:0]
		b.WriteByte(text[0])
		text = text[1:]
	}
	return b.String()
}

// Truncate shortens text to at most n characters without leaving a
// dangling section sign.
func Truncate(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	r = r[:n]
	if len(r) > 0 && r[len(r)-1] == SectionSign {
		r = r[:len(r)-1]
	}
	return string(r)
}
