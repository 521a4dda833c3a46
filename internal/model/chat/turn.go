package chat

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Role tags who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ErrInvalidImage is returned when an inline image blob cannot be decoded.
var ErrInvalidImage = errors.New("invalid image data")

const defaultImageMIME = "image/jpeg"

// Part is one piece of a turn: either text or an inline image.
type Part struct {
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     []byte `json:"-"`
}

// IsImage reports whether the part carries inline image bytes.
func (p Part) IsImage() bool {
	return len(p.Data) > 0
}

// DataURL re-encodes an image part as data:<mime>;base64,<payload>.
func (p Part) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ParseDataURL decodes a "data:<mime>;base64,<payload>" blob into an image part.
func ParseDataURL(raw string) (Part, error) {
	meta, payload, ok := strings.Cut(strings.TrimSpace(raw), ",")
	if !ok || payload == "" {
		return Part{}, ErrInvalidImage
	}

	mimeType := defaultImageMIME
	if after, found := strings.CutPrefix(meta, "data:"); found {
		if m, _, _ := strings.Cut(after, ";"); m != "" {
			mimeType = m
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Part{}, ErrInvalidImage
		}
	}
	if len(data) == 0 {
		return Part{}, ErrInvalidImage
	}

	return Part{MIMEType: mimeType, Data: data}, nil
}

// Turn is one role-tagged set of parts in a conversation.
type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Text concatenates the text parts of the turn.
func (t Turn) Text() string {
	var b strings.Builder
	for _, p := range t.Parts {
		if p.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// UserTurn builds a user turn from the given parts.
func UserTurn(parts ...Part) Turn {
	return Turn{Role: RoleUser, Parts: parts}
}

// ModelTurn builds a model turn holding a single text reply.
func ModelTurn(reply string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{TextPart(reply)}}
}
