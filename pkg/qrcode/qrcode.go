// Package qrcode renders text as base64 encoded PNG QR codes.
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 256

var ErrEmptyContent = errors.New("qr content is empty")

type Encoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Encoder{size: size, level: goqrcode.Medium}
}

// Encode returns the PNG image of content, base64 encoded.
func (e *Encoder) Encode(content string) (string, error) {
	if content == "" {
		return "", ErrEmptyContent
	}

	png, err := goqrcode.Encode(content, e.level, e.size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
