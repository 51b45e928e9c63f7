package qr

import (
	"encoding/json"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels; MaxSize caps it.
const (
	DefaultSize = 256
	MaxSize     = 1024
)

func labelSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// EncodePayload returns the JSON printed into an equipment label.
func EncodePayload(ref EquipmentReference) (string, error) {
	b, err := json.Marshal(Payload{
		Type:          payloadType,
		TagNo:         ref.Tag,
		EquipmentName: ref.Name,
		EquipmentType: ref.Type,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal qr payload: %w", err)
	}
	return string(b), nil
}

// LabelPNG renders the equipment label as a PNG. size is clamped to MaxSize.
func LabelPNG(ref EquipmentReference, size int) ([]byte, error) {
	content, err := EncodePayload(ref)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(content, qrcode.Medium, labelSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	return png, nil
}

// EquipmentURL is the link form of a label, <base>/equipment/<id>. Resolve
// maps it back to the equipment by ID.
func EquipmentURL(base string, id int64) string {
	return fmt.Sprintf("%s/equipment/%d", strings.TrimRight(base, "/"), id)
}

// URLLabelPNG renders a label carrying EquipmentURL instead of the JSON payload.
func URLLabelPNG(base string, id int64, size int) ([]byte, error) {
	png, err := qrcode.Encode(EquipmentURL(base, id), qrcode.Medium, labelSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	return png, nil
}

// MergeKnownIdentifiers returns static followed by dynamic with duplicates
// and blanks removed, first occurrence kept.
func MergeKnownIdentifiers(static, dynamic []string) []string {
	seen := make(map[string]struct{}, len(static)+len(dynamic))
	out := make([]string, 0, len(static)+len(dynamic))
	for _, list := range [][]string{static, dynamic} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
