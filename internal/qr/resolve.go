// Package qr resolves scanned QR payloads to known equipment and renders the
// QR labels printed on equipment.
package qr

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// EquipmentReference is the subset of equipment a scan resolves to.
type EquipmentReference struct {
	ID   int64  `json:"id,omitempty"`
	Tag  string `json:"tag_no"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// Shape names which parse attempt matched a payload.
type Shape string

const (
	ShapeEquipmentPayload Shape = "equipment_payload"
	ShapeURL              Shape = "url"
	ShapeRawTag           Shape = "raw_tag"
)

// Resolution is a successfully resolved scan.
type Resolution struct {
	Shape     Shape              `json:"shape"`
	Equipment EquipmentReference `json:"equipment"`
}

// Payload is the self-describing JSON printed into equipment QR labels.
type Payload struct {
	Type          string `json:"type"`
	TagNo         string `json:"tagNo"`
	EquipmentName string `json:"equipmentName,omitempty"`
	EquipmentType string `json:"equipmentType,omitempty"`
}

const payloadType = "equipment"

type attempt func(raw string, known []EquipmentReference) (Resolution, bool)

// attempts run in order; the first match wins.
var attempts = []attempt{fromPayload, fromURL, fromRawTag}

// Resolve classifies raw and looks it up in known. ok is false when nothing
// matches. Resolution never creates equipment.
func Resolve(raw string, known []EquipmentReference) (Resolution, bool) {
	for _, try := range attempts {
		if res, ok := try(raw, known); ok {
			return res, true
		}
	}
	return Resolution{}, false
}

// fromPayload accepts a JSON object with type "equipment" and a tagNo. Keys
// match exactly. It does not need known to contain the tag; when it does, the
// stored ID, name and type replace what the label carries.
func fromPayload(raw string, known []EquipmentReference) (Resolution, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Resolution{}, false
	}
	p := Payload{
		Type:          stringField(fields, "type"),
		TagNo:         stringField(fields, "tagNo"),
		EquipmentName: stringField(fields, "equipmentName"),
		EquipmentType: stringField(fields, "equipmentType"),
	}
	if p.Type != payloadType || p.TagNo == "" {
		return Resolution{}, false
	}
	ref := EquipmentReference{Tag: p.TagNo, Name: p.EquipmentName, Type: p.EquipmentType}
	if k, ok := byTag(known, p.TagNo); ok {
		ref = k
	}
	return Resolution{Shape: ShapeEquipmentPayload, Equipment: ref}, true
}

// stringField returns fields[key] when it holds a JSON string.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// fromURL accepts an absolute URL whose path contains ".../equipment/<id or tag>".
func fromURL(raw string, known []EquipmentReference) (Resolution, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return Resolution{}, false
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] != payloadType {
			continue
		}
		cand := segs[i+1]
		if cand == "" {
			continue
		}
		if id, err := strconv.ParseInt(cand, 10, 64); err == nil {
			if k, ok := byID(known, id); ok {
				return Resolution{Shape: ShapeURL, Equipment: k}, true
			}
		}
		if k, ok := byTag(known, cand); ok {
			return Resolution{Shape: ShapeURL, Equipment: k}, true
		}
	}
	return Resolution{}, false
}

func fromRawTag(raw string, known []EquipmentReference) (Resolution, bool) {
	if k, ok := byTag(known, raw); ok {
		return Resolution{Shape: ShapeRawTag, Equipment: k}, true
	}
	return Resolution{}, false
}

func byTag(known []EquipmentReference, tag string) (EquipmentReference, bool) {
	for _, k := range known {
		if k.Tag == tag {
			return k, true
		}
	}
	return EquipmentReference{}, false
}

func byID(known []EquipmentReference, id int64) (EquipmentReference, bool) {
	for _, k := range known {
		if k.ID != 0 && k.ID == id {
			return k, true
		}
	}
	return EquipmentReference{}, false
}
