// Package qrtoken encodes and decodes the payload printed in attendance QR
// codes. The payload is plain JSON so readers and display code can inspect
// it without this package.
package qrtoken

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"attendance_backend/models"
)

const (
	tagEntry = "entrada"
	tagExit  = "salida"

	DefaultContextLabel = "Evento sin nombre"
)

var (
	ErrMalformedToken   = errors.New("malformed attendance token")
	ErrUnknownDirection = errors.New("unknown attendance direction")
)

// payload keeps the field names of codes already printed in the field.
type payload struct {
	ActivityID    int64  `json:"IdActividad"`
	Direction     string `json:"tipo"`
	ActivityLabel string `json:"nombreActividad"`
	ContextLabel  string `json:"nombreEvento"`
}

func directionTag(d models.Direction) (string, error) {
	switch d {
	case models.DirectionEntry:
		return tagEntry, nil
	case models.DirectionExit:
		return tagExit, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownDirection, int(d))
	}
}

func parseDirection(tag string) (models.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case tagEntry:
		return models.DirectionEntry, nil
	case tagExit:
		return models.DirectionExit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, tag)
	}
}

func Encode(activityID int64, dir models.Direction, activityLabel, contextLabel string) (string, error) {
	tag, err := directionTag(dir)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(payload{
		ActivityID:    activityID,
		Direction:     tag,
		ActivityLabel: activityLabel,
		ContextLabel:  contextLabel,
	})
	if err != nil {
		return "", fmt.Errorf("encode attendance token: %w", err)
	}
	return string(raw), nil
}

// EncodePair returns the entry and exit payloads for one activity.
func EncodePair(ref models.ActivityRef) (entry, exit string, err error) {
	contextLabel := ref.EventName
	if strings.TrimSpace(contextLabel) == "" {
		contextLabel = DefaultContextLabel
	}
	if entry, err = Encode(ref.ID, models.DirectionEntry, ref.Name, contextLabel); err != nil {
		return "", "", err
	}
	if exit, err = Encode(ref.ID, models.DirectionExit, ref.Name, contextLabel); err != nil {
		return "", "", err
	}
	return entry, exit, nil
}

func Decode(s string) (models.AttendanceToken, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.AttendanceToken{}, ErrMalformedToken
	}
	dec := json.NewDecoder(strings.NewReader(s))
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return models.AttendanceToken{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if dec.More() {
		return models.AttendanceToken{}, fmt.Errorf("%w: trailing data", ErrMalformedToken)
	}

	var p payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return models.AttendanceToken{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if _, ok := raw["IdActividad"]; !ok || p.ActivityID <= 0 {
		return models.AttendanceToken{}, fmt.Errorf("%w: missing activity id", ErrMalformedToken)
	}
	if _, ok := raw["tipo"]; !ok {
		return models.AttendanceToken{}, fmt.Errorf("%w: missing direction", ErrUnknownDirection)
	}
	dir, err := parseDirection(p.Direction)
	if err != nil {
		return models.AttendanceToken{}, err
	}
	return models.AttendanceToken{
		ActivityID:    p.ActivityID,
		Direction:     dir,
		ActivityLabel: p.ActivityLabel,
		ContextLabel:  p.ContextLabel,
	}, nil
}
