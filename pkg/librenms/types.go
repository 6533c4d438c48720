package librenms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
)

// DeviceGroup is a device group as listed by GET /devicegroups.
type DeviceGroup struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Desc     string   `json:"desc,omitempty"`
	Type     string   `json:"type,omitempty"`
	Children []string `json:"children,omitempty"`
}

// Device is a single device record. The well-known fields are decoded for
// the inventory logic; Attributes keeps the complete record so that any
// field the API adds is carried through untouched.
type Device struct {
	ID         int
	SysName    string
	Hostname   string
	Disabled   int
	OS         string
	Attributes map[string]any
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type groupsResponse struct {
	envelope
	Groups []DeviceGroup `json:"groups"`
}

type membersResponse struct {
	envelope
	Devices []struct {
		DeviceID int `json:"device_id"`
	} `json:"devices"`
}

type devicesResponse struct {
	envelope
	Devices []map[string]json.RawMessage `json:"devices"`
}

// newDevice builds a Device from a raw record. Integral JSON numbers become
// int64 and other numbers float64, so host variables keep the type the API
// sent.
func newDevice(raw map[string]json.RawMessage) (Device, error) {
	attrs := make(map[string]any, len(raw))
	for key, msg := range raw {
		v, err := decodeValue(msg)
		if err != nil {
			return Device{}, fmt.Errorf("failed to decode attribute %q: %w", key, err)
		}
		attrs[key] = v
	}
	return NewDevice(attrs), nil
}

// NewDevice() wraps a decoded attribute map, filling in the typed fields.
func NewDevice(attrs map[string]any) Device {
	return Device{
		ID:         intValue(attrs["device_id"]),
		SysName:    stringValue(attrs["sysName"]),
		Hostname:   stringValue(attrs["hostname"]),
		Disabled:   intValue(attrs["disabled"]),
		OS:         stringValue(attrs["os"]),
		Attributes: attrs,
	}
}

func decodeValue(msg json.RawMessage) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

// intValue accepts the loose typing LibreNMS uses for flags: numbers,
// numeric strings and booleans. A positive fraction counts as set.
func intValue(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		if t > 0 && t < 1 {
			return 1
		}
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		if i, err := strconv.Atoi(t); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return intValue(f)
		}
		log.Debug().Str("value", t).Msg("ignoring non-numeric flag value")
		return 0
	default:
		log.Debug().Type("type", v).Msg("ignoring flag value of unexpected type")
		return 0
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (e envelope) status() envelope {
	return e
}
