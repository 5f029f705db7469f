package tools

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Envelope is the flat result of one tool call.
//
// On the wire it is a single JSON object: success first, then error and tool
// when set, then the fields of Data in declaration order.
type Envelope struct {
	Success bool
	Error   string
	Tool    string
	Data    any
}

// Succeeded wraps an operation payload. data must marshal to a JSON object.
func Succeeded(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Failed builds a failure envelope.
func Failed(msg string) Envelope {
	return Envelope{Error: msg}
}

// MarshalJSON flattens Data next to the status fields.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "success", e.Success)
	if err != nil {
		return nil, err
	}
	if e.Error != "" {
		if out, err = sjson.SetBytes(out, "error", e.Error); err != nil {
			return nil, err
		}
	}
	if e.Tool != "" {
		if out, err = sjson.SetBytes(out, "tool", e.Tool); err != nil {
			return nil, err
		}
	}
	if e.Data == nil {
		return out, nil
	}

	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", e.Data, err)
	}
	fields := gjson.ParseBytes(data)
	if !fields.IsObject() {
		return nil, fmt.Errorf("envelope data %T is not a JSON object", e.Data)
	}
	fields.ForEach(func(key, value gjson.Result) bool {
		out, err = sjson.SetRawBytes(out, key.String(), []byte(value.Raw))
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
