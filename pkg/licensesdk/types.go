package licensesdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================================
// Transport Types
// ============================================================================

// Response is the raw result of a transport round-trip.
type Response struct {
	Status  int
	Body    string
	Headers map[string]string
}

// ============================================================================
// Envelope Types
// ============================================================================

// Envelope is the decoded {success, data, error} wrapper used by every
// response of the license service.
type Envelope struct {
	// Success is true only when the server sent "success": true.
	Success bool

	// Data is the pass-through payload, empty object when absent.
	Data Data

	// Error is present when the server reported a failure.
	Error *ErrorBody

	// Raw is the full decoded body.
	Raw json.RawMessage

	// StatusCode is the HTTP status the envelope arrived with.
	StatusCode int
}

// ErrorBody is the "error" member of a failed envelope.
type ErrorBody struct {
	Code    string
	Message string

	// Fields holds every member of the error object, including code and message.
	Fields map[string]any
}

// Failed reports whether the envelope lacks success=true and carries an
// error code, which is the canonical failure signal of the service.
func (e *Envelope) Failed() bool {
	return !e.Success && e.Error != nil && e.Error.Code != ""
}

type wireEnvelope struct {
	Success json.RawMessage `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// parseEnvelope decodes a syntactically valid JSON body. Bodies that are not
// objects yield an empty, unsuccessful envelope.
func parseEnvelope(body []byte) *Envelope {
	env := &Envelope{
		Data: emptyData(),
		Raw:  json.RawMessage(body),
	}

	var wire wireEnvelope
	if err := json.Unmarshal(body, &wire); err != nil {
		return env
	}

	env.Success = bytes.Equal(bytes.TrimSpace(wire.Success), []byte("true"))
	if d := bytes.TrimSpace(wire.Data); len(d) > 0 && !bytes.Equal(d, []byte("null")) {
		env.Data = Data(d)
	}

	var fields map[string]any
	if err := json.Unmarshal(wire.Error, &fields); err == nil && fields != nil {
		env.Error = &ErrorBody{
			Code:    stringField(fields, "code"),
			Message: stringField(fields, "message"),
			Fields:  fields,
		}
	}

	return env
}

// ============================================================================
// Data
// ============================================================================

// Data is an endpoint payload kept as raw JSON and decoded on demand.
type Data json.RawMessage

func emptyData() Data { return Data("{}") }

// MarshalJSON passes the payload through unchanged.
func (d Data) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("{}"), nil
	}
	return []byte(d), nil
}

// UnmarshalJSON stores a copy of the raw payload.
func (d *Data) UnmarshalJSON(b []byte) error {
	*d = append((*d)[0:0], b...)
	return nil
}

// IsEmpty reports whether the payload is an empty object or array.
func (d Data) IsEmpty() bool {
	t := bytes.TrimSpace(d)
	return len(t) == 0 || bytes.Equal(t, []byte("{}")) || bytes.Equal(t, []byte("[]"))
}

// Decode unmarshals the payload into v.
func (d Data) Decode(v any) error {
	if len(d) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	if err := json.Unmarshal(d, v); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// Object returns the payload as a loosely-typed object.
func (d Data) Object() (map[string]any, error) {
	obj := map[string]any{}
	if err := d.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// License decodes the payload as a single license.
func (d Data) License() (License, error) {
	obj, err := d.Object()
	if err != nil {
		return License{}, err
	}
	return DecodeLicense(obj), nil
}

// Licenses decodes the payload as a list of licenses.
func (d Data) Licenses() ([]License, error) {
	items, err := d.list("licenses")
	if err != nil {
		return nil, err
	}
	out := make([]License, 0, len(items))
	for _, item := range items {
		out = append(out, DecodeLicense(item))
	}
	return out, nil
}

// Product decodes the payload as a single product.
func (d Data) Product() (Product, error) {
	obj, err := d.Object()
	if err != nil {
		return Product{}, err
	}
	return DecodeProduct(obj), nil
}

// Products decodes the payload as a list of products.
func (d Data) Products() ([]Product, error) {
	items, err := d.list("products")
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(items))
	for _, item := range items {
		out = append(out, DecodeProduct(item))
	}
	return out, nil
}

// Activations decodes the payload as a list of license activations.
func (d Data) Activations() ([]Activation, error) {
	items, err := d.list("activations")
	if err != nil {
		return nil, err
	}
	out := make([]Activation, 0, len(items))
	for _, item := range items {
		out = append(out, DecodeActivation(item))
	}
	return out, nil
}

// list accepts either a bare array or an object wrapping the array under
// "items" or the given collection name.
func (d Data) list(collection string) ([]map[string]any, error) {
	var raw any
	if err := d.Decode(&raw); err != nil {
		return nil, err
	}

	var elems []any
	switch v := raw.(type) {
	case []any:
		elems = v
	case map[string]any:
		for _, key := range []string{"items", collection} {
			if arr, ok := v[key].([]any); ok {
				elems = arr
				break
			}
		}
	default:
		return nil, fmt.Errorf("failed to decode data: unexpected %T payload", raw)
	}

	out := make([]map[string]any, 0, len(elems))
	for _, e := range elems {
		if obj, ok := e.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}
