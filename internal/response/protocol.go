package response

import (
	"bytes"
	"encoding/json"
)

// Protocol decides how an envelope is assembled and put on the wire. It is
// injected into the Builder so alternative encodings can be swapped in
// without touching the validation pipeline.
type Protocol interface {
	Build(code int, data interface{}, msg string) *Envelope
	Encode(env *Envelope) ([]byte, error)
	ContentType() string
}

// JSONProtocol emits {"code":..,"msg":..,"data":..}. Missing data is sent as
// an empty array.
type JSONProtocol struct{}

func NewJSONProtocol() *JSONProtocol {
	return &JSONProtocol{}
}

func (JSONProtocol) Build(code int, data interface{}, msg string) *Envelope {
	if data == nil {
		data = []interface{}{}
	}
	return &Envelope{Code: code, Msg: msg, Data: data}
}

func (JSONProtocol) Encode(env *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (JSONProtocol) ContentType() string {
	return "application/json; charset=utf-8"
}
