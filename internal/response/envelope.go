package response

import "context"

// CodeReturnTypeErr is the envelope code used when a response fails its
// declared contract.
const CodeReturnTypeErr = 600

// KeyReturnTypeErr tags the diagnostic payload of an overridden envelope.
const KeyReturnTypeErr = "return_type_err"

// Envelope is the outer object of every JSON response. All three fields are
// always serialized.
type Envelope struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// TypeError is the data of an overridden envelope.
type TypeError struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type requestIDKey struct{}

// WithRequestID attaches the request id reported alongside violations.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
