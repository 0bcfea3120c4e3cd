package response

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/common/logger"
	"response-guard/internal/common/metrics"
	"response-guard/internal/common/observability"
	"response-guard/internal/contract"

	"github.com/google/uuid"
)

// ContractSource resolves the parsed contract of a handler.
type ContractSource interface {
	Lookup(handlerID string) (*contract.Template, bool)
}

// Violation describes one overridden response.
type Violation struct {
	ID         string          `json:"id"`
	HandlerID  string          `json:"handler"`
	RequestID  string          `json:"request_id,omitempty"`
	Reason     contract.Reason `json:"reason"`
	Path       string          `json:"path,omitempty"`
	Diagnostic string          `json:"diagnostic"`
	Contract   string          `json:"contract"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ViolationObserver is notified after an envelope has been overridden. It must
// not block.
type ViolationObserver interface {
	ObserveViolation(ctx context.Context, v Violation)
}

// Result is the outcome of one Build.
type Result struct {
	Envelope   *Envelope
	Body       []byte
	Checked    bool
	Overridden bool
	Verdict    contract.Verdict
}

type Option func(*Builder)

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

func WithObservability(o *observability.Observability) Option {
	return func(b *Builder) { b.obs = o }
}

func WithObserver(o ViolationObserver) Option {
	return func(b *Builder) { b.observer = o }
}

func WithEnabled(enabled bool) Option {
	return func(b *Builder) { b.enabled.Store(enabled) }
}

// Builder assembles response envelopes and, when contract checking is
// enabled, replaces any envelope whose data does not match the handler's
// declared contract.
type Builder struct {
	protocol  Protocol
	contracts ContractSource
	logger    logger.Logger
	metrics   *metrics.Metrics
	obs       *observability.Observability
	observer  ViolationObserver
	enabled   atomic.Bool
	newID     func() string
}

func NewBuilder(protocol Protocol, contracts ContractSource, log logger.Logger, opts ...Option) *Builder {
	if protocol == nil {
		protocol = NewJSONProtocol()
	}
	b := &Builder{
		protocol:  protocol,
		contracts: contracts,
		logger:    log,
		newID:     uuid.NewString,
	}
	b.enabled.Store(true)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetEnabled toggles contract checking. Builds already in flight keep the
// value they started with.
func (b *Builder) SetEnabled(enabled bool) {
	b.enabled.Store(enabled)
	b.logger.Info("contract checking toggled", map[string]interface{}{"enabled": enabled})
}

func (b *Builder) Enabled() bool {
	return b.enabled.Load()
}

func (b *Builder) ContentType() string {
	return b.protocol.ContentType()
}

// Build runs build, validate, override and encode for one response. A
// contract violation is not an error: the returned Result carries the
// replacement envelope. Only an encoding failure is returned as an error.
func (b *Builder) Build(ctx context.Context, handlerID string, code int, data interface{}, msg string) (*Result, error) {
	enabled := b.enabled.Load()

	result := &Result{Envelope: b.protocol.Build(code, data, msg)}

	if enabled && handlerID != "" && b.contracts != nil {
		if tmpl, ok := b.contracts.Lookup(handlerID); ok {
			result.Checked = true
			result.Verdict = b.check(ctx, handlerID, tmpl, result.Envelope.Data)
			if !result.Verdict.OK {
				result.Envelope = b.protocol.Build(CodeReturnTypeErr, TypeError{
					Key:   KeyReturnTypeErr,
					Value: result.Verdict.Diagnostic,
				}, "")
				result.Overridden = true
				b.report(ctx, handlerID, tmpl, result.Verdict)
			}
		}
	}

	return b.encode(handlerID, result)
}

// BuildUnchecked assembles and encodes an envelope without consulting any
// contract. Failure responses use it.
func (b *Builder) BuildUnchecked(code int, data interface{}, msg string) (*Result, error) {
	return b.encode("", &Result{Envelope: b.protocol.Build(code, data, msg)})
}

func (b *Builder) check(ctx context.Context, handlerID string, tmpl *contract.Template, data interface{}) contract.Verdict {
	start := time.Now()
	verdict := contract.Compare(tmpl, data)

	if b.metrics != nil {
		b.metrics.RecordContractCheck(handlerID, verdict.OK)
	}
	if b.obs != nil {
		b.obs.RecordContractCheck(ctx, handlerID, time.Since(start), verdict.OK)
	}
	return verdict
}

func (b *Builder) report(ctx context.Context, handlerID string, tmpl *contract.Template, verdict contract.Verdict) {
	v := Violation{
		ID:         b.newID(),
		HandlerID:  handlerID,
		RequestID:  RequestIDFrom(ctx),
		Reason:     verdict.Reason,
		Path:       verdict.Path,
		Diagnostic: verdict.Diagnostic,
		Contract:   tmpl.Raw(),
		OccurredAt: time.Now().UTC(),
	}

	logger.ForHandler(b.logger, handlerID).
		WithError(apperrors.NewContractViolationError(handlerID, string(v.Reason), v.Diagnostic)).
		Warn("response violates declared contract", map[string]interface{}{
			"reason":     string(v.Reason),
			"path":       v.Path,
			"request_id": v.RequestID,
		})

	if b.metrics != nil {
		b.metrics.RecordContractViolation(handlerID, string(v.Reason))
	}
	if b.observer != nil {
		b.observer.ObserveViolation(ctx, v)
	}
}

func (b *Builder) encode(handlerID string, result *Result) (*Result, error) {
	body, err := b.protocol.Encode(result.Envelope)
	if err != nil {
		return nil, fmt.Errorf("encode envelope for handler %q: %w", handlerID, err)
	}
	result.Body = body
	return result, nil
}
