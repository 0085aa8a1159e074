package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadPayload     = errors.New("bad command payload")
)

// Handler processes a specific command type and returns the reply payload.
type Handler func(id string, payload json.RawMessage) (interface{}, error)

// Router dispatches incoming command messages to registered handlers.
type Router struct {
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewRouter creates a new message router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{handlers: make(map[string]Handler), logger: logger}
}

// Register adds a handler for a specific message type.
func (r *Router) Register(msgType string, h Handler) {
	r.handlers[msgType] = h
}

// Types returns the registered message types in sorted order.
func (r *Router) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Dispatch parses a raw command message and routes it to the appropriate
// handler. The returned envelope is the parsed request, valid whenever the
// JSON itself was readable.
func (r *Router) Dispatch(raw []byte) (Envelope, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, nil, fmt.Errorf("%w: unmarshal envelope: %v", ErrBadPayload, err)
	}

	h, ok := r.handlers[env.Type]
	if !ok {
		r.logger.Warn("unknown command type", zap.String("type", env.Type))
		return env, nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
	}

	result, err := h(env.ID, env.Payload)
	return env, result, err
}

// Decode unmarshals a command payload strictly: unknown fields and
// trailing data are rejected.
func Decode(payload json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: empty payload", ErrBadPayload)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrBadPayload)
	}
	return nil
}

// Missing reports a required payload key that was absent.
func Missing(field string) error {
	return fmt.Errorf("%w: missing %q", ErrBadPayload, field)
}
