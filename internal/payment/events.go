package payment

import "encoding/json"

// CallbackKind names the three signals the hosted gateway script can send.
type CallbackKind string

const (
	CallbackComplete CallbackKind = "complete"
	CallbackError    CallbackKind = "error"
	CallbackCancel   CallbackKind = "cancel"
)

// IsValid reports whether the value is a known CallbackKind.
func (k CallbackKind) IsValid() bool {
	switch k {
	case CallbackComplete, CallbackError, CallbackCancel:
		return true
	}
	return false
}

// CallbackEvent is the normalized form of a gateway callback. The three
// script callbacks collapse into this one shape so the orchestrator handles
// plain sequential transitions instead of per-callback wiring.
type CallbackEvent struct {
	Kind        CallbackKind    `json:"kind"`
	Transaction json.RawMessage `json:"transaction,omitempty"`
	Reason      string          `json:"reason,omitempty"`
}
