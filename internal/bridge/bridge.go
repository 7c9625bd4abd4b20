// Package bridge wraps host Go values for exposure to guest script code
// and enforces the security gate: a forbidden-property-name set, a
// read-only-proxy policy, prototype-pollution defenses, and outbound-error
// sanitization.
package bridge

import (
	"fmt"

	"github.com/vaultjs/vaultjs/internal/value"
)

// Forbidden is the fixed set of property names IsBlocked always reports as
// blocked, regardless of a host's own configured additions. The
// interpreter rejects a write of any of them to any object; reads are not
// checked against this set.
var Forbidden = map[string]bool{
	"__proto__":          true,
	"prototype":          true,
	"constructor":        true,
	"__defineGetter__":   true,
	"__defineSetter__":   true,
	"__lookupGetter__":   true,
	"__lookupSetter__":   true,
}

// ErrorPolicy controls what an outbound Go error looks like once
// surfaced as a guest-visible thrown value.
type ErrorPolicy int

const (
	// ErrorPreserve surfaces the host error's message verbatim.
	ErrorPreserve ErrorPolicy = iota
	// ErrorMask replaces the message with a fixed generic string,
	// revealing nothing about host internals.
	ErrorMask
	// ErrorRetain keeps the original error reachable only on the Go side
	// (e.g. for host-side logging) while the guest sees a generic message,
	// the same shape as ErrorMask but keyed for a caller that wants the
	// original error value back via SanitizeError's second return.
	ErrorRetain
)

// SecurityPolicy configures how host values are exposed.
type SecurityPolicy struct {
	ErrorPolicy    ErrorPolicy
	BlockedNames   map[string]bool // additional names beyond Forbidden
	MaskedMessage  string          // used when ErrorPolicy is Mask/Retain
}

// DefaultPolicy is a conservative default: mask outbound errors, block
// nothing beyond the fixed Forbidden set.
func DefaultPolicy() SecurityPolicy {
	return SecurityPolicy{ErrorPolicy: ErrorMask, MaskedMessage: "an internal error occurred"}
}

// IsBlocked reports whether name is forbidden under policy.
func (p SecurityPolicy) IsBlocked(name string) bool {
	if Forbidden[name] {
		return true
	}
	return p.BlockedNames[name]
}

// SanitizeError applies policy to an outbound host error, returning the
// guest-visible message and, when ErrorRetain, the original error for the
// host's own diagnostics (nil otherwise).
func SanitizeError(err error, policy SecurityPolicy) (message string, retained error) {
	if err == nil {
		return "", nil
	}
	switch policy.ErrorPolicy {
	case ErrorPreserve:
		return err.Error(), nil
	case ErrorRetain:
		msg := policy.MaskedMessage
		if msg == "" {
			msg = "an internal error occurred"
		}
		return msg, err
	default: // ErrorMask
		msg := policy.MaskedMessage
		if msg == "" {
			msg = "an internal error occurred"
		}
		return msg, nil
	}
}

// WrapHost wraps an arbitrary host Go value as a guest-visible value.Value.
// Primitive Go kinds map onto vaultjs primitives directly; anything else
// becomes a read-only BoundHostObject per policy.
func WrapHost(v any, heap *value.Heap, proto value.Ref, policy SecurityPolicy) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(x)
	case int:
		return value.Number(x)
	case int64:
		return value.Number(x)
	case float64:
		return value.Number(x)
	case string:
		return value.String(x)
	default:
		obj := &value.BoundHostObject{Host: v, ReadOnly: true, Proto: proto}
		return heap.Alloc(obj)
	}
}

// RejectPollution rejects a write whose key is blocked under policy, or
// whose key equals "__proto__"/"constructor" against a target reachable
// from Object.prototype. heap and objectProto let the check walk the
// target's actual prototype chain. internal/interp does not call it: its
// setProperty applies policy.IsBlocked and its own checkPollution, which
// perform the same two checks.
func RejectPollution(key string, target *value.PlainObject, heap *value.Heap, objectProto value.Ref, policy SecurityPolicy) error {
	if policy.IsBlocked(key) {
		return fmt.Errorf("assignment to %q is not permitted", key)
	}
	if key != "__proto__" && key != "constructor" {
		return nil
	}
	cur := target
	for {
		if !cur.HasProto {
			return nil
		}
		if cur.Proto == objectProto {
			return fmt.Errorf("assignment to %q on an Object.prototype-chain object is not permitted", key)
		}
		next, ok := heap.Get(cur.Proto).(*value.PlainObject)
		if !ok {
			return nil
		}
		cur = next
	}
}
