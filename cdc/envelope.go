package cdc

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Envelope is the typed form of a raw change event: feed-level identifiers
// plus an entity payload that embeds the change header.
type Envelope[P any] struct {
	ID       string `json:"id"`
	SchemaID string `json:"schemaId"`
	ReplayID int64  `json:"replayId"`
	Payload  P      `json:"payload"`
}

// AccountChangeEvent is a decoded change event for the Account entity.
type AccountChangeEvent = Envelope[AccountPayload]

// OrderChangeEvent is a decoded change event for the Order entity.
type OrderChangeEvent = Envelope[OrderPayload]

type MalformedEventError struct {
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed change event: %s", e.Reason)
}

func malformed(reason string) error {
	return &MalformedEventError{Reason: reason}
}

// normalizer is implemented by payloads that need post-unmarshal defaulting.
type normalizer interface {
	normalize()
}

func decode[P any](raw []byte) (*Envelope[P], error) {
	if len(raw) == 0 {
		return nil, malformed("empty event data")
	}

	var envelope Envelope[P]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.WithMessage(malformed("invalid event encoding"), err.Error())
	}

	if n, ok := any(&envelope.Payload).(normalizer); ok {
		n.normalize()
	}

	return &envelope, nil
}

// DecodeAccount normalizes a raw Account change event. Every header field is
// defaulted, so downstream logic never distinguishes missing from null.
func DecodeAccount(raw []byte) (*AccountChangeEvent, error) {
	return decode[AccountPayload](raw)
}

// DecodeOrder normalizes a raw Order change event.
func DecodeOrder(raw []byte) (*OrderChangeEvent, error) {
	return decode[OrderPayload](raw)
}
