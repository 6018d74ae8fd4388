// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"strconv"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"
)

const (
	ProposeEvent = "propose"
	VoteEvent    = "vote"
	ExecuteEvent = "execute"
	CloseEvent   = "close"
)

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an ordered list of attributes describing what a call did.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

func newEvent(eventType string) *Event {
	return &Event{Type: eventType}
}

func (e *Event) add(key, value string) *Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

func (e *Event) addAddress(key string, address ids.ShortID) *Event {
	return e.add(key, address.String())
}

func (e *Event) addUint(key string, value uint64) *Event {
	return e.add(key, strconv.FormatUint(value, 10))
}

// Get returns the value of the first attribute named [key].
func (e *Event) Get(key string) (string, bool) {
	for _, attribute := range e.Attributes {
		if attribute.Key == key {
			return attribute.Value, true
		}
	}
	return "", false
}

// ZapFields returns the attributes as log fields.
func (e *Event) ZapFields() []zap.Field {
	fields := make([]zap.Field, 0, len(e.Attributes)+1)
	fields = append(fields, zap.String("event", e.Type))
	for _, attribute := range e.Attributes {
		fields = append(fields, zap.String(attribute.Key, attribute.Value))
	}
	return fields
}
