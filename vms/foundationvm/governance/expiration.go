// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/math"
)

var (
	errUnknownExpirationKind = errors.New("unknown expiration kind")
	errUnknownDurationKind   = errors.New("unknown duration kind")
	errZeroDuration          = errors.New("duration is zero")
	errAmbiguousJSON         = errors.New("exactly one variant must be set")
)

// BlockInfo is the height and time of the block a call executes in.
type BlockInfo struct {
	Height uint64
	Time   time.Time
}

// Unix returns the block time as unix seconds, clamped at zero.
func (b BlockInfo) Unix() uint64 {
	if unix := b.Time.Unix(); unix > 0 {
		return uint64(unix)
	}
	return 0
}

type ExpirationKind byte

const (
	ExpiresAtHeight ExpirationKind = iota + 1
	ExpiresAtTime
	NeverExpires
)

// Expiration is a point at which a proposal stops accepting ballots.
type Expiration struct {
	Kind  ExpirationKind `serialize:"true"`
	Value uint64         `serialize:"true"`
}

func AtHeight(height uint64) Expiration { return Expiration{Kind: ExpiresAtHeight, Value: height} }

// AtTime expires at the given unix second.
func AtTime(unix uint64) Expiration { return Expiration{Kind: ExpiresAtTime, Value: unix} }

func Never() Expiration { return Expiration{Kind: NeverExpires} }

func (e Expiration) Verify() error {
	switch e.Kind {
	case ExpiresAtHeight, ExpiresAtTime, NeverExpires:
		return nil
	default:
		return fmt.Errorf("%w: %d", errUnknownExpirationKind, e.Kind)
	}
}

// IsExpired returns true once [block] reached the expiration point.
func (e Expiration) IsExpired(block BlockInfo) bool {
	switch e.Kind {
	case ExpiresAtHeight:
		return block.Height >= e.Value
	case ExpiresAtTime:
		return block.Unix() >= e.Value
	default:
		return false
	}
}

// Compare orders two expirations. The second return value is false when the
// expirations are measured in different units and can't be ordered. Never is
// after everything.
func (e Expiration) Compare(other Expiration) (int, bool) {
	switch {
	case e.Kind == NeverExpires && other.Kind == NeverExpires:
		return 0, true
	case e.Kind == NeverExpires:
		return 1, true
	case other.Kind == NeverExpires:
		return -1, true
	case e.Kind != other.Kind:
		return 0, false
	case e.Value < other.Value:
		return -1, true
	case e.Value > other.Value:
		return 1, true
	default:
		return 0, true
	}
}

func (e Expiration) String() string {
	switch e.Kind {
	case ExpiresAtHeight:
		return fmt.Sprintf("height: %d", e.Value)
	case ExpiresAtTime:
		return fmt.Sprintf("time: %d", e.Value)
	case NeverExpires:
		return "never"
	default:
		return "unknown"
	}
}

type expirationJSON struct {
	AtHeight *uint64   `json:"atHeight,omitempty"`
	AtTime   *uint64   `json:"atTime,omitempty"`
	Never    *struct{} `json:"never,omitempty"`
}

func (e Expiration) MarshalJSON() ([]byte, error) {
	var v expirationJSON
	switch e.Kind {
	case ExpiresAtHeight:
		v.AtHeight = &e.Value
	case ExpiresAtTime:
		v.AtTime = &e.Value
	case NeverExpires:
		v.Never = &struct{}{}
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownExpirationKind, e.Kind)
	}
	return json.Marshal(v)
}

func (e *Expiration) UnmarshalJSON(b []byte) error {
	var v expirationJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch {
	case v.AtHeight != nil && v.AtTime == nil && v.Never == nil:
		*e = AtHeight(*v.AtHeight)
	case v.AtTime != nil && v.AtHeight == nil && v.Never == nil:
		*e = AtTime(*v.AtTime)
	case v.Never != nil && v.AtHeight == nil && v.AtTime == nil:
		*e = Never()
	default:
		return fmt.Errorf("expiration: %w", errAmbiguousJSON)
	}
	return nil
}

type DurationKind byte

const (
	DurationHeight DurationKind = iota + 1
	DurationTime
)

// Duration is a voting period, either a number of blocks or of seconds.
type Duration struct {
	Kind  DurationKind `serialize:"true"`
	Value uint64       `serialize:"true"`
}

func Blocks(n uint64) Duration { return Duration{Kind: DurationHeight, Value: n} }

func Seconds(n uint64) Duration { return Duration{Kind: DurationTime, Value: n} }

func (d Duration) Verify() error {
	switch {
	case d.Kind != DurationHeight && d.Kind != DurationTime:
		return fmt.Errorf("%w: %d", errUnknownDurationKind, d.Kind)
	case d.Value == 0:
		return errZeroDuration
	}
	return nil
}

// After returns the expiration [d] past [block].
func (d Duration) After(block BlockInfo) (Expiration, error) {
	switch d.Kind {
	case DurationHeight:
		height, err := math.Add64(block.Height, d.Value)
		return AtHeight(height), err
	case DurationTime:
		unix, err := math.Add64(block.Unix(), d.Value)
		return AtTime(unix), err
	default:
		return Expiration{}, fmt.Errorf("%w: %d", errUnknownDurationKind, d.Kind)
	}
}

func (d Duration) String() string {
	switch d.Kind {
	case DurationHeight:
		return fmt.Sprintf("%d blocks", d.Value)
	case DurationTime:
		return (time.Duration(d.Value) * time.Second).String()
	default:
		return "unknown"
	}
}

type durationJSON struct {
	Height *uint64 `json:"height,omitempty"`
	Time   *uint64 `json:"time,omitempty"`
}

func (d Duration) MarshalJSON() ([]byte, error) {
	var v durationJSON
	switch d.Kind {
	case DurationHeight:
		v.Height = &d.Value
	case DurationTime:
		v.Time = &d.Value
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownDurationKind, d.Kind)
	}
	return json.Marshal(v)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v durationJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch {
	case v.Height != nil && v.Time == nil:
		*d = Blocks(*v.Height)
	case v.Time != nil && v.Height == nil:
		*d = Seconds(*v.Time)
	default:
		return fmt.Errorf("duration: %w", errAmbiguousJSON)
	}
	return nil
}
