package types

import (
	"fmt"
	"math"
	"time"

	errorsmod "cosmossdk.io/errors"
)

// Block is the authoritative (height, time) pair supplied by the host for one invocation.
type Block struct {
	Height uint64    `json:"height"`
	Time   time.Time `json:"time"`
}

// Duration is a cooldown measured either in blocks or in seconds. Exactly one
// field is set.
type Duration struct {
	Height *uint64 `json:"height,omitempty"`
	Time   *uint64 `json:"time,omitempty"`
}

func HeightDuration(blocks uint64) Duration {
	return Duration{Height: &blocks}
}

func TimeDuration(seconds uint64) Duration {
	return Duration{Time: &seconds}
}

// Validate rejects empty, ambiguous and zero-length durations.
func (d Duration) Validate() error {
	switch {
	case d.Height != nil && d.Time != nil:
		return errorsmod.Wrap(ErrInvalidConfig, "duration must be either height or time, not both")
	case d.Height != nil:
		if *d.Height == 0 {
			return errorsmod.Wrap(ErrInvalidConfig, "unstaking duration height cannot be zero")
		}
	case d.Time != nil:
		if *d.Time == 0 {
			return errorsmod.Wrap(ErrInvalidConfig, "unstaking duration time cannot be zero")
		}
		if *d.Time > maxDurationSeconds {
			return errorsmod.Wrapf(ErrInvalidConfig, "unstaking duration time cannot exceed %ds", maxDurationSeconds)
		}
	default:
		return errorsmod.Wrap(ErrInvalidConfig, "duration is empty")
	}
	return nil
}

// maxDurationSeconds is the longest time cooldown a time.Duration can carry.
const maxDurationSeconds = uint64(math.MaxInt64 / int64(time.Second))

// After returns the expiration reached once d has elapsed from block. It fails
// with ErrOverflow when the release height or time is not representable.
func (d Duration) After(block Block) (Expiration, error) {
	switch {
	case d.Height != nil:
		if *d.Height > math.MaxUint64-block.Height {
			return Expiration{}, errorsmod.Wrapf(ErrOverflow, "release height %d + %d", block.Height, *d.Height)
		}
		h := block.Height + *d.Height
		return Expiration{AtHeight: &h}, nil
	case d.Time != nil:
		if *d.Time > maxDurationSeconds {
			return Expiration{}, errorsmod.Wrapf(ErrOverflow, "cooldown of %ds exceeds %ds", *d.Time, maxDurationSeconds)
		}
		t := block.Time.Add(time.Duration(*d.Time) * time.Second).UTC()
		if t.Before(block.Time) {
			return Expiration{}, errorsmod.Wrapf(ErrOverflow, "release time %ds after %s", *d.Time, block.Time)
		}
		return Expiration{AtTime: &t}, nil
	}
	return Expiration{}, errorsmod.Wrap(ErrInvalidConfig, "duration is empty")
}

func (d Duration) String() string {
	if d.Height != nil {
		return fmt.Sprintf("height(%d)", *d.Height)
	}
	if d.Time != nil {
		return fmt.Sprintf("time(%ds)", *d.Time)
	}
	return "none"
}

// Expiration is a release condition on a claim.
type Expiration struct {
	AtHeight *uint64    `json:"at_height,omitempty"`
	AtTime   *time.Time `json:"at_time,omitempty"`
}

// IsExpired reports whether block has reached the expiration. A height
// expiration H matures at height H; a time expiration T matures at time T.
func (e Expiration) IsExpired(block Block) bool {
	if e.AtHeight != nil {
		return block.Height >= *e.AtHeight
	}
	if e.AtTime != nil {
		return !block.Time.Before(*e.AtTime)
	}
	return false
}

func (e Expiration) String() string {
	if e.AtHeight != nil {
		return fmt.Sprintf("at_height(%d)", *e.AtHeight)
	}
	if e.AtTime != nil {
		return "at_time(" + e.AtTime.Format(time.RFC3339) + ")"
	}
	return "never"
}
