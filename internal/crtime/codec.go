// Package crtime converts NTFS creation times between their on-disk form
// (FILETIME: 100ns ticks since 1601-01-01 UTC) and time.Time, and moves them
// between a source file and its copy as extended attributes.
package crtime

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Raw is an NTFS FILETIME value.
type Raw uint64

const (
	ticksPerSecond = 10_000_000
	nsPerTick      = 100

	// Seconds between 1601-01-01 and 1970-01-01.
	epochDelta = 11_644_473_600

	// MaxRaw is 9999-12-31T23:59:59.9999999Z, the last instant the readable
	// layout can express.
	MaxRaw Raw = 2_650_467_743_999_999_999

	// RawSize is the length of a raw crtime attribute value.
	RawSize = 8

	// ReadableLayout is the sortable, locale independent form written to the
	// readable attribute. Seven fraction digits keep full FILETIME precision.
	ReadableLayout = "2006-01-02T15:04:05.0000000Z07:00"
)

// Epoch is the instant a zero Raw decodes to.
var Epoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// ErrMalformed is returned by ParseRaw for values that are neither 8 raw
// bytes nor a hex number.
var ErrMalformed = errors.New("malformed crtime value")

// RangeError reports a value outside the representable calendar range.
type RangeError struct {
	Raw  Raw
	Time time.Time // set when the error came from Encode
}

func (e *RangeError) Error() string {
	if !e.Time.IsZero() {
		return fmt.Sprintf("time %s outside FILETIME range", e.Time.Format(time.RFC3339Nano))
	}
	return fmt.Sprintf("crtime 0x%016x outside calendar range (max 0x%016x)", uint64(e.Raw), uint64(MaxRaw))
}

// Decode converts raw to a UTC time.
func Decode(raw Raw) (time.Time, error) {
	if raw > MaxRaw {
		return time.Time{}, &RangeError{Raw: raw}
	}
	secs := int64(raw / ticksPerSecond)
	nsec := int64(raw%ticksPerSecond) * nsPerTick
	return time.Unix(secs-epochDelta, nsec).UTC(), nil
}

// Encode converts t back to a FILETIME. Sub-100ns precision is truncated.
func Encode(t time.Time) (Raw, error) {
	secs := t.Unix() + epochDelta
	if secs < 0 || secs > int64(MaxRaw/ticksPerSecond) {
		return 0, &RangeError{Time: t}
	}
	return Raw(secs)*ticksPerSecond + Raw(t.Nanosecond()/nsPerTick), nil
}

// FormatReadable renders t with ReadableLayout in t's own location.
func FormatReadable(t time.Time) string {
	return t.Format(ReadableLayout)
}

// Hex renders raw the way getfattr shows it.
func Hex(raw Raw) string {
	return fmt.Sprintf("0x%016x", uint64(raw))
}

// Bytes returns the 8-byte little-endian attribute encoding of raw.
func (r Raw) Bytes() []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, RawSize), uint64(r))
}

// RawFromBytes decodes an 8-byte little-endian value.
func RawFromBytes(b []byte) (Raw, error) {
	if len(b) != RawSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrMalformed, len(b))
	}
	return Raw(binary.LittleEndian.Uint64(b)), nil
}

// ParseRaw interprets an attribute value as ntfs-3g exposes it: either the
// 8 raw bytes, or the number as ASCII hex (optionally 0x-prefixed). It
// returns the value and the 8 bytes to store on a copy. Raw input is
// returned verbatim.
func ParseRaw(b []byte) (Raw, []byte, error) {
	if len(b) == RawSize && !isHexText(b) {
		raw, err := RawFromBytes(b)
		if err != nil {
			return 0, nil, err
		}
		return raw, append([]byte(nil), b...), nil
	}

	text := strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	if text == "" {
		return 0, nil, fmt.Errorf("%w: empty", ErrMalformed)
	}
	v, err := strconv.ParseUint(text, 16, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %q", ErrMalformed, string(b))
	}
	raw := Raw(v)
	return raw, raw.Bytes(), nil
}

// isHexText reports whether an 8-byte value reads as hex digits. A binary
// FILETIME whose top byte is printable ASCII lies past year 9999.
func isHexText(b []byte) bool {
	s := string(b)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
