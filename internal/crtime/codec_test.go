package crtime

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeZeroIsEpoch(t *testing.T) {
	got, err := Decode(0)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, got.Location())
}

func TestDecodeKnownValues(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want time.Time
	}{
		{name: "2020-01-11", raw: 132232032000000000, want: time.Date(2020, 1, 11, 8, 0, 0, 0, time.UTC)},
		{name: "unix epoch", raw: 116444736000000000, want: time.Unix(0, 0).UTC()},
		{name: "one tick", raw: 1, want: Epoch.Add(100 * time.Nanosecond)},
		{name: "ten microseconds", raw: 100, want: Epoch.Add(10 * time.Microsecond)},
		{name: "max", raw: MaxRaw, want: time.Date(9999, 12, 31, 23, 59, 59, 999999900, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	for _, raw := range []Raw{MaxRaw + 1, math.MaxUint64} {
		_, err := Decode(raw)
		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, raw, rangeErr.Raw)
	}
}

func TestRoundTrip(t *testing.T) {
	values := []Raw{0, 1, 9_999_999, 10_000_000, 116444736000000000, 132232032000000000, MaxRaw - 1, MaxRaw}
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		values = append(values, Raw(rng.Uint64N(uint64(MaxRaw)+1)))
	}

	for _, raw := range values {
		ts, err := Decode(raw)
		require.NoError(t, err)
		back, err := Encode(ts)
		require.NoError(t, err)
		require.Equal(t, raw, back, "round trip of %d via %s", raw, ts)
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := Encode(time.Date(1600, 12, 31, 23, 59, 59, 0, time.UTC))
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)

	_, err = Encode(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorAs(t, err, &rangeErr)
	assert.Contains(t, rangeErr.Error(), "outside FILETIME range")
}

func TestFormatReadable(t *testing.T) {
	ts := time.Date(2020, 3, 2, 19, 3, 0, 123456700, time.UTC)
	assert.Equal(t, "2020-03-02T19:03:00.1234567Z", FormatReadable(ts))

	east := time.FixedZone("X", 2*3600)
	assert.Equal(t, "2020-03-02T21:03:00.1234567+02:00", FormatReadable(ts.In(east)))
}

func TestFormatReadableDeterministic(t *testing.T) {
	ts, err := Decode(132232032000000000)
	require.NoError(t, err)

	first := FormatReadable(ts)
	t.Setenv("LANG", "de_DE.UTF-8")
	t.Setenv("LC_ALL", "fr_FR.UTF-8")
	for range 10 {
		assert.Equal(t, first, FormatReadable(ts))
	}
	assert.Equal(t, "2020-01-11T08:00:00.0000000Z", first)
}

func TestFormatReadableSorts(t *testing.T) {
	a, err := Decode(132232032000000000)
	require.NoError(t, err)
	b, err := Decode(132232032000000001)
	require.NoError(t, err)
	assert.Less(t, FormatReadable(a), FormatReadable(b))
}

func TestBytesLittleEndian(t *testing.T) {
	raw := Raw(132232032000000000)
	b := raw.Bytes()
	assert.Equal(t, []byte{0x00, 0xc0, 0x49, 0x1f, 0x55, 0xc8, 0xd5, 0x01}, b)

	back, err := RawFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, raw, back)

	_, err = RawFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseRaw(t *testing.T) {
	binary := Raw(132232032000000000).Bytes()

	tests := []struct {
		name    string
		in      []byte
		want    Raw
		wantErr bool
	}{
		{name: "binary", in: binary, want: 132232032000000000},
		{name: "hex with prefix", in: []byte("0x01d5c8551f49c000"), want: 132232032000000000},
		{name: "hex upper prefix", in: []byte("0X01D5C8551F49C000"), want: 132232032000000000},
		{name: "hex no prefix", in: []byte("01d5c8551f49c000"), want: 132232032000000000},
		{name: "hex trailing newline and nul", in: []byte("0x01d5c8551f49c000\n\x00"), want: 132232032000000000},
		{name: "short hex", in: []byte("0x10"), want: 16},
		{name: "garbage", in: []byte{0xff, 0xff, 0xff}, wantErr: true},
		{name: "empty", in: []byte{}, wantErr: true},
		{name: "bare prefix", in: []byte("0x"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, b, err := ParseRaw(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, raw)
			assert.Equal(t, tt.want.Bytes(), b)
		})
	}
}

func TestParseRawBinaryVerbatim(t *testing.T) {
	in := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x00}
	_, b, err := ParseRaw(in)
	require.NoError(t, err)
	assert.Equal(t, in, b)

	// Mutating the input must not change the returned bytes.
	in[0] = 0xee
	assert.Equal(t, byte(0x01), b[0])
}

func TestHex(t *testing.T) {
	assert.Equal(t, "0x01d5c8551f49c000", Hex(132232032000000000))
	assert.Equal(t, "0x0000000000000000", Hex(0))
}
