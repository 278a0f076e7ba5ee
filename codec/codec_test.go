package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type layout struct {
	Name   string    `json:"name" msgpack:"name" cbor:"name"`
	Fields []string  `json:"fields" msgpack:"fields" cbor:"fields"`
	Size   int       `json:"size" msgpack:"size" cbor:"size"`
	At     time.Time `json:"at" msgpack:"at" cbor:"at"`
}

func sample() layout {
	return layout{
		Name:   "main.Foo",
		Fields: []string{"A", "B"},
		Size:   24,
		At:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	cases := map[string]Codec[layout]{
		"json":     JSON[layout]{},
		"msgpack":  Msgpack[layout]{},
		"cbor":     MustCBOR[layout](false),
		"cbor-det": MustCBOR[layout](true),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := c.Encode(sample())
			require.NoError(t, err)
			got, err := c.Decode(b)
			require.NoError(t, err)
			require.Equal(t, sample().Name, got.Name)
			require.Equal(t, sample().Fields, got.Fields)
			require.Equal(t, sample().Size, got.Size)
			require.True(t, sample().At.Equal(got.At))
		})
	}
}

func TestDeterministicCBORIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	m := map[string]int{"z": 1, "a": 2, "m": 3}
	first, err := c.Encode(m)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		b, err := c.Encode(m)
		require.NoError(t, err)
		require.Equal(t, first, b)
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := JSON[layout]{}.Decode([]byte("{"))
	require.Error(t, err)
	_, err = MustCBOR[layout](false).Decode([]byte{0xff, 0x00})
	require.Error(t, err)
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) })
	b, err := c.Encode(wrapperspb.String("main.Foo"))
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	require.True(t, proto.Equal(wrapperspb.String("main.Foo"), got))
}

func TestLimit(t *testing.T) {
	c := Limit[layout]{Inner: JSON[layout]{}, MaxDecode: 16}
	b, err := c.Encode(sample())
	require.NoError(t, err)
	require.Greater(t, len(b), 16)

	_, err = c.Decode(b)
	require.ErrorIs(t, err, ErrTooLarge)

	unlimited := Limit[layout]{Inner: JSON[layout]{}}
	_, err = unlimited.Decode(b)
	require.NoError(t, err)
}
