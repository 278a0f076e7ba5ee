package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes generated protobuf messages. Decode needs a fresh
// message to fill, so the codec carries a constructor:
//
//	codec.NewProtobuf(func() *pb.Schema { return new(pb.Schema) })
type Protobuf[T proto.Message] struct {
	newMsg func() T
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{newMsg: ctor}
}

func (c Protobuf[T]) Encode(m T) ([]byte, error) { return proto.Marshal(m) }

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.newMsg()
	err := proto.Unmarshal(b, m)
	return m, err
}
