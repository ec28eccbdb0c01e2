package message

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anirudhraja/protodesc/schema"
)

func userDescriptor() (*schema.MessageDescriptor, *schema.MessageDescriptor) {
	address := schema.NewMessageDescriptor("example.v1", "Address",
		&schema.FieldDescriptor{Name: "city", Number: 1, Type: schema.TypeString, Label: schema.LabelNone},
	)
	user := schema.NewMessageDescriptor("example.v1", "User",
		&schema.FieldDescriptor{Name: "id", Number: 1, Type: schema.TypeInt64, Label: schema.LabelNone},
		&schema.FieldDescriptor{Name: "nickname", Number: 2, Type: schema.TypeString, Label: schema.LabelOptional},
		&schema.FieldDescriptor{Name: "tags", Number: 3, Type: schema.TypeString, Label: schema.LabelRepeated},
		&schema.FieldDescriptor{Name: "address", Number: 4, Type: schema.TypeMessage, Label: schema.LabelOptional, Ref: schema.MessageRef(address)},
		&schema.FieldDescriptor{Name: "email", Number: 5, Type: schema.TypeString, Label: schema.LabelOptional, Flags: schema.FlagOneof},
		&schema.FieldDescriptor{Name: "phone", Number: 6, Type: schema.TypeString, Label: schema.LabelOptional, Flags: schema.FlagOneof},
		&schema.FieldDescriptor{Name: "home", Number: 7, Type: schema.TypeMessage, Label: schema.LabelOptional, Flags: schema.FlagOneof, Ref: schema.MessageRef(address)},
		&schema.FieldDescriptor{Name: "score", Number: 8, Type: schema.TypeDouble, Label: schema.LabelNone, Default: 1.5},
		&schema.FieldDescriptor{Name: "past", Number: 9, Type: schema.TypeMessage, Label: schema.LabelRepeated, Ref: schema.MessageRef(address)},
	)
	user.Oneofs = []string{"contact"}
	return user, address
}

func TestMessage_Defaults(t *testing.T) {
	user, _ := userDescriptor()
	m := New(user)

	assert.Equal(t, int64(0), m.Get(1))
	assert.Equal(t, "", m.Get(2))
	assert.Nil(t, m.List(3))
	assert.Nil(t, m.Get(4))
	assert.Equal(t, 1.5, m.Get(8))
	assert.Nil(t, m.Get(100))

	for _, fd := range user.Fields {
		assert.False(t, m.Has(fd.Number), fd.Name)
	}
}

func TestMessage_Presence(t *testing.T) {
	user, _ := userDescriptor()
	m := New(user)

	require.NoError(t, m.Set(1, int64(0)))
	assert.False(t, m.Has(1), "implicit presence: zero is unset")

	require.NoError(t, m.Set(2, ""))
	assert.True(t, m.Has(2), "explicit presence: empty string is set")

	require.NoError(t, m.Set(8, 1.5))
	assert.False(t, m.Has(8), "value equal to the default is unset")
	require.NoError(t, m.Set(8, 0.0))
	assert.True(t, m.Has(8))

	m.Clear(2)
	assert.False(t, m.Has(2))
}

func TestMessage_SetErrors(t *testing.T) {
	user, address := userDescriptor()
	m := New(user)

	assert.ErrorIs(t, m.Set(1, int32(1)), ErrInvalidValue)
	assert.ErrorIs(t, m.Set(3, "not a list"), ErrInvalidValue)
	assert.ErrorIs(t, m.Set(3, []any{"ok", 1}), ErrInvalidValue)
	assert.ErrorIs(t, m.Set(4, New(user)), ErrInvalidValue)
	assert.ErrorIs(t, m.Append(1, int64(1)), ErrInvalidValue)
	assert.ErrorIs(t, m.Set(42, int64(1)), ErrUnknownField)

	require.NoError(t, m.Set(4, New(address)))
	assert.True(t, m.Has(4))
}

func TestMessage_Repeated(t *testing.T) {
	user, _ := userDescriptor()
	m := New(user)

	require.NoError(t, m.Append(3, "a"))
	require.NoError(t, m.Append(3, "b"))
	assert.Equal(t, []any{"a", "b"}, m.List(3))
	assert.True(t, m.Has(3))

	input := []any{"x"}
	require.NoError(t, m.Set(3, input))
	input[0] = "mutated"
	assert.Equal(t, []any{"x"}, m.List(3), "Set copies the list")

	require.NoError(t, m.Set(3, nil))
	assert.False(t, m.Has(3))
}

func TestMessage_Oneof(t *testing.T) {
	user, address := userDescriptor()
	m := New(user)

	require.NoError(t, m.Set(5, "a@example.com"))
	assert.Equal(t, int32(5), m.WhichOneof(0))

	require.NoError(t, m.Set(6, "555"))
	assert.Equal(t, int32(6), m.WhichOneof(0))
	assert.False(t, m.Has(5))
	assert.Equal(t, "", m.Get(5))

	home := New(address)
	require.NoError(t, m.Set(7, home))
	assert.False(t, m.Has(6))

	require.NoError(t, m.Set(5, "b@example.com"))
	assert.True(t, home.Released(), "replaced oneof message is released")

	m.Clear(5)
	assert.Equal(t, int32(0), m.WhichOneof(0))
	assert.Equal(t, int32(0), m.WhichOneof(3))
}

func TestMessage_Range(t *testing.T) {
	user, address := userDescriptor()
	m := New(user)
	addr := New(address)
	require.NoError(t, addr.Set(1, "Oslo"))

	require.NoError(t, m.Set(4, addr))
	require.NoError(t, m.Set(1, int64(9)))
	require.NoError(t, m.Append(3, "t"))

	var numbers []int32
	m.Range(func(fd *schema.FieldDescriptor, v any) bool {
		numbers = append(numbers, fd.Number)
		return true
	})
	assert.Equal(t, []int32{1, 3, 4}, numbers)

	numbers = nil
	m.Range(func(fd *schema.FieldDescriptor, v any) bool {
		numbers = append(numbers, fd.Number)
		return false
	})
	assert.Equal(t, []int32{1}, numbers)
}

func TestMessage_Unknown(t *testing.T) {
	user, address := userDescriptor()
	m := New(user)
	addr := New(address)
	require.NoError(t, m.Set(4, addr))

	fields := UnknownFields{
		{Tag: 99<<3 | 2, Data: []byte{0x03, 'a', 'b', 'c'}},
		{Tag: 100 << 3, Data: []byte{0x01}},
	}
	for _, f := range fields {
		m.AddUnknown(f)
	}
	addr.AddUnknown(fields[0])

	if diff := cmp.Diff(fields, m.Unknown()); diff != "" {
		t.Errorf("unknown fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []byte("abc"), m.Unknown()[0].Payload())
	assert.Equal(t, []byte{0x01}, m.Unknown()[1].Payload())
	assert.Equal(t, 2+4+2+1, m.Unknown().Size())

	clone := m.Unknown().Clone()
	clone[0].Data[1] = 'z'
	assert.Equal(t, byte('a'), m.Unknown()[0].Data[1])
	assert.False(t, clone.Equal(m.Unknown()))

	m.DiscardUnknown()
	assert.Empty(t, m.Unknown())
	assert.Empty(t, addr.Unknown())
}

func TestMessage_Release(t *testing.T) {
	user, address := userDescriptor()
	m := New(user)
	addr := New(address)
	past := New(address)
	require.NoError(t, m.Set(4, addr))
	require.NoError(t, m.Append(9, past))
	m.AddUnknown(UnknownField{Tag: 8, Data: []byte{1}})

	m.Release()
	m.Release()

	assert.True(t, m.Released())
	assert.True(t, addr.Released())
	assert.True(t, past.Released())
	assert.Empty(t, m.Unknown())
	assert.False(t, m.Has(4))
	assert.ErrorIs(t, m.Set(1, int64(1)), ErrReleased)
	assert.ErrorIs(t, m.Append(3, "x"), ErrReleased)

	var nilMsg *Message
	nilMsg.Release()
}

func TestMessage_ReplaceReleasesOld(t *testing.T) {
	user, address := userDescriptor()
	m := New(user)

	first := New(address)
	second := New(address)
	require.NoError(t, m.Set(4, first))
	require.NoError(t, m.Set(4, second))
	assert.True(t, first.Released())
	assert.False(t, second.Released())

	a, b := New(address), New(address)
	require.NoError(t, m.Set(9, []any{a, b}))
	require.NoError(t, m.Set(9, []any{b}))
	assert.True(t, a.Released())
	assert.False(t, b.Released())
}

func TestMessage_Equal(t *testing.T) {
	user, address := userDescriptor()
	build := func(city string) *Message {
		m := New(user)
		addr := New(address)
		_ = addr.Set(1, city)
		_ = m.Set(4, addr)
		_ = m.Set(1, int64(3))
		_ = m.Append(3, "t")
		return m
	}

	assert.True(t, build("Oslo").Equal(build("Oslo")))
	assert.False(t, build("Oslo").Equal(build("Bergen")))

	withUnknown := build("Oslo")
	withUnknown.AddUnknown(UnknownField{Tag: 800, Data: []byte{0}})
	assert.False(t, build("Oslo").Equal(withUnknown))

	explicitEmpty := New(user)
	_ = explicitEmpty.Set(2, "")
	assert.False(t, New(user).Equal(explicitEmpty), "presence is part of equality")

	var nilMsg *Message
	assert.True(t, nilMsg.Equal(nil))
	assert.False(t, nilMsg.Equal(New(user)))
}

func TestZero(t *testing.T) {
	tests := []struct {
		t    schema.Type
		want any
	}{
		{schema.TypeInt32, int32(0)},
		{schema.TypeEnum, int32(0)},
		{schema.TypeSfixed64, int64(0)},
		{schema.TypeFixed32, uint32(0)},
		{schema.TypeUint64, uint64(0)},
		{schema.TypeFloat, float32(0)},
		{schema.TypeDouble, float64(0)},
		{schema.TypeBool, false},
		{schema.TypeString, ""},
		{schema.TypeBytes, []byte(nil)},
		{schema.TypeMessage, (*Message)(nil)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Zero(tt.t), tt.t.String())
	}
}
