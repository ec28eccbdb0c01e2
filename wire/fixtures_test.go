package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/schema"
)

// scalarsDescriptor declares one implicit-presence field per scalar type.
func scalarsDescriptor() *schema.MessageDescriptor {
	f := func(name string, number int32, t schema.Type) *schema.FieldDescriptor {
		return &schema.FieldDescriptor{Name: name, Number: number, Type: t, Label: schema.LabelNone}
	}
	md := schema.NewMessageDescriptor("test", "Scalars",
		f("test_int32", 1, schema.TypeInt32),
		f("test_int64", 2, schema.TypeInt64),
		f("test_uint32", 3, schema.TypeUint32),
		f("test_uint64", 4, schema.TypeUint64),
		f("test_sint32", 5, schema.TypeSint32),
		f("test_sint64", 6, schema.TypeSint64),
		f("test_bool", 7, schema.TypeBool),
		f("test_enum", 8, schema.TypeEnum),
		f("test_fixed32", 9, schema.TypeFixed32),
		f("test_sfixed32", 10, schema.TypeSfixed32),
		f("test_float", 11, schema.TypeFloat),
		f("test_fixed64", 12, schema.TypeFixed64),
		f("test_sfixed64", 13, schema.TypeSfixed64),
		f("test_double", 14, schema.TypeDouble),
		f("test_string", 15, schema.TypeString),
		f("test_bytes", 16, schema.TypeBytes),
	)
	md.Fields[7].Ref = schema.EnumRef(&schema.EnumDescriptor{
		Package: "test",
		Name:    "Color",
		Values:  []*schema.EnumValue{{Name: "COLOR_UNSPECIFIED", Number: 0}, {Name: "COLOR_RED", Number: 1}},
	})
	return md
}

// listsDescriptor has a packed and an unpacked repeated int32 plus repeated strings.
func listsDescriptor() *schema.MessageDescriptor {
	return schema.NewMessageDescriptor("test", "Lists",
		&schema.FieldDescriptor{Name: "packed", Number: 4, Type: schema.TypeInt32, Label: schema.LabelRepeated, Flags: schema.FlagPacked},
		&schema.FieldDescriptor{Name: "expanded", Number: 5, Type: schema.TypeInt32, Label: schema.LabelRepeated},
		&schema.FieldDescriptor{Name: "names", Number: 6, Type: schema.TypeString, Label: schema.LabelRepeated},
		&schema.FieldDescriptor{Name: "doubles", Number: 7, Type: schema.TypeDouble, Label: schema.LabelRepeated, Flags: schema.FlagPacked},
	)
}

// treeDescriptor is a self-referencing message: node { int32 value = 1; node child = 2; repeated node children = 3; }
func treeDescriptor() *schema.MessageDescriptor {
	md := schema.NewMessageDescriptor("test", "Node",
		&schema.FieldDescriptor{Name: "value", Number: 1, Type: schema.TypeInt32, Label: schema.LabelNone},
		&schema.FieldDescriptor{Name: "child", Number: 2, Type: schema.TypeMessage, Label: schema.LabelOptional},
		&schema.FieldDescriptor{Name: "children", Number: 3, Type: schema.TypeMessage, Label: schema.LabelRepeated},
	)
	md.Fields[1].Ref = schema.MessageRef(md)
	md.Fields[2].Ref = schema.MessageRef(md)
	return md
}

// choiceDescriptor has a oneof "kind" of a string, an int64 and a nested Node.
func choiceDescriptor() *schema.MessageDescriptor {
	md := schema.NewMessageDescriptor("test", "Choice",
		&schema.FieldDescriptor{Name: "id", Number: 1, Type: schema.TypeInt32, Label: schema.LabelNone},
		&schema.FieldDescriptor{Name: "text", Number: 2, Type: schema.TypeString, Label: schema.LabelOptional, Flags: schema.FlagOneof},
		&schema.FieldDescriptor{Name: "count", Number: 3, Type: schema.TypeInt64, Label: schema.LabelOptional, Flags: schema.FlagOneof},
		&schema.FieldDescriptor{Name: "node", Number: 4, Type: schema.TypeMessage, Label: schema.LabelOptional, Flags: schema.FlagOneof, Ref: schema.MessageRef(treeDescriptor())},
	)
	md.Oneofs = []string{"kind"}
	return md
}

// chain builds a Node nested depth levels below the returned root.
func chain(t *testing.T, md *schema.MessageDescriptor, depth int) *message.Message {
	t.Helper()
	root := message.New(md)
	current := root
	for i := 0; i < depth; i++ {
		child := message.New(md)
		require.NoError(t, child.Set(1, int32(i+1)))
		require.NoError(t, current.Set(2, child))
		current = child
	}
	return root
}

// nestedBytes builds the wire form of a Node chain depth levels deep by hand.
func nestedBytes(depth int) []byte {
	var payload []byte
	for i := 0; i < depth; i++ {
		e := NewEncoder()
		e.EncodeTag(2, WireBytes)
		e.EncodeBytes(payload)
		payload = e.Bytes()
	}
	return payload
}
