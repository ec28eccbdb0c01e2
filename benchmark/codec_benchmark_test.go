package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/anirudhraja/protodesc"
	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/schema"
)

// Global test data and clients
var (
	// Simple payload: a google.protobuf.Timestamp
	simplePayload    []byte
	simpleDescriptor *schema.MessageDescriptor
	dynamicTimestamp protoreflect.MessageDescriptor

	// Complex payload: nested records with packed and repeated fields
	complexPayload    []byte
	complexDescriptor *schema.MessageDescriptor

	client *protodesc.Protodesc
)

func init() {
	setupBenchmarkData()
}

func setupBenchmarkData() {
	var err error

	simpleDescriptor = schema.NewMessageDescriptor("google.protobuf", "Timestamp",
		&schema.FieldDescriptor{Name: "seconds", Number: 1, Type: schema.TypeInt64, Label: schema.LabelNone},
		&schema.FieldDescriptor{Name: "nanos", Number: 2, Type: schema.TypeInt32, Label: schema.LabelNone},
	)
	complexDescriptor = recordDescriptor()

	client = protodesc.New()
	for _, md := range []*schema.MessageDescriptor{simpleDescriptor, complexDescriptor} {
		if err := client.Register(schema.MessageRef(md)); err != nil {
			panic("Failed to register descriptor: " + err.Error())
		}
	}
	client.Freeze()

	simplePayload, err = proto.Marshal(timestamppb.New(time.Date(2024, 5, 1, 8, 0, 0, 999, time.UTC)))
	if err != nil {
		panic("Failed to create simple payload: " + err.Error())
	}
	dynamicTimestamp = (&timestamppb.Timestamp{}).ProtoReflect().Descriptor()

	complexPayload, err = client.Encode(createComplexRecord())
	if err != nil {
		panic("Failed to create complex payload: " + err.Error())
	}
}

// recordDescriptor: Record { string name = 1; repeated sint64 samples = 2 [packed]; repeated Record children = 3; repeated string tags = 4; double weight = 5; }
func recordDescriptor() *schema.MessageDescriptor {
	md := schema.NewMessageDescriptor("bench", "Record",
		&schema.FieldDescriptor{Name: "name", Number: 1, Type: schema.TypeString, Label: schema.LabelNone},
		&schema.FieldDescriptor{Name: "samples", Number: 2, Type: schema.TypeSint64, Label: schema.LabelRepeated, Flags: schema.FlagPacked},
		&schema.FieldDescriptor{Name: "children", Number: 3, Type: schema.TypeMessage, Label: schema.LabelRepeated},
		&schema.FieldDescriptor{Name: "tags", Number: 4, Type: schema.TypeString, Label: schema.LabelRepeated},
		&schema.FieldDescriptor{Name: "weight", Number: 5, Type: schema.TypeDouble, Label: schema.LabelNone},
	)
	md.Fields[2].Ref = schema.MessageRef(md)
	return md
}

func createComplexRecord() *message.Message {
	var build func(level int) *message.Message
	build = func(level int) *message.Message {
		m := message.New(complexDescriptor)
		_ = m.Set(1, "record")
		samples := make([]any, 32)
		for i := range samples {
			samples[i] = int64(i*1000 - 16000)
		}
		_ = m.Set(2, samples)
		_ = m.Set(4, []any{"alpha", "beta", "gamma"})
		_ = m.Set(5, 0.75)
		if level < 3 {
			for i := 0; i < 4; i++ {
				_ = m.Append(3, build(level+1))
			}
		}
		return m
	}
	return build(0)
}

func BenchmarkSimple_Protodesc(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m, err := client.DecodeDescriptor(simpleDescriptor, simplePayload)
		if err != nil {
			b.Fatal(err)
		}
		m.Release()
	}
}

func BenchmarkSimple_Protoc(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var ts timestamppb.Timestamp
		if err := proto.Unmarshal(simplePayload, &ts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSimple_DynamicPB(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m := dynamicpb.NewMessage(dynamicTimestamp)
		if err := proto.Unmarshal(simplePayload, m); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkComplex_Decode(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(complexPayload)))
	for i := 0; i < b.N; i++ {
		m, err := client.Decode("bench.Record", complexPayload)
		if err != nil {
			b.Fatal(err)
		}
		m.Release()
	}
}

func BenchmarkComplex_Encode(b *testing.B) {
	m, err := client.Decode("bench.Record", complexPayload)
	require.NoError(b, err)

	b.ReportAllocs()
	b.SetBytes(int64(len(complexPayload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := client.Encode(m); err != nil {
			b.Fatal(err)
		}
	}
}

func TestBenchmarkVerification(t *testing.T) {
	m, err := client.DecodeDescriptor(simpleDescriptor, simplePayload)
	require.NoError(t, err)

	var ts timestamppb.Timestamp
	require.NoError(t, proto.Unmarshal(simplePayload, &ts))
	require.Equal(t, ts.GetSeconds(), m.Get(1))
	require.Equal(t, ts.GetNanos(), m.Get(2))

	dyn := dynamicpb.NewMessage(dynamicTimestamp)
	require.NoError(t, proto.Unmarshal(simplePayload, dyn))
	require.Equal(t, dyn.Get(dynamicTimestamp.Fields().ByNumber(1)).Int(), m.Get(1))

	record, err := client.Decode("bench.Record", complexPayload)
	require.NoError(t, err)
	require.True(t, record.Equal(createComplexRecord()))

	out, err := client.Encode(record)
	require.NoError(t, err)
	require.Equal(t, complexPayload, out)
}
