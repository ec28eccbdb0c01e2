package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrTypeMismatch is returned when a Descriptor is used as the wrong kind.
var ErrTypeMismatch = errors.New("schema: descriptor type mismatch")

// Descriptor is a kind-tagged reference to a message, enum or service descriptor.
// The zero value refers to nothing.
type Descriptor struct {
	kind    Kind
	message *MessageDescriptor
	enum    *EnumDescriptor
	service *ServiceDescriptor
}

// MessageRef wraps a message descriptor.
func MessageRef(md *MessageDescriptor) Descriptor {
	if md == nil {
		return Descriptor{}
	}
	return Descriptor{kind: KindMessage, message: md}
}

// EnumRef wraps an enum descriptor.
func EnumRef(ed *EnumDescriptor) Descriptor {
	if ed == nil {
		return Descriptor{}
	}
	return Descriptor{kind: KindEnum, enum: ed}
}

// ServiceRef wraps a service descriptor.
func ServiceRef(sd *ServiceDescriptor) Descriptor {
	if sd == nil {
		return Descriptor{}
	}
	return Descriptor{kind: KindService, service: sd}
}

func (d Descriptor) Kind() Kind   { return d.kind }
func (d Descriptor) IsZero() bool { return d.kind == KindInvalid }

// AsMessage returns the message descriptor, or ErrTypeMismatch if d is not a message.
func (d Descriptor) AsMessage() (*MessageDescriptor, error) {
	if d.kind != KindMessage {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, KindMessage, d.kind)
	}
	return d.message, nil
}

// AsEnum returns the enum descriptor, or ErrTypeMismatch if d is not an enum.
func (d Descriptor) AsEnum() (*EnumDescriptor, error) {
	if d.kind != KindEnum {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, KindEnum, d.kind)
	}
	return d.enum, nil
}

// AsService returns the service descriptor, or ErrTypeMismatch if d is not a service.
func (d Descriptor) AsService() (*ServiceDescriptor, error) {
	if d.kind != KindService {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, KindService, d.kind)
	}
	return d.service, nil
}

// FullName returns the package-qualified name of the referenced descriptor.
func (d Descriptor) FullName() string {
	switch d.kind {
	case KindMessage:
		return d.message.FullName()
	case KindEnum:
		return d.enum.FullName()
	case KindService:
		return d.service.FullName()
	default:
		return ""
	}
}

// MessageDescriptor describes the shape of a message. It must not be modified
// once handed to a registry or codec.
type MessageDescriptor struct {
	Name    string             // "User"
	Package string             // "example.v1"
	Size    int                // number of value slots in an instance
	Fields  []*FieldDescriptor // declaration order
	Oneofs  []string           // oneof group names, indexed by FieldDescriptor.OneofIndex

	indexOnce sync.Once
	byNumber  []*FieldDescriptor // sorted by number
	byName    map[string]*FieldDescriptor

	checkOnce sync.Once
	checkErr  error
}

// NewMessageDescriptor builds a descriptor whose slots follow field order.
func NewMessageDescriptor(pkg, name string, fields ...*FieldDescriptor) *MessageDescriptor {
	for i, f := range fields {
		f.Slot = i
	}
	return &MessageDescriptor{
		Name:    name,
		Package: pkg,
		Size:    len(fields),
		Fields:  fields,
	}
}

func (md *MessageDescriptor) FullName() string {
	return fullName(md.Package, md.Name)
}

func (md *MessageDescriptor) buildIndex() {
	md.indexOnce.Do(func() {
		md.byNumber = make([]*FieldDescriptor, len(md.Fields))
		copy(md.byNumber, md.Fields)
		sort.SliceStable(md.byNumber, func(i, j int) bool {
			return md.byNumber[i].Number < md.byNumber[j].Number
		})
		md.byName = make(map[string]*FieldDescriptor, len(md.Fields))
		for _, f := range md.Fields {
			md.byName[f.Name] = f
		}
	})
}

// FieldByNumber returns the field with the given number, or nil.
func (md *MessageDescriptor) FieldByNumber(number int32) *FieldDescriptor {
	md.buildIndex()
	i := sort.Search(len(md.byNumber), func(i int) bool {
		return md.byNumber[i].Number >= number
	})
	if i < len(md.byNumber) && md.byNumber[i].Number == number {
		return md.byNumber[i]
	}
	return nil
}

// FieldByName returns the field with the given name, or nil.
func (md *MessageDescriptor) FieldByName(name string) *FieldDescriptor {
	md.buildIndex()
	return md.byName[name]
}

// SortedFields returns the fields in ascending number order. The slice is shared.
func (md *MessageDescriptor) SortedFields() []*FieldDescriptor {
	md.buildIndex()
	return md.byNumber
}

// OneofMembers returns the fields belonging to oneof group index.
func (md *MessageDescriptor) OneofMembers(index int) []*FieldDescriptor {
	var members []*FieldDescriptor
	for _, f := range md.Fields {
		if f.InOneof() && f.OneofIndex == index {
			members = append(members, f)
		}
	}
	return members
}

// FieldDescriptor describes one field of a message
type FieldDescriptor struct {
	Name       string
	Number     int32
	Label      Label
	Type       Type
	Slot       int        // index into the instance value table
	Ref        Descriptor // nested message or enum, for TypeMessage and TypeEnum
	Default    any        // Go value of the field type; nil means the type zero
	Flags      Flags
	OneofIndex int // valid when Flags has FlagOneof
}

func (f *FieldDescriptor) IsRepeated() bool { return f.Label == LabelRepeated }
func (f *FieldDescriptor) IsPacked() bool   { return f.Flags.Has(FlagPacked) }
func (f *FieldDescriptor) InOneof() bool    { return f.Flags.Has(FlagOneof) }

// HasPresence reports whether the field tracks set/unset explicitly rather than
// comparing against its default.
func (f *FieldDescriptor) HasPresence() bool {
	if f.Label == LabelRepeated {
		return false
	}
	return f.Label == LabelOptional || f.InOneof() || f.Type == TypeMessage
}

// Message returns the nested message descriptor of a message-typed field.
func (f *FieldDescriptor) Message() (*MessageDescriptor, error) {
	return f.Ref.AsMessage()
}

// Enum returns the enum descriptor of an enum-typed field.
func (f *FieldDescriptor) Enum() (*EnumDescriptor, error) {
	return f.Ref.AsEnum()
}

// EnumValue represents an enum value
type EnumValue struct {
	Name   string // "ACTIVE"
	Number int32  // 1
}

// EnumDescriptor represents an enum definition
type EnumDescriptor struct {
	Name    string
	Package string
	Values  []*EnumValue
}

func (ed *EnumDescriptor) FullName() string {
	return fullName(ed.Package, ed.Name)
}

// ValueByNumber returns the first value declared with number, or nil.
// A nil result is not an error: enums are open.
func (ed *EnumDescriptor) ValueByNumber(number int32) *EnumValue {
	for _, v := range ed.Values {
		if v.Number == number {
			return v
		}
	}
	return nil
}

func (ed *EnumDescriptor) ValueByName(name string) *EnumValue {
	for _, v := range ed.Values {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// ServiceDescriptor represents a service definition
type ServiceDescriptor struct {
	Name    string
	Package string
	Methods []*MethodDescriptor
}

func (sd *ServiceDescriptor) FullName() string {
	return fullName(sd.Package, sd.Name)
}

// MethodDescriptor represents a service method
type MethodDescriptor struct {
	Name            string
	Input           Descriptor
	Output          Descriptor
	ClientStreaming bool
	ServerStreaming bool
}

func fullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
