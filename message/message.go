package message

import (
	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/schema"
)

var (
	ErrUnknownField = errors.New("message: unknown field")
	ErrInvalidValue = errors.New("message: invalid value")
	ErrReleased     = errors.New("message: use after release")
)

// Message is a dynamic message instance. Field values live in a slot table
// addressed through the descriptor; repeated fields hold []any.
// A Message is not safe for concurrent mutation.
type Message struct {
	desc     *schema.MessageDescriptor
	values   []any
	present  []bool
	oneofs   []int32 // selected field number per oneof group, 0 when none
	unknown  UnknownFields
	released bool
}

// New returns a zero-initialised instance of md.
func New(md *schema.MessageDescriptor) *Message {
	return &Message{
		desc:    md,
		values:  make([]any, md.Size),
		present: make([]bool, md.Size),
		oneofs:  make([]int32, len(md.Oneofs)),
	}
}

func (m *Message) Descriptor() *schema.MessageDescriptor { return m.desc }
func (m *Message) Released() bool                        { return m.released }

func (m *Message) field(number int32) (*schema.FieldDescriptor, error) {
	if err := m.desc.Check(); err != nil {
		return nil, errors.WithStack(err)
	}
	fd := m.desc.FieldByNumber(number)
	if fd == nil {
		return nil, errors.Wrapf(ErrUnknownField, "%s has no field %d", m.desc.FullName(), number)
	}
	return fd, nil
}

// Get returns the value of a field: the stored value, the field default when
// unset, a []any for repeated fields and a *Message (possibly nil) for
// message fields. Unknown numbers return nil.
func (m *Message) Get(number int32) any {
	fd := m.desc.FieldByNumber(number)
	if fd == nil {
		return nil
	}
	return m.get(fd)
}

func (m *Message) get(fd *schema.FieldDescriptor) any {
	if m.released {
		if fd.IsRepeated() {
			return []any(nil)
		}
		return defaultOf(fd)
	}
	v := m.values[fd.Slot]
	if fd.IsRepeated() {
		list, _ := v.([]any)
		return list
	}
	if v == nil {
		return defaultOf(fd)
	}
	return v
}

// List returns the elements of a repeated field. The slice is shared with the message.
func (m *Message) List(number int32) []any {
	list, _ := m.Get(number).([]any)
	return list
}

// Has reports whether the field is set: present for explicit-presence fields,
// non-empty for repeated fields, different from the default otherwise.
func (m *Message) Has(number int32) bool {
	fd := m.desc.FieldByNumber(number)
	if fd == nil || m.released {
		return false
	}
	return m.has(fd)
}

func (m *Message) has(fd *schema.FieldDescriptor) bool {
	v := m.values[fd.Slot]
	switch {
	case fd.IsRepeated():
		list, _ := v.([]any)
		return len(list) > 0
	case fd.HasPresence():
		return m.present[fd.Slot]
	default:
		return !isDefault(fd, v)
	}
}

// Populated reports whether fd is emitted on encode: required fields always,
// otherwise as Has.
func (m *Message) Populated(fd *schema.FieldDescriptor) bool {
	if m.released {
		return false
	}
	if fd.Label == schema.LabelRequired {
		return true
	}
	return m.has(fd)
}

// Set stores v in a field. Repeated fields take a []any which replaces the
// list. Setting a oneof member clears the other members of its group.
// A nil v clears the field.
func (m *Message) Set(number int32, v any) error {
	if m.released {
		return ErrReleased
	}
	fd, err := m.field(number)
	if err != nil {
		return err
	}
	if v == nil {
		m.clear(fd)
		return nil
	}
	if fd.IsRepeated() {
		list, ok := v.([]any)
		if !ok {
			return errors.Wrapf(ErrInvalidValue, "field %s: repeated value must be []any, got %T", fd.Name, v)
		}
		for _, e := range list {
			if err := checkElement(fd, e); err != nil {
				return err
			}
		}
		m.releaseReplaced(fd, list)
		m.values[fd.Slot] = append([]any(nil), list...)
		return nil
	}
	if err := checkElement(fd, v); err != nil {
		return err
	}
	m.store(fd, v)
	return nil
}

// store writes a validated singular value, handling oneof exclusivity.
func (m *Message) store(fd *schema.FieldDescriptor, v any) {
	if fd.InOneof() {
		m.selectOneof(fd)
	}
	if old, ok := m.values[fd.Slot].(*Message); ok && old != v {
		old.Release()
	}
	m.values[fd.Slot] = v
	m.present[fd.Slot] = true
}

func (m *Message) selectOneof(fd *schema.FieldDescriptor) {
	current := m.oneofs[fd.OneofIndex]
	if current != 0 && current != fd.Number {
		if other := m.desc.FieldByNumber(current); other != nil {
			m.clear(other)
		}
	}
	m.oneofs[fd.OneofIndex] = fd.Number
}

// Append adds one element to a repeated field.
func (m *Message) Append(number int32, v any) error {
	if m.released {
		return ErrReleased
	}
	fd, err := m.field(number)
	if err != nil {
		return err
	}
	if !fd.IsRepeated() {
		return errors.Wrapf(ErrInvalidValue, "field %s is not repeated", fd.Name)
	}
	if err := checkElement(fd, v); err != nil {
		return err
	}
	list, _ := m.values[fd.Slot].([]any)
	m.values[fd.Slot] = append(list, v)
	return nil
}

// Clear resets a field to its unset state, releasing nested messages.
func (m *Message) Clear(number int32) {
	if m.released {
		return
	}
	if fd := m.desc.FieldByNumber(number); fd != nil {
		m.clear(fd)
	}
}

func (m *Message) clear(fd *schema.FieldDescriptor) {
	m.releaseSlot(fd)
	m.values[fd.Slot] = nil
	m.present[fd.Slot] = false
	if fd.InOneof() && m.oneofs[fd.OneofIndex] == fd.Number {
		m.oneofs[fd.OneofIndex] = 0
	}
}

func (m *Message) releaseSlot(fd *schema.FieldDescriptor) {
	if fd.Type != schema.TypeMessage {
		return
	}
	switch v := m.values[fd.Slot].(type) {
	case *Message:
		v.Release()
	case []any:
		for _, e := range v {
			if nested, ok := e.(*Message); ok {
				nested.Release()
			}
		}
	}
}

// releaseReplaced releases nested messages of the current list that are not
// carried over into next.
func (m *Message) releaseReplaced(fd *schema.FieldDescriptor, next []any) {
	if fd.Type != schema.TypeMessage {
		return
	}
	keep := make(map[*Message]struct{}, len(next))
	for _, e := range next {
		keep[e.(*Message)] = struct{}{}
	}
	old, _ := m.values[fd.Slot].([]any)
	for _, e := range old {
		nested := e.(*Message)
		if _, ok := keep[nested]; !ok {
			nested.Release()
		}
	}
}

// WhichOneof returns the field number selected in oneof group index, or 0.
func (m *Message) WhichOneof(index int) int32 {
	if m.released || index < 0 || index >= len(m.oneofs) {
		return 0
	}
	return m.oneofs[index]
}

// Range calls fn for every populated field in ascending field number order.
func (m *Message) Range(fn func(fd *schema.FieldDescriptor, v any) bool) {
	if m.released {
		return
	}
	for _, fd := range m.desc.SortedFields() {
		if !m.Populated(fd) {
			continue
		}
		if !fn(fd, m.get(fd)) {
			return
		}
	}
}

// Unknown returns the unknown field store. The slice is shared with the message.
func (m *Message) Unknown() UnknownFields { return m.unknown }

// AddUnknown appends one unknown field.
func (m *Message) AddUnknown(f UnknownField) {
	if m.released {
		return
	}
	m.unknown = append(m.unknown, f)
}

// DiscardUnknown drops the unknown field store of m and every nested message.
func (m *Message) DiscardUnknown() {
	m.unknown = nil
	m.Range(func(fd *schema.FieldDescriptor, v any) bool {
		switch x := v.(type) {
		case *Message:
			if x != nil {
				x.DiscardUnknown()
			}
		case []any:
			for _, e := range x {
				if nested, ok := e.(*Message); ok {
					nested.DiscardUnknown()
				}
			}
		}
		return true
	})
}

// Release drops every buffer the message owns, including nested messages,
// repeated lists and the unknown field store. The message must not be used
// afterwards; Set and Append return ErrReleased.
func (m *Message) Release() {
	if m == nil || m.released {
		return
	}
	for _, fd := range m.desc.Fields {
		m.releaseSlot(fd)
	}
	m.values = nil
	m.present = nil
	m.oneofs = nil
	m.unknown = nil
	m.released = true
}

// Equal reports whether both messages share a descriptor and hold the same
// field values, presence and unknown fields.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.desc != other.desc || m.released != other.released {
		return false
	}
	if m.released {
		return true
	}
	for _, fd := range m.desc.Fields {
		if m.has(fd) != other.has(fd) {
			return false
		}
		a, b := m.get(fd), other.get(fd)
		if fd.IsRepeated() {
			la, lb := a.([]any), b.([]any)
			if len(la) != len(lb) {
				return false
			}
			for i := range la {
				if !valueEqual(la[i], lb[i]) {
					return false
				}
			}
			continue
		}
		if !valueEqual(a, b) {
			return false
		}
	}
	return m.unknown.Equal(other.unknown)
}
