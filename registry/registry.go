package registry

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/gotomicro/ekit/bean/option"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/schema"
)

var (
	ErrNotFound  = errors.New("registry: descriptor not found")
	ErrAmbiguous = errors.New("registry: ambiguous short name")
	ErrDuplicate = errors.New("registry: duplicate descriptor name")
	ErrFrozen    = errors.New("registry: registry is frozen")
)

// Constructor returns a fresh, zero-initialised instance of md.
type Constructor func(md *schema.MessageDescriptor) *message.Message

// Registry stores descriptors by fully qualified name. We look them up when
// we need to decode or build a message.
//
// Registration is single-threaded and happens before use. After Freeze the
// registry is read-only and safe for any number of concurrent readers.
type Registry struct {
	messages map[string]*schema.MessageDescriptor // fully qualified name -> message
	enums    map[string]*schema.EnumDescriptor    // fully qualified name -> enum
	services map[string]*schema.ServiceDescriptor // fully qualified name -> service
	ctors    map[*schema.MessageDescriptor]Constructor
	frozen   atomic.Bool
	logger   zerolog.Logger
}

// WithLogger sets the logger used for registration events.
func WithLogger(l zerolog.Logger) option.Option[Registry] {
	return func(r *Registry) {
		r.logger = l
	}
}

func NewRegistry(opts ...option.Option[Registry]) *Registry {
	r := &Registry{
		messages: make(map[string]*schema.MessageDescriptor),
		enums:    make(map[string]*schema.EnumDescriptor),
		services: make(map[string]*schema.ServiceDescriptor),
		ctors:    make(map[*schema.MessageDescriptor]Constructor),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var global = NewRegistry()

// Global returns the process-wide registry.
func Global() *Registry { return global }

// Register adds a descriptor and every message or enum it references.
// Registering the same descriptor twice is a no-op.
func (r *Registry) Register(d schema.Descriptor) error {
	if r.frozen.Load() {
		return ErrFrozen
	}
	switch d.Kind() {
	case schema.KindMessage:
		md, _ := d.AsMessage()
		return r.registerMessage(md, make(map[*schema.MessageDescriptor]struct{}))
	case schema.KindEnum:
		ed, _ := d.AsEnum()
		return r.registerEnum(ed)
	case schema.KindService:
		sd, _ := d.AsService()
		return r.registerService(sd)
	default:
		return errors.Wrap(schema.ErrTypeMismatch, "registry: cannot register an empty descriptor")
	}
}

// RegisterMessage registers md with a custom constructor. A nil constructor
// keeps message.New.
func (r *Registry) RegisterMessage(md *schema.MessageDescriptor, ctor Constructor) error {
	if err := r.Register(schema.MessageRef(md)); err != nil {
		return err
	}
	if ctor != nil {
		r.ctors[md] = ctor
	}
	return nil
}

func (r *Registry) registerMessage(md *schema.MessageDescriptor, visited map[*schema.MessageDescriptor]struct{}) error {
	if _, seen := visited[md]; seen {
		return nil
	}
	visited[md] = struct{}{}

	if err := schema.Validate(md); err != nil {
		return err
	}
	name := md.FullName()
	if existing, ok := r.messages[name]; ok && existing != md {
		return errors.Wrapf(ErrDuplicate, "message %s", name)
	}
	if _, ok := r.messages[name]; !ok {
		r.messages[name] = md
		r.logger.Debug().Str("kind", "message").Str("name", name).Int("fields", len(md.Fields)).Msg("registered descriptor")
	}

	// Register nested references
	for _, f := range md.Fields {
		switch f.Type {
		case schema.TypeMessage:
			nested, _ := f.Ref.AsMessage()
			if err := r.registerMessage(nested, visited); err != nil {
				return errors.Wrapf(err, "field %s.%s", name, f.Name)
			}
		case schema.TypeEnum:
			ed, _ := f.Ref.AsEnum()
			if err := r.registerEnum(ed); err != nil {
				return errors.Wrapf(err, "field %s.%s", name, f.Name)
			}
		}
	}
	return nil
}

func (r *Registry) registerEnum(ed *schema.EnumDescriptor) error {
	if ed == nil {
		return errors.Wrap(schema.ErrInvalidDescriptor, "nil enum descriptor")
	}
	name := ed.FullName()
	if existing, ok := r.enums[name]; ok {
		if existing != ed {
			return errors.Wrapf(ErrDuplicate, "enum %s", name)
		}
		return nil
	}
	r.enums[name] = ed
	r.logger.Debug().Str("kind", "enum").Str("name", name).Int("values", len(ed.Values)).Msg("registered descriptor")
	return nil
}

func (r *Registry) registerService(sd *schema.ServiceDescriptor) error {
	if sd == nil {
		return errors.Wrap(schema.ErrInvalidDescriptor, "nil service descriptor")
	}
	name := sd.FullName()
	if existing, ok := r.services[name]; ok {
		if existing != sd {
			return errors.Wrapf(ErrDuplicate, "service %s", name)
		}
		return nil
	}
	visited := make(map[*schema.MessageDescriptor]struct{})
	for _, m := range sd.Methods {
		for _, ref := range []schema.Descriptor{m.Input, m.Output} {
			md, err := ref.AsMessage()
			if err != nil {
				return errors.Wrapf(err, "method %s.%s", name, m.Name)
			}
			if err := r.registerMessage(md, visited); err != nil {
				return errors.Wrapf(err, "method %s.%s", name, m.Name)
			}
		}
	}
	r.services[name] = sd
	r.logger.Debug().Str("kind", "service").Str("name", name).Int("methods", len(sd.Methods)).Msg("registered descriptor")
	return nil
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	if r.frozen.CompareAndSwap(false, true) {
		r.logger.Debug().Int("messages", len(r.messages)).Int("enums", len(r.enums)).Int("services", len(r.services)).Msg("registry frozen")
	}
}

func (r *Registry) Frozen() bool { return r.frozen.Load() }

// New builds an instance of md through its registered constructor.
func (r *Registry) New(md *schema.MessageDescriptor) *message.Message {
	if r != nil {
		if ctor, ok := r.ctors[md]; ok {
			return ctor(md)
		}
	}
	return message.New(md)
}

// GetMessage retrieves a message definition by name
func (r *Registry) GetMessage(name string) (*schema.MessageDescriptor, error) {
	md, err := lookup(r.messages, name)
	if err != nil {
		return nil, errors.Wrapf(err, "message %s", name)
	}
	return md, nil
}

// GetEnum retrieves an enum definition by name
func (r *Registry) GetEnum(name string) (*schema.EnumDescriptor, error) {
	ed, err := lookup(r.enums, name)
	if err != nil {
		return nil, errors.Wrapf(err, "enum %s", name)
	}
	return ed, nil
}

// GetService retrieves a service definition by name
func (r *Registry) GetService(name string) (*schema.ServiceDescriptor, error) {
	sd, err := lookup(r.services, name)
	if err != nil {
		return nil, errors.Wrapf(err, "service %s", name)
	}
	return sd, nil
}

// Lookup returns whichever descriptor is registered under the fully qualified name.
func (r *Registry) Lookup(name string) (schema.Descriptor, error) {
	name = strings.TrimPrefix(name, ".")
	if md, ok := r.messages[name]; ok {
		return schema.MessageRef(md), nil
	}
	if ed, ok := r.enums[name]; ok {
		return schema.EnumRef(ed), nil
	}
	if sd, ok := r.services[name]; ok {
		return schema.ServiceRef(sd), nil
	}
	return schema.Descriptor{}, errors.Wrapf(ErrNotFound, "%s", name)
}

// lookup finds name exactly, or as the unique entry ending in "."+name.
func lookup[T any](table map[string]T, name string) (T, error) {
	var zero T
	if v, ok := table[name]; ok {
		return v, nil
	}
	var (
		found T
		hits  int
	)
	for fullName, v := range table {
		if strings.HasSuffix(fullName, "."+name) {
			found = v
			hits++
		}
	}
	switch hits {
	case 0:
		return zero, ErrNotFound
	case 1:
		return found, nil
	default:
		return zero, ErrAmbiguous
	}
}

// ListMessages returns all registered message names
func (r *Registry) ListMessages() []string { return sortedKeys(r.messages) }

// ListEnums returns all registered enum names
func (r *Registry) ListEnums() []string { return sortedKeys(r.enums) }

// ListServices returns all registered service names
func (r *Registry) ListServices() []string { return sortedKeys(r.services) }

func sortedKeys[T any](table map[string]T) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
