package protodesc

import (
	"github.com/gotomicro/ekit/bean/option"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/registry"
	"github.com/anirudhraja/protodesc/schema"
	"github.com/anirudhraja/protodesc/wire"
)

// ===== DESCRIPTOR-DRIVEN API =====

// Protodesc decodes and encodes protobuf messages from runtime descriptors,
// without generated code.
type Protodesc struct {
	registry *registry.Registry
	config   wire.Config
}

// WithMaxDepth bounds message nesting on decode and encode.
func WithMaxDepth(depth int) option.Option[Protodesc] {
	return func(p *Protodesc) {
		p.config.MaxDepth = depth
	}
}

// WithMaxMessageSize caps encoded message and decode input sizes.
func WithMaxMessageSize(size int) option.Option[Protodesc] {
	return func(p *Protodesc) {
		p.config.MaxMessageSize = size
	}
}

// WithDiscardUnknown drops unknown fields while decoding.
func WithDiscardUnknown() option.Option[Protodesc] {
	return func(p *Protodesc) {
		p.config.DiscardUnknown = true
	}
}

// WithLogger sets the logger for codec and registry debug events.
func WithLogger(l zerolog.Logger) option.Option[Protodesc] {
	return func(p *Protodesc) {
		p.config.Logger = l
	}
}

// WithRegistry uses an existing registry instead of a private one.
func WithRegistry(r *registry.Registry) option.Option[Protodesc] {
	return func(p *Protodesc) {
		p.registry = r
	}
}

// New creates a new Protodesc instance starting from the global wire config.
func New(opts ...option.Option[Protodesc]) *Protodesc {
	p := &Protodesc{config: wire.CurrentConfig()}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = registry.NewRegistry(registry.WithLogger(p.config.Logger))
	}
	return p
}

// Register adds a descriptor (and everything it references) to the registry.
func (p *Protodesc) Register(d schema.Descriptor) error {
	return p.registry.Register(d)
}

// Freeze ends registration; the instance is then safe for concurrent use.
func (p *Protodesc) Freeze() { p.registry.Freeze() }

// NewMessage returns an empty instance of the named message type.
func (p *Protodesc) NewMessage(messageType string) (*message.Message, error) {
	md, err := p.registry.GetMessage(messageType)
	if err != nil {
		return nil, errors.Wrap(err, "message type not found")
	}
	return p.registry.New(md), nil
}

// Decode decodes protobuf bytes as the named message type.
func (p *Protodesc) Decode(messageType string, data []byte) (*message.Message, error) {
	md, err := p.registry.GetMessage(messageType)
	if err != nil {
		return nil, errors.Wrap(err, "message type not found")
	}
	return p.DecodeDescriptor(md, data)
}

// DecodeDescriptor decodes protobuf bytes with an explicit descriptor. md need
// not be registered; it is validated on first use.
func (p *Protodesc) DecodeDescriptor(md *schema.MessageDescriptor, data []byte) (*message.Message, error) {
	return wire.DecodeMessageWithConfig(data, md, p.registry, p.config)
}

// DecodeRaw splits protobuf bytes into fields without any descriptor.
func (p *Protodesc) DecodeRaw(data []byte) (message.UnknownFields, error) {
	return wire.DecodeRawWithConfig(data, p.config)
}

// Encode encodes a message deterministically.
func (p *Protodesc) Encode(m *message.Message) ([]byte, error) {
	return wire.EncodeMessageWithConfig(m, p.config)
}

// Size returns the encoded size of m.
func (p *Protodesc) Size(m *message.Message) (int, error) {
	return wire.SizeWithConfig(m, p.config)
}

// Release frees a message tree returned by Decode or NewMessage.
func (p *Protodesc) Release(m *message.Message) { m.Release() }

// ===== REGISTRY ACCESS =====

func (p *Protodesc) GetRegistry() *registry.Registry { return p.registry }
func (p *Protodesc) ListMessages() []string          { return p.registry.ListMessages() }
func (p *Protodesc) ListEnums() []string             { return p.registry.ListEnums() }
func (p *Protodesc) ListServices() []string          { return p.registry.ListServices() }
