package wire

import (
	"math"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxDepth       = 100
	DefaultMaxMessageSize = math.MaxInt32
)

// Config controls limits and optional behaviours of the codec.
type Config struct {
	// MaxDepth bounds how many embedded messages (or unknown groups) may nest
	// below the top-level message, on decode and encode. Exceeding it fails
	// with ErrNestingTooDeep.
	MaxDepth int

	// MaxMessageSize caps the size of an encoded message and of decode input.
	// Larger buffers are refused with ErrAllocationFailure before allocating.
	MaxMessageSize int

	// DiscardUnknown drops unknown fields on decode instead of keeping them in
	// the message's unknown field store.
	DiscardUnknown bool

	// Logger receives debug events (unknown field routing). Defaults to a
	// disabled logger.
	Logger zerolog.Logger
}

// DefaultConfig returns the built-in limits with logging disabled.
func DefaultConfig() Config {
	return Config{
		MaxDepth:       DefaultMaxDepth,
		MaxMessageSize: DefaultMaxMessageSize,
		Logger:         zerolog.Nop(),
	}
}

var config = DefaultConfig()

// SetConfig sets the global wire configuration used by DecodeMessage and
// EncodeMessage. Call it before decoding or encoding starts; it is not
// synchronised with concurrent codec calls.
func SetConfig(c Config) { config = c.normalize() }

// CurrentConfig returns the global wire configuration.
func CurrentConfig() Config { return config }

func (c Config) normalize() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	return c
}

func init() {
	// Optional env toggles for test harnesses; defaults remain unchanged if unset.
	if v, err := strconv.Atoi(os.Getenv("PROTODESC_MAX_DEPTH")); err == nil && v > 0 {
		config.MaxDepth = v
	}
	if v, err := strconv.Atoi(os.Getenv("PROTODESC_MAX_MESSAGE_SIZE")); err == nil && v > 0 {
		config.MaxMessageSize = v
	}
	if v := os.Getenv("PROTODESC_DISCARD_UNKNOWN"); v == "1" || v == "true" {
		config.DiscardUnknown = true
	}
}
