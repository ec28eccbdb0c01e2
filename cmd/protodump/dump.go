package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/wire"
)

// parseHex accepts hex text with arbitrary whitespace, e.g. "08 96 01".
func parseHex(text []byte) ([]byte, error) {
	compact := strings.Join(strings.Fields(string(text)), "")
	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, errors.Wrap(err, "parse hex input")
	}
	return data, nil
}

// dump writes one line per field of data: "<number> <wiretype> <value>".
func dump(w io.Writer, data []byte, c wire.Config, nested bool) error {
	return dumpLevel(w, data, c, nested, 0)
}

func dumpLevel(w io.Writer, data []byte, c wire.Config, nested bool, depth int) error {
	fields, err := wire.DecodeRawWithConfig(data, c)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)
	for _, f := range fields {
		wireType := wire.WireType(f.WireType())
		if wireType == wire.WireBytes && nested && depth+1 < c.MaxDepth {
			if payload := f.Payload(); len(payload) > 0 && !printable(payload) {
				if _, err := wire.DecodeRawWithConfig(payload, c); err == nil {
					fmt.Fprintf(w, "%s%d %s {\n", indent, f.Number(), wireType)
					if err := dumpLevel(w, payload, c, nested, depth+1); err != nil {
						return err
					}
					fmt.Fprintf(w, "%s}\n", indent)
					continue
				}
			}
		}
		value, err := formatValue(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%d %s %s\n", indent, f.Number(), wireType, value)
	}
	return nil
}

func formatValue(f message.UnknownField) (string, error) {
	d := wire.NewDecoder(f.Data)
	switch wire.WireType(f.WireType()) {
	case wire.WireVarint:
		v, err := d.DecodeVarint()
		return strconv.FormatUint(v, 10), err
	case wire.WireFixed32:
		v, err := d.DecodeFixed32()
		return fmt.Sprintf("0x%08x", v), err
	case wire.WireFixed64:
		v, err := d.DecodeFixed64()
		return fmt.Sprintf("0x%016x", v), err
	case wire.WireBytes:
		payload := f.Payload()
		if printable(payload) {
			return strconv.Quote(string(payload)), nil
		}
		return hex.EncodeToString(payload), nil
	default:
		// raw group body, end tag included
		return hex.EncodeToString(f.Data), nil
	}
}

// printable reports whether b is valid UTF-8 text without control characters.
func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && r != ' ' {
			return false
		}
	}
	return true
}
