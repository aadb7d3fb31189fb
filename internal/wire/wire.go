package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

var (
	// ErrNonStringTag is returned when an encoded event carries a non-string tag value
	ErrNonStringTag = errors.New("tag value must be a string")
	// ErrUnknownFormat is returned when an event format name cannot be resolved
	ErrUnknownFormat = errors.New("unknown event format")
)

// maxLineSize bounds a single JSON lines record
const maxLineSize = 1 << 20

// Format identifies how a stream of events is framed.
type Format int

const (
	// FormatJSONLines is one JSON object of string tags per line
	FormatJSONLines Format = iota

	// FormatProto is a sequence of length-delimited google.protobuf.Struct messages
	FormatProto
)

// String returns the configuration name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSONLines:
		return "jsonl"
	case FormatProto:
		return "proto"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat resolves "jsonl" or "proto" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jsonl", "json":
		return FormatJSONLines, nil
	case "proto", "protobuf":
		return FormatProto, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// EventReader yields decoded events until it returns io.EOF.
type EventReader interface {
	Decode() (tagsub.Event, error)
}

// NewReader returns an EventReader for r in the given format.
func NewReader(format Format, r io.Reader) (EventReader, error) {
	switch format {
	case FormatJSONLines:
		return NewJSONDecoder(r), nil
	case FormatProto:
		return NewDecoder(r), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
}

// ToStruct converts an event to its protobuf representation.
func ToStruct(evt tagsub.Event) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(evt.Tags))
	for k, v := range evt.Tags {
		fields[k] = structpb.NewStringValue(v)
	}
	return &structpb.Struct{Fields: fields}
}

// FromStruct converts a protobuf struct to an event. Every field must be a string.
func FromStruct(s *structpb.Struct) (tagsub.Event, error) {
	tags := make(map[string]string, len(s.GetFields()))
	for k, v := range s.GetFields() {
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return tagsub.Event{}, fmt.Errorf("%w: tag %q", ErrNonStringTag, k)
		}
		tags[k] = sv.StringValue
	}
	return tagsub.Event{Tags: tags}, nil
}

// Encoder writes length-delimited protobuf events.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one event.
func (e *Encoder) Encode(evt tagsub.Event) error {
	if _, err := protodelim.MarshalTo(e.w, ToStruct(evt)); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// Decoder reads length-delimited protobuf events.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next event. It returns io.EOF once the stream is exhausted.
func (d *Decoder) Decode() (tagsub.Event, error) {
	var s structpb.Struct
	if err := protodelim.UnmarshalFrom(d.r, &s); err != nil {
		if errors.Is(err, io.EOF) {
			return tagsub.Event{}, io.EOF
		}
		return tagsub.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return FromStruct(&s)
}

// JSONDecoder reads one JSON object per line. Blank lines are skipped.
type JSONDecoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewJSONDecoder creates a JSONDecoder reading from r.
func NewJSONDecoder(r io.Reader) *JSONDecoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &JSONDecoder{scanner: scanner}
}

// Decode reads the next event. It returns io.EOF once the stream is exhausted.
func (d *JSONDecoder) Decode() (tagsub.Event, error) {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var s structpb.Struct
		if err := protojson.Unmarshal(line, &s); err != nil {
			return tagsub.Event{}, fmt.Errorf("line %d: invalid event: %w", d.line, err)
		}
		evt, err := FromStruct(&s)
		if err != nil {
			return tagsub.Event{}, fmt.Errorf("line %d: %w", d.line, err)
		}
		return evt, nil
	}
	if err := d.scanner.Err(); err != nil {
		return tagsub.Event{}, fmt.Errorf("failed to read events: %w", err)
	}
	return tagsub.Event{}, io.EOF
}

// ReadAll decodes every remaining event from r.
func ReadAll(r EventReader) ([]tagsub.Event, error) {
	var events []tagsub.Event
	for {
		evt, err := r.Decode()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, evt)
	}
}

// JSONEncoder writes one JSON object per line.
type JSONEncoder struct {
	w io.Writer
}

// NewJSONEncoder creates a JSONEncoder writing to w.
func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

// Encode writes one event followed by a newline.
func (e *JSONEncoder) Encode(evt tagsub.Event) error {
	b, err := protojson.MarshalOptions{Multiline: false}.Marshal(ToStruct(evt))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := e.w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}
