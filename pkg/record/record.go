// Package record implements the Mello stream record: one text line per
// device cycle carrying initial, measured and reported joint positions.
//
// The line is a flow mapping with single-quoted keys:
//
//	{'iniital_positions': [..7], 'measured_positions': [..7], 'joint_positions:': [..7]}
//
// The key spellings, including the typo and the trailing colon, are part of
// the wire contract and must not be corrected.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/mello/pkg/robot"
)

// Wire keys.
const (
	KeyInitial  = "iniital_positions"
	KeyMeasured = "measured_positions"
	KeyJoints   = "joint_positions:"
)

// ErrMalformed wraps every decode failure.
var ErrMalformed = errors.New("malformed record")

// Record is one decoded stream line.
type Record struct {
	Initial  [robot.NumChannels]float64
	Measured [robot.NumChannels]float64

	// Joints holds the reported positions. A device that does not send the
	// jog channel produces six entries; HasJog is false in that case.
	Joints [robot.NumChannels]float64
	HasJog bool
}

// Jog returns the jog channel value and whether the record carried one.
func (r Record) Jog() (float64, bool) {
	return r.Joints[robot.JogChannel], r.HasJog
}

type wireRecord struct {
	Initial  yaml.Node `yaml:"iniital_positions"`
	Measured yaml.Node `yaml:"measured_positions"`
	Joints   yaml.Node `yaml:"joint_positions:"`
}

// Decode parses one line. Missing or unknown keys, wrong list lengths,
// nulls and non-finite or non-numeric values are rejected.
func Decode(line []byte) (Record, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Record{}, fmt.Errorf("%w: empty line", ErrMalformed)
	}
	if line[0] != '{' {
		return Record{}, fmt.Errorf("%w: not a mapping", ErrMalformed)
	}

	var w wireRecord
	dec := yaml.NewDecoder(bytes.NewReader(line))
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var rec Record
	if _, err := numbers(&w.Initial, KeyInitial, rec.Initial[:], robot.NumChannels); err != nil {
		return Record{}, err
	}
	if _, err := numbers(&w.Measured, KeyMeasured, rec.Measured[:], robot.NumChannels); err != nil {
		return Record{}, err
	}
	n, err := numbers(&w.Joints, KeyJoints, rec.Joints[:], robot.NumJoints)
	if err != nil {
		return Record{}, err
	}
	rec.HasJog = n == robot.NumChannels

	return rec, nil
}

// numbers decodes a sequence of at least min and at most len(dst) numbers into dst.
func numbers(n *yaml.Node, key string, dst []float64, min int) (int, error) {
	switch {
	case n.Kind == 0:
		return 0, fmt.Errorf("%w: missing %q", ErrMalformed, key)
	case n.Kind != yaml.SequenceNode:
		return 0, fmt.Errorf("%w: %q is not a list", ErrMalformed, key)
	case len(n.Content) < min || len(n.Content) > len(dst):
		if min == len(dst) {
			return 0, fmt.Errorf("%w: %q has %d values, want %d", ErrMalformed, key, len(n.Content), len(dst))
		}
		return 0, fmt.Errorf("%w: %q has %d values, want %d-%d", ErrMalformed, key, len(n.Content), min, len(dst))
	}

	for i, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return 0, fmt.Errorf("%w: %q[%d] is not a number", ErrMalformed, key, i)
		}
		switch item.ShortTag() {
		case "!!int":
			if legacyOctal(item.Value) {
				return 0, fmt.Errorf("%w: %q[%d] = %q has a leading zero", ErrMalformed, key, i, item.Value)
			}
		case "!!float":
		default:
			return 0, fmt.Errorf("%w: %q[%d] = %q is not a number", ErrMalformed, key, i, item.Value)
		}
		var v float64
		if err := item.Decode(&v); err != nil {
			return 0, fmt.Errorf("%w: %q[%d]: %v", ErrMalformed, key, i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q[%d] is not finite", ErrMalformed, key, i)
		}
		dst[i] = v
	}
	return len(n.Content), nil
}

// legacyOctal reports whether an integer literal has a leading zero followed
// by a non-zero digit, like 017. Prefixed forms (0o17, 0b101, 0x1f) and
// runs of zeros are valid integers on the device.
func legacyOctal(v string) bool {
	v = strings.ReplaceAll(strings.TrimLeft(v, "+-"), "_", "")
	if len(v) < 2 || v[0] != '0' || v[1] < '0' || v[1] > '9' {
		return false
	}
	return strings.Trim(v, "0") != ""
}

// Append appends the encoded record to buf, without a trailing newline.
func Append(buf []byte, initial, measured, joints *[robot.NumChannels]float64) []byte {
	buf = append(buf, '{')
	buf = appendList(buf, KeyInitial, initial)
	buf = append(buf, ", "...)
	buf = appendList(buf, KeyMeasured, measured)
	buf = append(buf, ", "...)
	buf = appendList(buf, KeyJoints, joints)
	return append(buf, '}')
}

func appendList(buf []byte, key string, values *[robot.NumChannels]float64) []byte {
	buf = append(buf, '\'')
	buf = append(buf, key...)
	buf = append(buf, "': ["...)
	for i, v := range values {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = appendNumber(buf, v)
	}
	return append(buf, ']')
}

// appendNumber writes integral values without a fraction and everything else
// in the shortest form that parses back to the same float64.
func appendNumber(buf []byte, v float64) []byte {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		if v == 0 {
			return append(buf, '0')
		}
		return strconv.AppendInt(buf, int64(v), 10)
	}
	return strconv.AppendFloat(buf, v, 'g', -1, 64)
}

// Encode returns the record as a newline-terminated line.
func Encode(initial, measured, joints *[robot.NumChannels]float64) []byte {
	buf := make([]byte, 0, 256)
	buf = Append(buf, initial, measured, joints)
	return append(buf, '\n')
}
