package object

import (
	"bytes"
	"fmt"
)

// KVLM is the key-value-list-with-message layout shared by commits and
// tags:
//
//	tree 29ff16c9c14e2652b22f8b78bb08a5a07930c147
//	parent 206941306e8a8af65b66eaaaea388a7ae24d49a0
//	author Thibault Polge <thibault@thb.lt> 1527025023 +0200
//
//	message
//
// Keys keep their first-seen order. A key may repeat; its values keep
// encounter order. Values spanning several lines are folded with a leading
// space on each continuation line.
//
// The zero value is an empty KVLM ready to use.
type KVLM struct {
	keys    []string
	values  map[string][][]byte
	message []byte
}

// Keys returns the keys in first-seen order.
func (k *KVLM) Keys() []string {
	out := make([]string, len(k.keys))
	copy(out, k.keys)
	return out
}

// Get returns the first value stored for key, or nil.
func (k *KVLM) Get(key string) []byte {
	vals := k.values[key]
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

// Values returns every value stored for key in encounter order.
func (k *KVLM) Values(key string) [][]byte {
	return k.values[key]
}

// Add appends a value for key, keeping any earlier values.
func (k *KVLM) Add(key string, value []byte) {
	if k.values == nil {
		k.values = make(map[string][][]byte)
	}
	if _, ok := k.values[key]; !ok {
		k.keys = append(k.keys, key)
	}
	v := make([]byte, len(value))
	copy(v, value)
	k.values[key] = append(k.values[key], v)
}

// Set replaces all values for key with value. A new key goes last.
func (k *KVLM) Set(key string, value []byte) {
	if k.values != nil {
		if _, ok := k.values[key]; ok {
			v := make([]byte, len(value))
			copy(v, value)
			k.values[key] = [][]byte{v}
			return
		}
	}
	k.Add(key, value)
}

// Delete removes key and all of its values.
func (k *KVLM) Delete(key string) {
	if _, ok := k.values[key]; !ok {
		return
	}
	delete(k.values, key)
	for i, existing := range k.keys {
		if existing == key {
			k.keys = append(k.keys[:i], k.keys[i+1:]...)
			break
		}
	}
}

// Message returns the free-text message.
func (k *KVLM) Message() []byte {
	return k.message
}

// SetMessage replaces the free-text message.
func (k *KVLM) SetMessage(msg []byte) {
	k.message = make([]byte, len(msg))
	copy(k.message, msg)
}

func (k *KVLM) clone() KVLM {
	out := KVLM{message: append([]byte(nil), k.message...)}
	for _, key := range k.keys {
		for _, v := range k.values[key] {
			out.Add(key, v)
		}
	}
	return out
}

// Equal reports whether both KVLMs hold the same keys, values and message
// in the same order.
func (k KVLM) Equal(o KVLM) bool {
	if len(k.keys) != len(o.keys) || !bytes.Equal(k.message, o.message) {
		return false
	}
	for i, key := range k.keys {
		if o.keys[i] != key {
			return false
		}
		a, b := k.values[key], o.values[key]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if !bytes.Equal(a[j], b[j]) {
				return false
			}
		}
	}
	return true
}

// MarshalKVLM serializes k. Keys come out in first-seen order with one line
// per value, then a blank line, then the message.
func MarshalKVLM(k *KVLM) []byte {
	var buf bytes.Buffer
	for _, key := range k.keys {
		for _, v := range k.values[key] {
			buf.WriteString(key)
			buf.WriteByte(' ')
			buf.Write(bytes.ReplaceAll(v, []byte("\n"), []byte("\n ")))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(k.message)
	return buf.Bytes()
}

// UnmarshalKVLM parses the KVLM layout. The first empty line starts the
// message, which runs verbatim to the end of data; nothing after it is
// parsed as a header. Data that never reaches an empty line is malformed.
func UnmarshalKVLM(data []byte) (*KVLM, error) {
	k := &KVLM{}
	pos := 0
	for {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl < 0 {
			return nil, fmt.Errorf("%w: kvlm: missing blank line before message", ErrMalformedObject)
		}
		nl += pos

		spc := bytes.IndexByte(data[pos:nl], ' ')
		if spc < 0 {
			if nl != pos {
				return nil, fmt.Errorf("%w: kvlm: header line %q has no value", ErrMalformedObject, data[pos:nl])
			}
			k.message = make([]byte, len(data)-nl-1)
			copy(k.message, data[nl+1:])
			return k, nil
		}
		spc += pos
		if spc == pos {
			return nil, fmt.Errorf("%w: kvlm: empty key at offset %d", ErrMalformedObject, pos)
		}

		// The value ends at the first newline not followed by a
		// continuation space.
		end := spc
		for {
			next := bytes.IndexByte(data[end+1:], '\n')
			if next < 0 {
				return nil, fmt.Errorf("%w: kvlm: unterminated value for key %q", ErrMalformedObject, data[pos:spc])
			}
			end += 1 + next
			if end+1 >= len(data) || data[end+1] != ' ' {
				break
			}
		}

		key := string(data[pos:spc])
		k.Add(key, bytes.ReplaceAll(data[spc+1:end], []byte("\n "), []byte("\n")))
		pos = end + 1
	}
}
