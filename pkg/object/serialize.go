package object

import (
	"fmt"
)

// ParseType maps a header type tag to an ObjectType.
func ParseType(tag string) (ObjectType, error) {
	switch t := ObjectType(tag); t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return t, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownObjectType, tag)
	}
}

// Marshal encodes obj into the payload that follows the object header.
// The payload is what gets hashed and stored.
func Marshal(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case *Blob:
		return MarshalBlob(o), nil
	case *Tree:
		return MarshalTree(o)
	case *Commit:
		return MarshalCommit(o), nil
	case *Tag:
		return MarshalTag(o), nil
	case nil:
		return nil, fmt.Errorf("marshal: nil object")
	default:
		return nil, fmt.Errorf("marshal: %w %T", ErrUnknownObjectType, obj)
	}
}

// Unmarshal decodes payload as an object of the given type.
func Unmarshal(objType ObjectType, data []byte) (Object, error) {
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(data)
	case TypeTree:
		return UnmarshalTree(data)
	case TypeCommit:
		return UnmarshalCommit(data)
	case TypeTag:
		return UnmarshalTag(data)
	default:
		return nil, fmt.Errorf("unmarshal: %w %q", ErrUnknownObjectType, objType)
	}
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Commit and Tag
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit in KVLM form.
func MarshalCommit(c *Commit) []byte {
	return MarshalKVLM(&c.KVLM)
}

// UnmarshalCommit parses a Commit from KVLM form.
func UnmarshalCommit(data []byte) (*Commit, error) {
	kv, err := UnmarshalKVLM(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal commit: %w", err)
	}
	return &Commit{KVLM: *kv}, nil
}

// MarshalTag serializes a Tag in KVLM form.
func MarshalTag(t *Tag) []byte {
	return MarshalKVLM(&t.KVLM)
}

// UnmarshalTag parses a Tag from KVLM form.
func UnmarshalTag(data []byte) (*Tag, error) {
	kv, err := UnmarshalKVLM(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tag: %w", err)
	}
	return &Tag{KVLM: *kv}, nil
}
