package object

import "errors"

var (
	// ErrMalformedObject reports stored bytes that violate the object format:
	// a bad header, a length mismatch, a truncated tree record or a bad mode.
	ErrMalformedObject = errors.New("malformed object")
	// ErrUnknownObjectType reports a type tag outside blob, tree, commit, tag.
	ErrUnknownObjectType = errors.New("unknown object type")
	// ErrUnexpectedObjectKind reports an object that cannot play the
	// structural role the caller asked for.
	ErrUnexpectedObjectKind = errors.New("unexpected object kind")
	// ErrObjectNotFound is returned by Read when the object is absent.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidHash reports a string that is not a 40-character hex digest.
	ErrInvalidHash = errors.New("invalid object hash")
)
