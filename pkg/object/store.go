package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of inflated objects a Store keeps in
// memory unless WithCacheSize says otherwise.
const DefaultCacheSize = 256

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the
// zlib-compressed record "type len\0content".
type Store struct {
	root   string
	level  int
	cache  *lru.Cache // Hash->rawObject
	logger *zap.Logger
}

type rawObject struct {
	typ  ObjectType
	data []byte
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	cacheSize int
	level     int
	logger    *zap.Logger
}

// WithCacheSize sets how many inflated objects are kept in memory. Zero
// disables the cache.
func WithCacheSize(n int) StoreOption {
	return func(o *storeOptions) { o.cacheSize = n }
}

// WithCompressionLevel sets the zlib level used for new objects.
func WithCompressionLevel(level int) StoreOption {
	return func(o *storeOptions) { o.level = level }
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = logger }
}

// NewStore creates a Store rooted at the given git directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	o := storeOptions{
		cacheSize: DefaultCacheSize,
		level:     zlib.DefaultCompression,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	s := &Store{root: root, level: o.level, logger: o.logger}
	if o.cacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		s.cache, _ = lru.New(o.cacheSize)
	}
	return s
}

// Root returns the directory the store was opened on.
func (s *Store) Root() string {
	return s.root
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !IsHash(string(h)) {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Hash returns the identifier obj would be stored under, without writing.
func (s *Store) Hash(obj Object) (Hash, error) {
	data, err := Marshal(obj)
	if err != nil {
		return "", err
	}
	return HashObject(obj.Type(), data), nil
}

// Write encodes obj and stores it, returning its content hash.
func (s *Store) Write(obj Object) (Hash, error) {
	data, err := Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	return s.WriteRaw(obj.Type(), data)
}

// WriteRaw stores an already-encoded payload and returns its content hash.
// An object that is already present is left untouched. Writes are atomic:
// data is written to a temp file and then renamed into place.
func (s *Store) WriteRaw(objType ObjectType, data []byte) (Hash, error) {
	if _, err := ParseType(string(objType)); err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		s.logger.Debug("object already stored", zap.String("hash", string(h)), zap.String("type", string(objType)))
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := s.compressTo(tmp, objType, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}
	s.logger.Debug("object written",
		zap.String("hash", string(h)),
		zap.String("type", string(objType)),
		zap.Int("size", len(data)),
	)
	return h, nil
}

func (s *Store) compressTo(w io.Writer, objType ObjectType, data []byte) (err error) {
	zw, err := zlib.NewWriterLevel(w, s.level)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, zw.Close())
	}()
	if _, err := zw.Write(envelopeHeader(objType, len(data))); err != nil {
		return err
	}
	_, err = zw.Write(data)
	return err
}

// ReadRaw returns the type and payload of the object named h. A missing
// object yields ErrObjectNotFound.
func (s *Store) ReadRaw(h Hash) (ObjectType, []byte, error) {
	raw, ok, err := s.lookupRaw(h)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
	}
	out := make([]byte, len(raw.data))
	copy(out, raw.data)
	return raw.typ, out, nil
}

// Lookup reads and decodes the object named h. A missing object is not an
// error: Lookup returns (nil, false, nil). The digest is not re-verified;
// the header length is.
func (s *Store) Lookup(h Hash) (Object, bool, error) {
	raw, ok, err := s.lookupRaw(h)
	if err != nil || !ok {
		return nil, ok, err
	}
	obj, err := Unmarshal(raw.typ, raw.data)
	if err != nil {
		return nil, false, fmt.Errorf("object read %s: %w", h, err)
	}
	return obj, true, nil
}

// Read is Lookup for callers that require the object to exist.
func (s *Store) Read(h Hash) (Object, error) {
	obj, ok, err := s.Lookup(h)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
	}
	return obj, nil
}

func (s *Store) lookupRaw(h Hash) (rawObject, bool, error) {
	if !IsHash(string(h)) {
		return rawObject{}, false, fmt.Errorf("object read: %w: %q", ErrInvalidHash, string(h))
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(h); ok {
			return v.(rawObject), true, nil
		}
	}

	raw, ok, err := s.readObjectFile(h)
	if err != nil || !ok {
		return rawObject{}, ok, err
	}
	if s.cache != nil {
		s.cache.Add(h, raw)
	}
	return raw, true, nil
}

// readObjectFile inflates and parses the loose object file for h,
// bypassing the cache.
func (s *Store) readObjectFile(h Hash) (rawObject, bool, error) {
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rawObject{}, false, nil
		}
		return rawObject{}, false, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return rawObject{}, false, fmt.Errorf("object read %s: %w: inflate: %v", h, ErrMalformedObject, err)
	}
	defer zr.Close()
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return rawObject{}, false, fmt.Errorf("object read %s: %w: inflate: %v", h, ErrMalformedObject, err)
	}

	objType, content, err := parseEnvelope(inflated)
	if err != nil {
		return rawObject{}, false, fmt.Errorf("object read %s: %w", h, err)
	}
	return rawObject{typ: objType, data: content}, true, nil
}

// parseEnvelope splits "type len\0content" and checks the declared length.
func parseEnvelope(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: no NUL after header", ErrMalformedObject)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	tag, sizeText, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrMalformedObject, header)
	}
	objType, err := ParseType(tag)
	if err != nil {
		return "", nil, err
	}
	length, err := strconv.Atoi(sizeText)
	if err != nil || length < 0 {
		return "", nil, fmt.Errorf("%w: invalid length %q", ErrMalformedObject, sizeText)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrMalformedObject, length, len(content))
	}
	return objType, content, nil
}

// FindPrefix returns every stored hash that starts with prefix, sorted.
// The prefix must be at least two hex characters.
func (s *Store) FindPrefix(prefix string) ([]Hash, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < 2 || len(prefix) > HashHexSize || !isLowerHex(prefix) {
		return nil, fmt.Errorf("find prefix: %w: %q", ErrInvalidHash, prefix)
	}
	dir := filepath.Join(s.root, "objects", prefix[:2])
	names, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("find prefix: %w", err)
	}
	var out []Hash
	for _, d := range names {
		name := d.Name()
		if d.IsDir() || len(name) != HashHexSize-2 || !isLowerHex(name) {
			continue
		}
		if strings.HasPrefix(name, prefix[2:]) {
			out = append(out, Hash(prefix[:2]+name))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// ReadBlob reads an object that must be a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	b, ok := obj.(*Blob)
	if !ok {
		return nil, kindMismatch(h, obj, TypeBlob)
	}
	return b, nil
}

// ReadTree reads an object that must be a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	tr, ok := obj.(*Tree)
	if !ok {
		return nil, kindMismatch(h, obj, TypeTree)
	}
	return tr, nil
}

// ReadCommit reads an object that must be a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*Commit)
	if !ok {
		return nil, kindMismatch(h, obj, TypeCommit)
	}
	return c, nil
}

// ReadTag reads an object that must be a Tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*Tag)
	if !ok {
		return nil, kindMismatch(h, obj, TypeTag)
	}
	return t, nil
}

func kindMismatch(h Hash, obj Object, want ObjectType) error {
	return fmt.Errorf("object %s: %w: got %q, want %q", h, ErrUnexpectedObjectKind, obj.Type(), want)
}
