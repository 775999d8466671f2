package object

import (
	"bytes"
	"compress/zlib"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
)

func TestHashObjectKnownVectors(t *testing.T) {
	tests := []struct {
		name    string
		objType ObjectType
		data    []byte
		want    Hash
	}{
		{"empty blob", TypeBlob, nil, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"},
		{"hello blob", TypeBlob, []byte("hello world\n"), "3b18e512dba79e4c8300dd08aeb37f8e728b8dad"},
		{"empty tree", TypeTree, nil, "4b825dc642cb6eb9a060e54bf8d69288fbee4904"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HashObject(tc.objType, tc.data); got != tc.want {
				t.Errorf("HashObject = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestHashObjectMatchesGoGit(t *testing.T) {
	commit := sampleCommit()
	payload := MarshalCommit(commit)

	tests := []struct {
		objType ObjectType
		gitType plumbing.ObjectType
		data    []byte
	}{
		{TypeBlob, plumbing.BlobObject, []byte("package main\n")},
		{TypeCommit, plumbing.CommitObject, payload},
	}
	for _, tc := range tests {
		want := plumbing.ComputeHash(tc.gitType, tc.data).String()
		if got := HashObject(tc.objType, tc.data); string(got) != want {
			t.Errorf("%s: HashObject = %s, go-git = %s", tc.objType, got, want)
		}
	}
}

func TestHashRawConversion(t *testing.T) {
	h := Hash("3b18e512dba79e4c8300dd08aeb37f8e728b8dad")
	raw, err := h.Raw()
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	back, err := HashFromRaw(raw[:])
	if err != nil {
		t.Fatalf("HashFromRaw: %v", err)
	}
	if back != h {
		t.Errorf("round-trip = %s, want %s", back, h)
	}
	if _, err := Hash("3B18").Raw(); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Raw(short) error = %v, want ErrInvalidHash", err)
	}
	if _, err := HashFromRaw([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("HashFromRaw(3 bytes) error = %v, want ErrInvalidHash", err)
	}
}

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(dir)
}

func TestStoreWriteRead(t *testing.T) {
	s := tempStore(t)
	data := []byte("hello world\n")
	h, err := s.Write(&Blob{Data: data})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if h != "3b18e512dba79e4c8300dd08aeb37f8e728b8dad" {
		t.Errorf("Write hash = %s", h)
	}

	blob, err := s.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if !bytes.Equal(blob.Data, data) {
		t.Errorf("Data: got %q, want %q", blob.Data, data)
	}
}

func TestStoreWriteReadEveryKind(t *testing.T) {
	s := NewStore(t.TempDir(), WithCacheSize(0))
	blobHash, err := s.Write(&Blob{Data: []byte("x")})
	if err != nil {
		t.Fatalf("Write blob: %v", err)
	}
	tree := &Tree{Entries: []TreeEntry{{Mode: TreeModeFile, Path: "x.txt", Hash: blobHash}}}
	treeHash, err := s.Write(tree)
	if err != nil {
		t.Fatalf("Write tree: %v", err)
	}
	commit := &Commit{}
	commit.Add("tree", []byte(treeHash))
	commit.Add("author", []byte("A U Thor <a@example.com> 1700000000 +0000"))
	commit.SetMessage([]byte("add x\n"))
	commitHash, err := s.Write(commit)
	if err != nil {
		t.Fatalf("Write commit: %v", err)
	}
	tag := &Tag{}
	tag.Add("object", []byte(commitHash))
	tag.Add("type", []byte("commit"))
	tag.Add("tag", []byte("v1"))
	tag.SetMessage([]byte("release\n"))
	tagHash, err := s.Write(tag)
	if err != nil {
		t.Fatalf("Write tag: %v", err)
	}

	for _, tc := range []struct {
		hash Hash
		orig Object
	}{
		{blobHash, &Blob{Data: []byte("x")}},
		{treeHash, tree},
		{commitHash, commit},
		{tagHash, tag},
	} {
		got, err := s.Read(tc.hash)
		if err != nil {
			t.Fatalf("Read %s: %v", tc.hash, err)
		}
		if got.Type() != tc.orig.Type() {
			t.Fatalf("Read %s: type %s, want %s", tc.hash, got.Type(), tc.orig.Type())
		}
		want, _ := Marshal(tc.orig)
		reencoded, err := Marshal(got)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(reencoded, want) {
			t.Errorf("%s: re-encoded payload differs:\n got %q\nwant %q", tc.orig.Type(), reencoded, want)
		}
	}
}

func TestStoreHas(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(&Blob{Data: []byte("exists")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Has(h) {
		t.Error("Has returned false for existing object")
	}
	if s.Has(Hash("0000000000000000000000000000000000000000")) {
		t.Error("Has returned true for non-existing object")
	}
	if s.Has(Hash("zz")) {
		t.Error("Has returned true for invalid hash")
	}
}

func TestStoreFanoutLayout(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(&Blob{Data: []byte("fanout test")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	objPath := filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
	f, err := os.Open(objPath)
	if err != nil {
		t.Fatalf("Expected fan-out file at %s: %v", objPath, err)
	}
	defer f.Close()

	// The file is a plain zlib stream readable by the standard library.
	zr, err := zlib.NewReader(f)
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if want := "blob 11\x00fanout test"; buf.String() != want {
		t.Errorf("stored record = %q, want %q", buf.String(), want)
	}
}

func TestStoreDuplicateWriteIsNoop(t *testing.T) {
	s := tempStore(t)
	h1, err := s.Write(&Blob{Data: []byte("duplicate")})
	if err != nil {
		t.Fatalf("Write 1: %v", err)
	}
	path := s.objectPath(h1)
	// Replace the stored bytes; a second write must trust what is there.
	sentinel := []byte("not rewritten")
	if err := os.WriteFile(path, sentinel, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	h2, err := s.Write(&Blob{Data: []byte("duplicate")})
	if err != nil {
		t.Fatalf("Write 2: %v", err)
	}
	if h1 != h2 {
		t.Errorf("Same content produced different hashes: %q vs %q", h1, h2)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, sentinel) {
		t.Error("existing object was overwritten")
	}
}

func TestStoreLookupMissing(t *testing.T) {
	s := tempStore(t)
	obj, ok, err := s.Lookup(Hash("0000000000000000000000000000000000000000"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok || obj != nil {
		t.Errorf("Lookup of missing object = (%v, %v), want (nil, false)", obj, ok)
	}

	_, err = s.Read(Hash("0000000000000000000000000000000000000000"))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Read of missing object error = %v, want ErrObjectNotFound", err)
	}
}

func writeRawRecord(t *testing.T, s *Store, h Hash, record []byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(record)
	zw.Close()
	path := s.objectPath(h)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestStoreReadCorruptRecords(t *testing.T) {
	tests := []struct {
		name    string
		record  []byte
		wantErr error
	}{
		{"length mismatch", []byte("blob 10\x00short"), ErrMalformedObject},
		{"no NUL", []byte("blob 5 hello"), ErrMalformedObject},
		{"no space", []byte("blob5\x00hello"), ErrMalformedObject},
		{"bad length", []byte("blob x\x00hello"), ErrMalformedObject},
		{"unknown type", []byte("note 5\x00hello"), ErrUnknownObjectType},
		{"bad tree", []byte("tree 3\x00abc"), ErrMalformedObject},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := tempStore(t)
			h := Hash(bytes.Repeat([]byte{"abcdef"[i%6]}, HashHexSize))
			writeRawRecord(t, s, h, tc.record)
			_, _, err := s.Lookup(h)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Lookup error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestStoreReadDoesNotVerifyDigest(t *testing.T) {
	s := tempStore(t)
	h := Hash("1111111111111111111111111111111111111111")
	writeRawRecord(t, s, h, []byte("blob 5\x00hello"))
	blob, err := s.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "hello" {
		t.Errorf("Data = %q, want %q", blob.Data, "hello")
	}
}

func TestStoreTypedReadMismatch(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(&Blob{Data: []byte("not a tree")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.ReadTree(h); !errors.Is(err, ErrUnexpectedObjectKind) {
		t.Errorf("ReadTree(blob) error = %v, want ErrUnexpectedObjectKind", err)
	}
	if _, err := s.ReadCommit(h); !errors.Is(err, ErrUnexpectedObjectKind) {
		t.Errorf("ReadCommit(blob) error = %v, want ErrUnexpectedObjectKind", err)
	}
}

func TestStoreCacheReturnsCopies(t *testing.T) {
	s := NewStore(t.TempDir(), WithCacheSize(4))
	h, err := s.Write(&Blob{Data: []byte("cached")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	first, err := s.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	first.Data[0] = 'X'

	second, err := s.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(second.Data) != "cached" {
		t.Errorf("cached object was mutated through a previous read: %q", second.Data)
	}
}

func TestStoreFindPrefix(t *testing.T) {
	s := tempStore(t)
	a := Hash("abc1000000000000000000000000000000000000")
	b := Hash("abc2000000000000000000000000000000000000")
	c := Hash("abd0000000000000000000000000000000000000")
	for _, h := range []Hash{a, b, c} {
		writeRawRecord(t, s, h, []byte("blob 0\x00"))
	}

	got, err := s.FindPrefix("abc")
	if err != nil {
		t.Fatalf("FindPrefix: %v", err)
	}
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("FindPrefix(abc) = %v, want [%s %s]", got, a, b)
	}

	got, err = s.FindPrefix("ABD0")
	if err != nil {
		t.Fatalf("FindPrefix: %v", err)
	}
	if len(got) != 1 || got[0] != c {
		t.Errorf("FindPrefix(ABD0) = %v, want [%s]", got, c)
	}

	got, err = s.FindPrefix("ff00")
	if err != nil {
		t.Fatalf("FindPrefix: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FindPrefix(ff00) = %v, want empty", got)
	}

	if _, err := s.FindPrefix("g"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("FindPrefix(g) error = %v, want ErrInvalidHash", err)
	}
}

func TestStoreWriteRawRejectsUnknownType(t *testing.T) {
	s := tempStore(t)
	if _, err := s.WriteRaw(ObjectType("note"), []byte("x")); !errors.Is(err, ErrUnknownObjectType) {
		t.Errorf("WriteRaw(note) error = %v, want ErrUnknownObjectType", err)
	}
}
