package object

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants as held in memory. Modes are always six digits;
	// the directory mode is written as "40000" on disk.
	TreeModeDir        = "040000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeSubmodule  = "160000"
)

// Object is one of *Blob, *Tree, *Commit or *Tag.
type Object interface {
	Type() ObjectType
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

func (*Blob) Type() ObjectType { return TypeBlob }

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string // six ASCII octal digits
	Path string
	Hash Hash
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool { return NormalizeMode(e.Mode) == TreeModeDir }

// IsSymlink reports whether the entry's blob holds a symbolic link target.
func (e TreeEntry) IsSymlink() bool { return NormalizeMode(e.Mode) == TreeModeSymlink }

// IsSubmodule reports whether the entry points at a commit in another
// repository.
func (e TreeEntry) IsSubmodule() bool { return NormalizeMode(e.Mode) == TreeModeSubmodule }

// sortKey is the path, with a trailing slash for subtrees, so "lib" the
// file orders before "lib/" the directory and "lib.go" orders before both.
func (e TreeEntry) sortKey() string {
	if e.IsDir() {
		return e.Path + "/"
	}
	return e.Path
}

// Tree holds tree entries. Entries read from disk are in canonical order;
// MarshalTree sorts regardless of the in-memory order.
type Tree struct {
	Entries []TreeEntry
}

func (*Tree) Type() ObjectType { return TypeTree }

// Commit is a KVLM object with tree, parent, author and committer headers.
type Commit struct {
	KVLM
}

func (*Commit) Type() ObjectType { return TypeCommit }

// TreeHash returns the commit's root tree.
func (c *Commit) TreeHash() Hash {
	return Hash(c.Get("tree"))
}

// Parents returns the commit's parent hashes in stored order.
func (c *Commit) Parents() []Hash {
	vals := c.Values("parent")
	out := make([]Hash, 0, len(vals))
	for _, v := range vals {
		out = append(out, Hash(v))
	}
	return out
}

// Author returns the raw author line value.
func (c *Commit) Author() string {
	return string(c.Get("author"))
}

// Tag is an annotated tag object. It shares the KVLM encoding with Commit.
type Tag struct {
	KVLM
}

func (*Tag) Type() ObjectType { return TypeTag }

// Object returns the hash of the tagged object.
func (t *Tag) Object() Hash {
	return Hash(t.Get("object"))
}

// TargetType returns the declared type of the tagged object.
func (t *Tag) TargetType() ObjectType {
	return ObjectType(t.Get("type"))
}

// Name returns the tag name recorded in the object.
func (t *Tag) Name() string {
	return string(t.Get("tag"))
}
