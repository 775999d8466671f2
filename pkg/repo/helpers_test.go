package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/shale/pkg/object"
)

var testSig = Signature{
	Name:  "A U Thor",
	Email: "author@example.com",
	When:  time.Unix(1700000000, 0).UTC(),
}

func writeBlob(t *testing.T, r *Repo, data string) object.Hash {
	t.Helper()
	h, err := r.Store.Write(&object.Blob{Data: []byte(data)})
	if err != nil {
		t.Fatalf("write blob: %v", err)
	}
	return h
}

func writeTree(t *testing.T, r *Repo, entries ...object.TreeEntry) object.Hash {
	t.Helper()
	h, err := r.Store.Write(&object.Tree{Entries: entries})
	if err != nil {
		t.Fatalf("write tree: %v", err)
	}
	return h
}

func writeCommit(t *testing.T, r *Repo, tree object.Hash, msg string, parents ...object.Hash) object.Hash {
	t.Helper()
	h, err := r.CommitTree(CommitOptions{
		Tree:    tree,
		Parents: parents,
		Author:  testSig,
		Message: msg,
	})
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	return h
}

func writeRefFile(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	path := filepath.Join(r.GitDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
