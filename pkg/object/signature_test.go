package object

import (
	"strings"
	"testing"
)

func TestCommitSigningPayload(t *testing.T) {
	c, err := UnmarshalCommit([]byte(signedCommit))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}

	want := "tree 29ff16c9c14e2652b22f8b78bb08a5a07930c147\n" +
		"parent 206941306e8a8af65b66eaaaea388a7ae24d49a0\n" +
		"parent 3b18e512dba79e4c8300dd08aeb37f8e728b8dad\n" +
		"author A U Thor <author@example.com> 1527025023 +0200\n" +
		"committer C O Mitter <committer@example.com> 1527025044 +0200\n" +
		"\n" +
		"Create a commit\n" +
		"\n" +
		"with a body.\n"
	if got := string(CommitSigningPayload(c)); got != want {
		t.Errorf("CommitSigningPayload =\n%q\nwant\n%q", got, want)
	}

	// The original keeps its signature.
	sig := string(CommitSignature(c))
	if !strings.HasPrefix(sig, "-----BEGIN PGP SIGNATURE-----\n") || !strings.HasSuffix(sig, "-----END PGP SIGNATURE-----") {
		t.Errorf("CommitSignature = %q", sig)
	}
	if got := string(MarshalCommit(c)); got != signedCommit {
		t.Errorf("commit modified by CommitSigningPayload:\n%q", got)
	}
}

func TestCommitSigningPayload_Unsigned(t *testing.T) {
	c := sampleCommit()
	if got, want := string(CommitSigningPayload(c)), string(MarshalCommit(c)); got != want {
		t.Errorf("unsigned payload = %q, want %q", got, want)
	}
	if CommitSignature(c) != nil {
		t.Error("unsigned commit has a signature")
	}
	if CommitSigningPayload(nil) != nil {
		t.Error("nil commit should yield nil payload")
	}
}
