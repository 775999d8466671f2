package repo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBranches(t *testing.T) {
	r := newTestRepo(t)
	h := buildHistory(t, r)

	if err := r.CreateBranch("feature/x", h.c2); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.CreateBranch("feature/x", h.c3); err == nil {
		t.Error("CreateBranch on an existing branch should fail")
	}
	if err := r.CreateBranch("bad..name", h.c3); err == nil {
		t.Error("CreateBranch with an invalid name should fail")
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	want := []Ref{{Path: "feature/x", Hash: h.c2}, {Path: "master", Hash: h.m}}
	if diff := cmp.Diff(want, branches); diff != "" {
		t.Errorf("ListBranches mismatch (-want +got):\n%s", diff)
	}

	cur, err := r.CurrentBranch()
	if err != nil || cur != "master" {
		t.Errorf("CurrentBranch = (%q, %v), want master", cur, err)
	}
	writeRefFile(t, r, "HEAD", string(h.c1)+"\n")
	cur, err = r.CurrentBranch()
	if err != nil || cur != "" {
		t.Errorf("detached CurrentBranch = (%q, %v), want empty", cur, err)
	}
}
