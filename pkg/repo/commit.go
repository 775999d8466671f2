package repo

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/shale/pkg/object"
)

// Signature identifies who made a commit or tag and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// String formats s the way commit and tag headers store it:
// "Name <email> 1527025023 +0200".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), formatTimezoneOffset(s.When))
}

func formatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}

// DefaultSignature returns the identity from the user section of
// .git/config, stamped with the current time. Missing values fall back to
// "unknown" and an empty email.
func (r *Repo) DefaultSignature() Signature {
	sig := Signature{Name: "unknown", When: time.Now()}
	cfg, err := r.ReadConfig()
	if err != nil {
		return sig
	}
	user := cfg.Section("user")
	if name := strings.TrimSpace(user.Option("name")); name != "" {
		sig.Name = name
	}
	sig.Email = strings.TrimSpace(user.Option("email"))
	return sig
}

func (r *Repo) identity() string {
	return r.DefaultSignature().String()
}

// CommitOptions describes a commit to write.
type CommitOptions struct {
	Tree      object.Hash
	Parents   []object.Hash
	Author    Signature
	Committer Signature // defaults to Author
	Message   string
}

// CommitTree writes a commit object for an existing tree and returns its
// hash. The tree must be a tree and every parent a commit. No ref moves.
func (r *Repo) CommitTree(opts CommitOptions) (object.Hash, error) {
	if _, err := r.Store.ReadTree(opts.Tree); err != nil {
		return "", fmt.Errorf("commit-tree: tree: %w", err)
	}
	for _, p := range opts.Parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return "", fmt.Errorf("commit-tree: parent: %w", err)
		}
	}
	if strings.TrimSpace(opts.Author.Name) == "" {
		return "", fmt.Errorf("commit-tree: author name is required")
	}
	committer := opts.Committer
	if strings.TrimSpace(committer.Name) == "" {
		committer = opts.Author
	}

	c := &object.Commit{}
	c.Add("tree", []byte(opts.Tree))
	for _, p := range opts.Parents {
		c.Add("parent", []byte(p))
	}
	c.Add("author", []byte(opts.Author.String()))
	c.Add("committer", []byte(committer.String()))
	msg := opts.Message
	if msg != "" && !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	c.SetMessage([]byte(msg))

	h, err := r.Store.Write(c)
	if err != nil {
		return "", fmt.Errorf("commit-tree: write commit: %w", err)
	}
	return h, nil
}

// Commit snapshots the working directory, writes a commit whose parent is
// the current HEAD commit (if any) and advances HEAD's branch, or HEAD
// itself when detached.
func (r *Repo) Commit(message string, author Signature) (object.Hash, error) {
	treeHash, err := r.WriteTreeFromDir(r.RootDir)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parentHash, hasParent, err := r.ResolveRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	var parents []object.Hash
	if hasParent {
		parents = append(parents, parentHash)
	}

	commitHash, err := r.CommitTree(CommitOptions{
		Tree:    treeHash,
		Parents: parents,
		Author:  author,
		Message: message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	head, symbolic, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	refName := "HEAD"
	if symbolic {
		refName = head
	}
	// The branch must still hold the parent we committed on top of; an
	// empty expectation means it must not exist yet.
	reason := "commit: " + firstLine(message)
	if !hasParent {
		reason = "commit (initial): " + firstLine(message)
	}
	if err := r.updateRef(refName, commitHash, reason, parentHash); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.logger.Info("committed", zap.String("ref", refName), zap.String("hash", string(commitHash)))
	return commitHash, nil
}

// LogEntry is one commit visited by Log.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// Log walks commit ancestry breadth-first from start, following every
// parent and visiting each commit once, and returns up to limit commits
// (limit <= 0 means no limit). Missing parents end their branch of the
// walk quietly.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var out []LogEntry
	seen := map[object.Hash]struct{}{start: {}}
	queue := []object.Hash{start}

	for len(queue) > 0 && (limit <= 0 || len(out) < limit) {
		h := queue[0]
		queue = queue[1:]

		obj, ok, err := r.Store.Lookup(h)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", h, err)
		}
		if !ok {
			continue
		}
		c, isCommit := obj.(*object.Commit)
		if !isCommit {
			return nil, fmt.Errorf("log: %s: %w: %s", h, object.ErrUnexpectedObjectKind, obj.Type())
		}
		out = append(out, LogEntry{Hash: h, Commit: c})

		for _, p := range c.Parents() {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return out, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
