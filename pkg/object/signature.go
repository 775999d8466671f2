package object

// SignatureKey is the KVLM key under which commits carry a detached
// signature.
const SignatureKey = "gpgsig"

// CommitSigningPayload returns the bytes a commit signature covers: the
// encoded commit without its gpgsig header. The commit is not modified.
func CommitSigningPayload(c *Commit) []byte {
	if c == nil {
		return nil
	}
	stripped := &Commit{KVLM: c.KVLM.clone()}
	stripped.Delete(SignatureKey)
	return MarshalCommit(stripped)
}

// CommitSignature returns the armored signature of c, or nil when the
// commit is unsigned.
func CommitSignature(c *Commit) []byte {
	return c.Get(SignatureKey)
}
