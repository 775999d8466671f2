package main

import (
	"os"

	"github.com/odvcencio/shale/pkg/repo"
)

// resolveSignature picks a name and email from the flags, then the
// SHALE_AUTHOR_NAME/SHALE_AUTHOR_EMAIL environment, then the repository's
// user section.
func resolveSignature(r *repo.Repo, name, email string) repo.Signature {
	sig := r.DefaultSignature()
	if name == "" {
		name = os.Getenv("SHALE_AUTHOR_NAME")
	}
	if email == "" {
		email = os.Getenv("SHALE_AUTHOR_EMAIL")
	}
	if name != "" {
		sig.Name = name
	}
	if email != "" {
		sig.Email = email
	}
	return sig
}
