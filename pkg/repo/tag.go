package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/shale/pkg/object"
)

// TagOptions describes a tag to create.
type TagOptions struct {
	// Annotated writes a tag object pointing at the target; otherwise the
	// ref points at the target directly.
	Annotated bool
	Tagger    Signature
	Message   string
	Force     bool
}

// CreateTag creates refs/tags/<name> for target and returns the hash the
// ref holds: the tag object for annotated tags, target otherwise.
func (r *Repo) CreateTag(name string, target object.Hash, opts TagOptions) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}

	targetType, _, err := r.Store.ReadRaw(target)
	if err != nil {
		return "", fmt.Errorf("create tag: read target %s: %w", target, err)
	}

	refName := "refs/tags/" + name
	if !opts.Force {
		if _, exists, err := r.ResolveRef(refName); err != nil {
			return "", fmt.Errorf("create tag: %w", err)
		} else if exists {
			return "", fmt.Errorf("create tag: tag %q already exists", name)
		}
	}

	refValue := target
	if opts.Annotated {
		if strings.TrimSpace(opts.Message) == "" {
			return "", fmt.Errorf("create tag: message is required for annotated tag %q", name)
		}
		tagger := opts.Tagger
		if strings.TrimSpace(tagger.Name) == "" {
			tagger.Name = "unknown"
		}
		msg := opts.Message
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}

		tag := &object.Tag{}
		tag.Add("object", []byte(target))
		tag.Add("type", []byte(targetType))
		tag.Add("tag", []byte(name))
		tag.Add("tagger", []byte(tagger.String()))
		tag.SetMessage([]byte(msg))
		refValue, err = r.Store.Write(tag)
		if err != nil {
			return "", fmt.Errorf("create tag: write tag object: %w", err)
		}
	}

	if err := r.updateRef(refName, refValue, "tag: "+name); err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}
	return refValue, nil
}

// DeleteTag removes a tag ref from refs/tags/.
func (r *Repo) DeleteTag(name string) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := r.DeleteRef("refs/tags/" + name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// ListTags returns tags sorted by name, with the hash each ref holds.
func (r *Repo) ListTags() ([]Ref, error) {
	dir, err := r.ListRefs("refs/tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	refs := dir.Flatten()
	for i := range refs {
		refs[i].Path = strings.TrimPrefix(refs[i].Path, "refs/tags/")
	}
	return refs, nil
}

func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if err := validateRefName("refs/tags/" + name); err != nil {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}
