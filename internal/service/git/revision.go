package git

import (
	"errors"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision describes the commit a project tree was deployed from.
type Revision struct {
	Hash   string `json:"hash"`
	Branch string `json:"branch,omitempty"`
}

// HeadRevision returns the HEAD commit of the repository containing dir,
// searching parent directories for .git.
// ok is false when dir is not inside a repository or HEAD is unborn.
func HeadRevision(dir string) (rev Revision, ok bool, err error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return Revision{}, false, nil
		}
		return Revision{}, false, err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Revision{}, false, nil
		}
		return Revision{}, false, err
	}

	rev.Hash = head.Hash().String()
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	return rev, true, nil
}
