package pipeline

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/fakeyudi/scanstamp/internal/config"
	"github.com/fakeyudi/scanstamp/internal/naming"
)

// maxSuffixProbes bounds the numbered-variant search so a pathological
// directory cannot spin the run forever.
const maxSuffixProbes = 10000

// Outcome describes how a desired target name may be used.
type Outcome int

const (
	// Proceed means the desired name is free (or is the source itself).
	Proceed Outcome = iota
	// Exists means the name is taken and the skip policy applies.
	Exists
	// Suffixed means a numbered variant was allocated instead.
	Suffixed
)

// Collision decides whether a desired target path can be used. It checks
// both the filesystem and the names already claimed by earlier candidates
// in the same run, so two files planned for the same target never race for
// it. Claims are permanent for the life of the run.
type Collision struct {
	fs     afero.Fs
	policy config.CollisionPolicy
	claims map[string]string // target path -> source path that claimed it
}

// NewCollision creates a ready-to-use resolver for one run.
func NewCollision(fsys afero.Fs, policy config.CollisionPolicy) *Collision {
	return &Collision{
		fs:     fsys,
		policy: policy,
		claims: make(map[string]string),
	}
}

// Resolve returns the final target path for oldPath wanting desired. Under
// the skip policy a taken name yields Exists; under the suffix policy
// numbered variants are probed until one is free, up to the cap, after
// which ErrSuffixesExhausted is returned.
func (c *Collision) Resolve(oldPath, desired string) (string, Outcome, error) {
	if !c.taken(desired, oldPath) {
		c.claims[desired] = oldPath
		return desired, Proceed, nil
	}

	if c.policy != config.CollisionSuffix {
		return "", Exists, nil
	}

	dir := filepath.Dir(desired)
	base := filepath.Base(desired)
	for n := 2; n <= maxSuffixProbes; n++ {
		candidate := filepath.Join(dir, naming.WithSuffix(base, n))
		if !c.taken(candidate, oldPath) {
			c.claims[candidate] = oldPath
			return candidate, Suffixed, nil
		}
	}
	return "", Exists, ErrSuffixesExhausted
}

// taken reports whether path is unavailable to oldPath. A path claimed by
// another candidate is taken even before its rename lands; a path that is
// the source itself (including case-only differences on case-insensitive
// filesystems) never blocks its own rename.
func (c *Collision) taken(path, oldPath string) bool {
	if owner, ok := c.claims[path]; ok && owner != oldPath {
		return true
	}
	if naming.EquivalentPath(path, oldPath) {
		return false
	}
	exists, err := afero.Exists(c.fs, path)
	return err == nil && exists
}
