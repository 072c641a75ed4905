// Package cache decides where downloaded artifacts land on local disk and
// maps each artifact to a deterministic path under that root.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"riskd/internal/common/fsutil"
)

// namespace keeps our artifacts apart from other tenants of a shared mount.
const namespace = "riskd"

// Resolve picks the cache root for this process: a namespaced subdirectory
// of persistentDir when that mount exists and is writable, else one under
// scratchDir. Scratch placement still works, it just re-downloads after a
// restart. The returned root exists on success.
func Resolve(persistentDir, scratchDir string) (string, error) {
	if persistentDir != "" {
		if p, err := fsutil.ExpandHome(persistentDir); err == nil && fsutil.DirWritable(p) {
			root := filepath.Join(p, namespace)
			if err := os.MkdirAll(root, 0o755); err == nil {
				return root, nil
			}
		}
	}
	s, err := fsutil.ExpandHome(scratchDir)
	if err != nil {
		return "", fmt.Errorf("scratch dir: %w", err)
	}
	root := filepath.Join(s, namespace)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create scratch cache: %w", err)
	}
	return root, nil
}

// PathFor maps (repo id, remote path) to a deterministic location under
// root, so repeated bootstraps hit the same files.
func PathFor(root, repoID, remotePath string) string {
	parts := []string{root}
	parts = append(parts, strings.Split(repoID, "/")...)
	parts = append(parts, strings.Split(remotePath, "/")...)
	return filepath.Join(parts...)
}
