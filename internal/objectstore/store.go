// Package objectstore wraps an S3-compatible object store behind a small
// interface: list, head, and precise byte-range reads. H-file parsing is a
// sequence of small scattered reads (superblock, B-tree nodes, chunk
// indexes, chunk payloads); full-object fetches would destroy that access
// pattern, so Range reads are the only way this package fetches bytes.
package objectstore

import (
	"context"
	"sort"
	"strings"
)

// Kind distinguishes a listed file object from a virtual folder derived from
// key prefixes.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Descriptor describes one entry returned by List. Folder descriptors always
// carry Size 0 and nil timestamps/etag, since folders are synthesized rather
// than stored.
type Descriptor struct {
	Key          string
	Size         int64
	LastModified *string // ISO8601, nil for folders
	ETag         *string // quotes stripped, nil for folders
	Kind         Kind
}

// ListResult bundles the page of descriptors with whether max_items was hit
// before the underlying store was fully paginated.
type ListResult struct {
	Entries   []Descriptor
	Truncated bool
}

// HeadResult is the response to a HEAD request against a single object.
type HeadResult struct {
	Size         int64
	ETag         string // quotes stripped
	LastModified string // ISO8601
	ContentType  string
}

// Store is the object store adapter's contract. Implementations must be
// safe for concurrent use; a single instance is shared by every request in
// the process.
type Store interface {
	// List paginates through the store under prefix, returning file entries
	// (keys not ending in "/") up to maxItems, and — when includeFolders is
	// set — virtual folder entries derived from every listed key's parent
	// prefixes. Files sort lexicographically before folders.
	List(ctx context.Context, prefix string, includeFolders bool, maxItems int) (ListResult, error)

	// Head fetches size/etag/last-modified/content-type for a single key.
	// Returns a NotFound *apperrors.Error when the key is absent.
	Head(ctx context.Context, key string) (HeadResult, error)

	// ReadRange returns exactly endInclusive-start+1 bytes of key. Both
	// bounds are 0-indexed and inclusive; callers must ensure
	// 0 <= start <= endInclusive < size.
	ReadRange(ctx context.Context, key string, start, endInclusive int64) ([]byte, error)
}

// normalizePrefix trims a leading slash so callers may pass either form.
func normalizePrefix(prefix string) string {
	return strings.TrimPrefix(strings.TrimSpace(prefix), "/")
}

// deriveParentFolders returns every parent folder path of key (each ending
// in "/") that itself begins with normalizedPrefix. A top-level key (no
// slash before its basename) contributes nothing.
func deriveParentFolders(key, normalizedPrefix string) []string {
	parts := strings.Split(key, "/")
	if len(parts) <= 1 {
		return nil
	}
	var folders []string
	var running []string
	for _, part := range parts[:len(parts)-1] {
		if part == "" {
			continue
		}
		running = append(running, part)
		folder := strings.Join(running, "/") + "/"
		if normalizedPrefix != "" && !strings.HasPrefix(folder, normalizedPrefix) {
			continue
		}
		folders = append(folders, folder)
	}
	return folders
}

// sortDescriptors places files before folders, each group lexicographic by
// key, matching the listing contract in §4.1.
func sortDescriptors(entries []Descriptor) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.Kind == KindFolder) != (b.Kind == KindFolder) {
			return a.Kind != KindFolder
		}
		return a.Key < b.Key
	})
}
