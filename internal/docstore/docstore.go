// Package docstore provides a small document-store abstraction: named
// collections of schemaless documents addressed by slash-separated paths
// (e.g. "posts/p1/comments/c1/replies"), with live full-snapshot
// subscriptions on collections. The production implementation is backed
// by MongoDB change streams.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// Fields is the schemaless body of a document
type Fields map[string]any

// Document is a stored document together with its store-assigned id
type Document struct {
	ID     string
	Fields Fields
}

// ErrBadPath is returned when a path does not address a collection or
// document as required by the operation.
var ErrBadPath = errors.New("malformed document path")

// Subscription is a live feed of collection snapshots. Every change to
// any document in the collection produces a complete listing, not a diff.
// The channel is closed after Cancel.
type Subscription interface {
	// Snapshots delivers the full current contents of the collection,
	// ordered by creation time. Stale intermediate snapshots may be
	// dropped; the latest one is always delivered.
	Snapshots() <-chan []Document

	// Cancel releases the subscription. Safe to call more than once.
	Cancel()
}

// Store is the document-store port consumed by the services. Collection
// paths have an odd number of segments ("posts", "posts/p1/comments"),
// document paths an even number ("posts/p1/comments/c1").
type Store interface {
	// Create inserts a new document into the collection at path and
	// returns its store-assigned id.
	Create(ctx context.Context, path string, fields Fields) (string, error)

	// Get fetches the document at path, or ErrNotFound.
	Get(ctx context.Context, path string) (Fields, error)

	// Update overwrites the given fields of the document at path,
	// leaving all other fields untouched.
	Update(ctx context.Context, path string, fields Fields) error

	// Delete removes the document at path. Deleting a document does not
	// touch any sub-collections nested under it.
	Delete(ctx context.Context, path string) error

	// List returns the collection at path ordered by creation time.
	List(ctx context.Context, path string) ([]Document, error)

	// Subscribe opens a live snapshot feed for the collection at path.
	Subscribe(ctx context.Context, path string) (Subscription, error)

	// ToggleVote atomically toggles member in the voteField set of the
	// document at path: if present it is removed, otherwise it is added.
	// In both cases member is removed from the oppositeField set, so the
	// two sets stay disjoint without a read-modify-write round trip.
	ToggleVote(ctx context.Context, path, voteField, oppositeField, member string) error
}

// splitPath validates and splits a slash-separated path
func splitPath(path string) ([]string, error) {
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" {
			return nil, ErrBadPath
		}
	}
	return segments, nil
}

// collectionScope resolves a collection path into the flat collection
// name plus the ancestor-id fields that scope it. Nested collections are
// stored flat: "posts/p1/comments" lives in collection "comments" with
// post_id=p1 on every document.
func collectionScope(path string) (string, map[string]string, error) {
	segments, err := splitPath(path)
	if err != nil {
		return "", nil, err
	}
	if len(segments)%2 == 0 {
		return "", nil, ErrBadPath
	}

	scope := make(map[string]string)
	for i := 0; i+1 < len(segments); i += 2 {
		scope[parentField(segments[i])] = segments[i+1]
	}
	return segments[len(segments)-1], scope, nil
}

// documentRef resolves a document path into collection name, document id
// and scope fields.
func documentRef(path string) (string, string, map[string]string, error) {
	segments, err := splitPath(path)
	if err != nil {
		return "", "", nil, err
	}
	if len(segments) < 2 || len(segments)%2 != 0 {
		return "", "", nil, ErrBadPath
	}

	name, scope, err := collectionScope(strings.Join(segments[:len(segments)-1], "/"))
	if err != nil {
		return "", "", nil, err
	}
	return name, segments[len(segments)-1], scope, nil
}

// parentField derives the scope field name for an ancestor collection:
// "posts" -> "post_id"
func parentField(collection string) string {
	return strings.TrimSuffix(collection, "s") + "_id"
}
