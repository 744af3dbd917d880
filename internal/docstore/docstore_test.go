package docstore

import (
	"errors"
	"testing"
)

func TestCollectionScope(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantColl  string
		wantScope map[string]string
		wantErr   bool
	}{
		{
			name:      "top-level collection",
			path:      "posts",
			wantColl:  "posts",
			wantScope: map[string]string{},
		},
		{
			name:      "nested collection",
			path:      "posts/p1/comments",
			wantColl:  "comments",
			wantScope: map[string]string{"post_id": "p1"},
		},
		{
			name:     "doubly nested collection",
			path:     "posts/p1/comments/c1/replies",
			wantColl: "replies",
			wantScope: map[string]string{
				"post_id":    "p1",
				"comment_id": "c1",
			},
		},
		{
			name:    "document path rejected",
			path:    "posts/p1",
			wantErr: true,
		},
		{
			name:    "empty segment rejected",
			path:    "posts//comments",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll, scope, err := collectionScope(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrBadPath) {
					t.Fatalf("Expected ErrBadPath, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("collectionScope failed: %v", err)
			}
			if coll != tt.wantColl {
				t.Errorf("Expected collection %q, got %q", tt.wantColl, coll)
			}
			if len(scope) != len(tt.wantScope) {
				t.Fatalf("Expected scope %v, got %v", tt.wantScope, scope)
			}
			for k, v := range tt.wantScope {
				if scope[k] != v {
					t.Errorf("Expected scope[%s]=%q, got %q", k, v, scope[k])
				}
			}
		})
	}
}

func TestDocumentRef(t *testing.T) {
	coll, id, scope, err := documentRef("posts/p1/comments/c1")
	if err != nil {
		t.Fatalf("documentRef failed: %v", err)
	}
	if coll != "comments" || id != "c1" {
		t.Errorf("Expected comments/c1, got %s/%s", coll, id)
	}
	if scope["post_id"] != "p1" {
		t.Errorf("Expected post_id=p1, got %v", scope)
	}

	if _, _, _, err := documentRef("posts"); !errors.Is(err, ErrBadPath) {
		t.Errorf("Expected ErrBadPath for collection path, got %v", err)
	}
	if _, _, _, err := documentRef("posts/p1/comments"); !errors.Is(err, ErrBadPath) {
		t.Errorf("Expected ErrBadPath for odd segments, got %v", err)
	}
}

func TestParentField(t *testing.T) {
	if got := parentField("posts"); got != "post_id" {
		t.Errorf("Expected post_id, got %q", got)
	}
	if got := parentField("comments"); got != "comment_id" {
		t.Errorf("Expected comment_id, got %q", got)
	}
}
