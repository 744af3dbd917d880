package models

import (
	"time"
)

// Comment is a top-level comment on a post. Likes and Dislikes hold user
// identifiers; the toggle operations keep them disjoint at all times.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	Replies   []Reply   `json:"replies"`
}

// Reply is a response stored under exactly one parent comment. Replies to
// replies are flattened into the same collection; RepliedTo records the
// display name of whoever was answered and is never used for traversal.
type Reply struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	RepliedTo string    `json:"replied_to,omitempty"`
}

// HasLike reports whether user is in the comment's like set
func (c *Comment) HasLike(user string) bool {
	return containsUser(c.Likes, user)
}

// HasDislike reports whether user is in the comment's dislike set
func (c *Comment) HasDislike(user string) bool {
	return containsUser(c.Dislikes, user)
}

func containsUser(set []string, user string) bool {
	for _, u := range set {
		if u == user {
			return true
		}
	}
	return false
}
