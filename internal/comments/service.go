// Package comments implements the comment tree for a post: top-level
// comments with one flattened level of replies, like/dislike vote sets
// and live snapshot subscriptions. All state lives in the document store;
// mutations are forwarded there and observed back through snapshots,
// never inserted into local state optimistically.
package comments

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/craftfolio-api/internal/config"
	"github.com/craftfolio-api/internal/docstore"
	"github.com/craftfolio-api/internal/models"
	"github.com/craftfolio-api/internal/validation"
)

// Service owns comment and reply operations for posts
type Service struct {
	store docstore.Store
	cfg   *config.CommentConfig
	log   zerolog.Logger
}

// NewService creates a new comment service
func NewService(store docstore.Store, cfg *config.CommentConfig, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		log:   log.With().Str("service", "comments").Logger(),
	}
}

// SubmitComment creates a new top-level comment and returns its id
func (s *Service) SubmitComment(ctx context.Context, postID, text, user string) (string, error) {
	if err := validation.CommentText(text, s.cfg.MinLength); err != nil {
		return "", err
	}
	if user == "" {
		return "", models.ErrAuthRequired
	}

	id, err := s.store.Create(ctx, commentsPath(postID), docstore.Fields{
		fieldText:      strings.TrimSpace(text),
		fieldUser:      user,
		fieldCreatedAt: time.Now().UTC(),
		fieldLikes:     []string{},
		fieldDislikes:  []string{},
	})
	if err != nil {
		return "", err
	}

	s.log.Debug().Str("post_id", postID).Str("comment_id", id).Msg("Comment created")
	return id, nil
}

// SubmitReply creates a reply under the given parent comment. Replies to
// replies land in the same collection; repliedTo is recorded verbatim as
// a display label and never validated against an existing entity.
func (s *Service) SubmitReply(ctx context.Context, postID, parentID, text, user, repliedTo string) (string, error) {
	if err := validation.CommentText(text, s.cfg.MinLength); err != nil {
		return "", err
	}
	if user == "" {
		return "", models.ErrAuthRequired
	}

	id, err := s.store.Create(ctx, repliesPath(postID, parentID), docstore.Fields{
		fieldText:      strings.TrimSpace(text),
		fieldUser:      user,
		fieldCreatedAt: time.Now().UTC(),
		fieldLikes:     []string{},
		fieldDislikes:  []string{},
		fieldRepliedTo: repliedTo,
	})
	if err != nil {
		return "", err
	}

	s.log.Debug().Str("post_id", postID).Str("reply_id", id).Msg("Reply created")
	return id, nil
}

// EditComment overwrites a comment's text. Only the author may edit;
// votes and creation time are left untouched.
func (s *Service) EditComment(ctx context.Context, postID, commentID, text, user string) error {
	return s.edit(ctx, commentPath(postID, commentID), text, user)
}

// EditReply overwrites a reply's text under the same rules as EditComment
func (s *Service) EditReply(ctx context.Context, postID, parentID, replyID, text, user string) error {
	return s.edit(ctx, replyPath(postID, parentID, replyID), text, user)
}

// DeleteComment removes a top-level comment. Its reply sub-collection is
// deliberately not cascaded; orphaned reply documents stay in the store
// and simply stop being rendered once the parent is gone.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID, user string) error {
	return s.remove(ctx, commentPath(postID, commentID), user)
}

// DeleteReply removes a reply
func (s *Service) DeleteReply(ctx context.Context, postID, parentID, replyID, user string) error {
	return s.remove(ctx, replyPath(postID, parentID, replyID), user)
}

// ToggleLike flips the user's like on a comment. Liking removes any
// existing dislike; liking twice returns the comment to the neutral
// state. A missing user is a silent no-op.
func (s *Service) ToggleLike(ctx context.Context, postID, commentID, user string) error {
	return s.toggle(ctx, commentPath(postID, commentID), fieldLikes, fieldDislikes, user)
}

// ToggleDislike is the mirror of ToggleLike
func (s *Service) ToggleDislike(ctx context.Context, postID, commentID, user string) error {
	return s.toggle(ctx, commentPath(postID, commentID), fieldDislikes, fieldLikes, user)
}

// ToggleReplyLike flips the user's like on a reply
func (s *Service) ToggleReplyLike(ctx context.Context, postID, parentID, replyID, user string) error {
	return s.toggle(ctx, replyPath(postID, parentID, replyID), fieldLikes, fieldDislikes, user)
}

// ToggleReplyDislike is the mirror of ToggleReplyLike
func (s *Service) ToggleReplyDislike(ctx context.Context, postID, parentID, replyID, user string) error {
	return s.toggle(ctx, replyPath(postID, parentID, replyID), fieldDislikes, fieldLikes, user)
}

// Tree returns the current comment tree for a post in one shot
func (s *Service) Tree(ctx context.Context, postID string) ([]models.Comment, error) {
	docs, err := s.store.List(ctx, commentsPath(postID))
	if err != nil {
		return nil, err
	}

	tree := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		comment := commentFromDoc(doc)

		replyDocs, err := s.store.List(ctx, repliesPath(postID, doc.ID))
		if err != nil {
			return nil, err
		}
		for _, rd := range replyDocs {
			comment.Replies = append(comment.Replies, replyFromDoc(rd))
		}

		tree = append(tree, comment)
	}
	return tree, nil
}

func (s *Service) edit(ctx context.Context, path, text, user string) error {
	if err := validation.CommentText(text, s.cfg.MinLength); err != nil {
		return err
	}
	if user == "" {
		return models.ErrAuthRequired
	}
	if err := s.authorize(ctx, path, user); err != nil {
		return err
	}
	return s.store.Update(ctx, path, docstore.Fields{fieldText: strings.TrimSpace(text)})
}

func (s *Service) remove(ctx context.Context, path, user string) error {
	if user == "" {
		return models.ErrAuthRequired
	}
	if err := s.authorize(ctx, path, user); err != nil {
		return err
	}
	return s.store.Delete(ctx, path)
}

func (s *Service) toggle(ctx context.Context, path, voteField, oppositeField, user string) error {
	if user == "" {
		return nil
	}
	return s.store.ToggleVote(ctx, path, voteField, oppositeField, user)
}

// authorize checks that user is the author of the document at path
func (s *Service) authorize(ctx context.Context, path, user string) error {
	fields, err := s.store.Get(ctx, path)
	if err != nil {
		return err
	}
	if fieldAsString(fields, fieldUser) != user {
		return models.ErrForbidden
	}
	return nil
}
