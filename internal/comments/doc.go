package comments

import (
	"fmt"
	"time"

	"github.com/craftfolio-api/internal/docstore"
	"github.com/craftfolio-api/internal/models"
)

// Document field names as persisted in the store
const (
	fieldText      = "text"
	fieldUser      = "user"
	fieldCreatedAt = "createdAt"
	fieldLikes     = "likes"
	fieldDislikes  = "dislikes"
	fieldRepliedTo = "repliedTo"
)

func commentsPath(postID string) string {
	return fmt.Sprintf("posts/%s/comments", postID)
}

func commentPath(postID, commentID string) string {
	return fmt.Sprintf("posts/%s/comments/%s", postID, commentID)
}

func repliesPath(postID, commentID string) string {
	return fmt.Sprintf("posts/%s/comments/%s/replies", postID, commentID)
}

func replyPath(postID, commentID, replyID string) string {
	return fmt.Sprintf("posts/%s/comments/%s/replies/%s", postID, commentID, replyID)
}

func commentFromDoc(doc docstore.Document) models.Comment {
	return models.Comment{
		ID:        doc.ID,
		Text:      fieldAsString(doc.Fields, fieldText),
		Author:    fieldAsString(doc.Fields, fieldUser),
		CreatedAt: fieldAsTime(doc.Fields, fieldCreatedAt),
		Likes:     fieldAsStrings(doc.Fields, fieldLikes),
		Dislikes:  fieldAsStrings(doc.Fields, fieldDislikes),
		Replies:   []models.Reply{},
	}
}

func replyFromDoc(doc docstore.Document) models.Reply {
	return models.Reply{
		ID:        doc.ID,
		Text:      fieldAsString(doc.Fields, fieldText),
		Author:    fieldAsString(doc.Fields, fieldUser),
		CreatedAt: fieldAsTime(doc.Fields, fieldCreatedAt),
		Likes:     fieldAsStrings(doc.Fields, fieldLikes),
		Dislikes:  fieldAsStrings(doc.Fields, fieldDislikes),
		RepliedTo: fieldAsString(doc.Fields, fieldRepliedTo),
	}
}

func fieldAsString(fields docstore.Fields, key string) string {
	s, _ := fields[key].(string)
	return s
}

func fieldAsTime(fields docstore.Fields, key string) time.Time {
	t, _ := fields[key].(time.Time)
	return t
}

func fieldAsStrings(fields docstore.Fields, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
