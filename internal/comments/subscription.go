package comments

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/craftfolio-api/internal/docstore"
	"github.com/craftfolio-api/internal/models"
)

// TreeSubscription is a live feed of full comment-tree snapshots for one
// post. It merges the top-level comment subscription with one reply
// subscription per comment: the comment list is replaced wholesale on
// every top-level snapshot, while each comment keeps its last known reply
// list until its own reply subscription reports in. Reply subscriptions
// are started lazily as comments appear and are only torn down together
// with the whole tree subscription.
type TreeSubscription struct {
	store  docstore.Store
	postID string
	log    zerolog.Logger

	snapshots chan []models.Comment

	mu        sync.Mutex
	closed    bool
	cancelled bool
	order     []string
	comments  map[string]models.Comment
	replies   map[string][]models.Reply
	top       docstore.Subscription
	replySubs map[string]docstore.Subscription
}

// Subscribe opens a live subscription on the post's comment tree. The
// returned subscription keeps delivering snapshots until Cancel is
// called; it does not terminate on its own.
func (s *Service) Subscribe(ctx context.Context, postID string) (*TreeSubscription, error) {
	top, err := s.store.Subscribe(ctx, commentsPath(postID))
	if err != nil {
		return nil, err
	}

	t := &TreeSubscription{
		store:     s.store,
		postID:    postID,
		log:       s.log.With().Str("post_id", postID).Logger(),
		snapshots: make(chan []models.Comment, 1),
		comments:  make(map[string]models.Comment),
		replies:   make(map[string][]models.Reply),
		top:       top,
		replySubs: make(map[string]docstore.Subscription),
	}

	go t.consumeTop()
	return t, nil
}

// Snapshots delivers merged tree snapshots, newest state winning over
// undelivered intermediates. The channel closes after Cancel.
func (t *TreeSubscription) Snapshots() <-chan []models.Comment {
	return t.snapshots
}

// Cancel releases the top-level subscription and every per-comment reply
// subscription. Safe to call more than once.
func (t *TreeSubscription) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	subs := make([]docstore.Subscription, 0, len(t.replySubs)+1)
	subs = append(subs, t.top)
	for _, sub := range t.replySubs {
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	t.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (t *TreeSubscription) consumeTop() {
	for snap := range t.top.Snapshots() {
		t.applyTopSnapshot(snap)
	}

	// Top subscription ended: tear everything down and close the feed.
	t.Cancel()
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	close(t.snapshots)
}

// applyTopSnapshot replaces the comment list wholesale and starts reply
// subscriptions for comments seen for the first time.
func (t *TreeSubscription) applyTopSnapshot(snap []docstore.Document) {
	t.mu.Lock()
	t.order = t.order[:0]
	t.comments = make(map[string]models.Comment, len(snap))

	var newIDs []string
	for _, doc := range snap {
		t.order = append(t.order, doc.ID)
		t.comments[doc.ID] = commentFromDoc(doc)
		if _, ok := t.replySubs[doc.ID]; !ok {
			newIDs = append(newIDs, doc.ID)
			// Reserve the slot so a rapid second snapshot does not
			// start a duplicate subscription.
			t.replySubs[doc.ID] = nil
		}
	}
	cancelled := t.cancelled
	t.mu.Unlock()

	for _, id := range newIDs {
		if cancelled {
			break
		}
		t.watchReplies(id)
	}

	t.emit()
}

func (t *TreeSubscription) watchReplies(commentID string) {
	sub, err := t.store.Subscribe(context.Background(), repliesPath(t.postID, commentID))
	if err != nil {
		t.log.Error().Err(err).Str("comment_id", commentID).Msg("Reply subscription failed")
		t.mu.Lock()
		delete(t.replySubs, commentID)
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		sub.Cancel()
		return
	}
	t.replySubs[commentID] = sub
	t.mu.Unlock()

	go func() {
		for snap := range sub.Snapshots() {
			replies := make([]models.Reply, 0, len(snap))
			for _, doc := range snap {
				replies = append(replies, replyFromDoc(doc))
			}

			t.mu.Lock()
			t.replies[commentID] = replies
			t.mu.Unlock()

			t.emit()
		}
	}()
}

// emit assembles the merged tree and delivers it without blocking,
// replacing an undelivered stale snapshot if the consumer is slow.
func (t *TreeSubscription) emit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.cancelled {
		return
	}

	tree := make([]models.Comment, 0, len(t.order))
	for _, id := range t.order {
		comment := t.comments[id]
		if replies, ok := t.replies[id]; ok {
			comment.Replies = replies
		}
		tree = append(tree, comment)
	}

	for {
		select {
		case t.snapshots <- tree:
			return
		default:
			select {
			case <-t.snapshots:
			default:
			}
		}
	}
}
