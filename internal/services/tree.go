package services

import "quillpress/internal/models"

// Thread is a comment with its visible replies, newest first.
type Thread struct {
	Comment *models.Comment
	Replies []*Thread
}

// Walk visits every comment in the thread, depth first.
func (t *Thread) Walk(fn func(*models.Comment)) {
	if t == nil {
		return
	}
	fn(t.Comment)
	for _, r := range t.Replies {
		r.Walk(fn)
	}
}

// Keep decides whether a comment is part of a rendered thread. A reply that is
// not kept hides its own replies too.
type Keep func(*models.Comment) bool

func KeepStatus(status models.CommentStatus) Keep {
	return func(c *models.Comment) bool { return c.Status == status }
}

func KeepAll(*models.Comment) bool { return true }

// forest links comments of one article into threads in a single pass. The
// input order is preserved among siblings, so callers pass it newest first.
type forest struct {
	nodes    map[uint]*Thread
	children map[uint][]*Thread
	roots    []*Thread
}

func newForest(comments []models.Comment, keep Keep) *forest {
	f := &forest{
		nodes:    make(map[uint]*Thread, len(comments)),
		children: make(map[uint][]*Thread),
	}
	for i := range comments {
		c := &comments[i]
		node := &Thread{Comment: c}
		f.nodes[c.ID] = node
		if !keep(c) {
			continue
		}
		if c.ParentID == nil {
			f.roots = append(f.roots, node)
		} else {
			f.children[*c.ParentID] = append(f.children[*c.ParentID], node)
		}
	}
	for id, node := range f.nodes {
		node.Replies = f.children[id]
	}
	return f
}

// BuildThreads returns the kept top-level comments with their kept replies.
func BuildThreads(comments []models.Comment, keep Keep) []*Thread {
	return newForest(comments, keep).roots
}

// BuildThread returns the thread rooted at rootID. The root itself is returned
// regardless of keep; only its replies are filtered.
func BuildThread(rootID uint, comments []models.Comment, keep Keep) *Thread {
	return newForest(comments, keep).nodes[rootID]
}
