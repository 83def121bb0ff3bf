package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Post is one community forum thread.
type Post struct {
	ID         string   `json:"_id"`
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	UserAvatar string   `json:"user_avatar"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	Replies    int      `json:"replies"`
	Views      int      `json:"views"`
	Likes      int      `json:"likes"`
	LikedBy    []string `json:"liked_by"`
	IsPinned   bool     `json:"is_pinned"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// Comment is one reply under a post.
type Comment struct {
	ID         string   `json:"_id"`
	PostID     string   `json:"post_id"`
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	UserAvatar string   `json:"user_avatar"`
	Content    string   `json:"content"`
	Likes      int      `json:"likes"`
	LikedBy    []string `json:"liked_by"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// PostQuery filters the post list. Zero values mean no filter; the
// backend caps the page size on its side.
type PostQuery struct {
	Category string
	Search   string
	Limit    int
	Skip     int
}

// NewPost is the creation request for a thread. The backend fills in
// the author's name and avatar from the user record.
type NewPost struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// NewComment is the creation request for a reply.
type NewComment struct {
	PostID  string `json:"post_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// LikeResult reports the toggled state and the fresh counter.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// Posts lists forum threads, newest first, with the total match count.
func (c *Client) Posts(ctx context.Context, q PostQuery) ([]Post, int, error) {
	query := url.Values{}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		query.Set("skip", strconv.Itoa(q.Skip))
	}

	var result struct {
		Posts []Post `json:"posts"`
		Total int    `json:"total"`
	}
	if err := c.get(ctx, "forum_posts", "/forum/posts", query, &result); err != nil {
		return nil, 0, err
	}
	return result.Posts, result.Total, nil
}

// Post fetches a single thread, bumping its view counter server-side.
func (c *Client) Post(ctx context.Context, postID string) (*Post, error) {
	var result struct {
		Post Post `json:"post"`
	}
	if err := c.get(ctx, "forum_post", "/forum/posts/"+url.PathEscape(postID), nil, &result); err != nil {
		return nil, err
	}
	return &result.Post, nil
}

// CreatePost publishes a new thread and returns it as stored.
func (c *Client) CreatePost(ctx context.Context, post NewPost) (*Post, error) {
	var result struct {
		Post Post `json:"post"`
	}
	if err := c.sendJSON(ctx, "forum_create_post", http.MethodPost, "/forum/posts", post, &result); err != nil {
		return nil, err
	}
	return &result.Post, nil
}

// LikePost toggles the user's like on a thread.
func (c *Client) LikePost(ctx context.Context, postID, userID string) (*LikeResult, error) {
	var result LikeResult
	err := c.sendJSON(ctx, "forum_like_post", http.MethodPost,
		"/forum/posts/"+url.PathEscape(postID)+"/like",
		map[string]string{"user_id": userID}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Comments lists a thread's replies, oldest first.
func (c *Client) Comments(ctx context.Context, postID string) ([]Comment, error) {
	var result struct {
		Comments []Comment `json:"comments"`
	}
	err := c.get(ctx, "forum_comments", "/forum/posts/"+url.PathEscape(postID)+"/comments", nil, &result)
	if err != nil {
		return nil, err
	}
	return result.Comments, nil
}

// CreateComment publishes a reply and returns it as stored.
func (c *Client) CreateComment(ctx context.Context, comment NewComment) (*Comment, error) {
	var result struct {
		Comment Comment `json:"comment"`
	}
	if err := c.sendJSON(ctx, "forum_create_comment", http.MethodPost, "/forum/comments", comment, &result); err != nil {
		return nil, err
	}
	return &result.Comment, nil
}

// LikeComment toggles the user's like on a reply.
func (c *Client) LikeComment(ctx context.Context, commentID, userID string) (*LikeResult, error) {
	var result LikeResult
	err := c.sendJSON(ctx, "forum_like_comment", http.MethodPost,
		"/forum/comments/"+url.PathEscape(commentID)+"/like",
		map[string]string{"user_id": userID}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
