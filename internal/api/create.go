// ABOUTME: Post creation: POST /api2/new with content, image data URI, nsfw flag, parent id
// ABOUTME: Returns the raw reply text ("ok" on success); never retried

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreatePath is the post creation endpoint.
const CreatePath = "/api2/new"

// Form field names of the post creation call.
const (
	FieldContent = "content"
	FieldImage   = "image"
	FieldNSFW    = "nsfw"
	FieldParent  = "parent"
)

// NewPost is the post creation request.
type NewPost struct {
	Content string
	Image   string // data URI or empty
	NSFW    bool
	Parent  string // empty for a top-level post
}

// Values encodes p in the wire format; nsfw is "1" or "".
func (p NewPost) Values() url.Values {
	nsfw := ""
	if p.NSFW {
		nsfw = "1"
	}
	return url.Values{
		FieldContent: {p.Content},
		FieldImage:   {p.Image},
		FieldNSFW:    {nsfw},
		FieldParent:  {p.Parent},
	}
}

// Create submits p and returns the server's reply text. Any HTTP response is
// a reply, whatever its status; an empty non-2xx body is replaced by the
// status line. Only transport failures are errors.
func (c *Client) Create(ctx context.Context, p NewPost) (string, error) {
	status, body, err := c.postForm(ctx, CreatePath, p.Values(), false)
	if err != nil {
		return "", fmt.Errorf("creating post: %w", err)
	}
	if len(body) == 0 && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
		return fmt.Sprintf("%d %s", status, http.StatusText(status)), nil
	}
	return string(body), nil
}
