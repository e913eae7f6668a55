// ABOUTME: Remote mention search: POST /api/search with the token text, JSON string array back
// ABOUTME: SearchResults carries hand-written easyjson codecs (no reflection on the hot path)

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// SearchPath is the suggestion endpoint.
const SearchPath = "/api/search"

// SearchResults is the search response body: suggestion strings in rank order.
type SearchResults []string

// UnmarshalEasyJSON decodes a JSON array of strings; null decodes as empty.
func (r *SearchResults) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		in.Skip()
		*r = nil
	} else {
		in.Delim('[')
		out := SearchResults{}
		for !in.IsDelim(']') {
			out = append(out, in.String())
			in.WantComma()
		}
		in.Delim(']')
		*r = out
	}
	if isTopLevel {
		in.Consumed()
	}
}

// MarshalEasyJSON encodes the results as a JSON array; nil encodes as [].
func (r SearchResults) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('[')
	for i, s := range r {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(s)
	}
	w.RawByte(']')
}

// Search asks the server for completions of id (a token without its marker).
// Transport failures, non-2xx statuses, and malformed bodies are errors.
func (c *Client) Search(ctx context.Context, id string) ([]string, error) {
	status, body, err := c.postForm(ctx, SearchPath, url.Values{"id": {id}}, true)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", id, err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("searching %q: status %d", id, status)
	}

	var res SearchResults
	if err := easyjson.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return res, nil
}
