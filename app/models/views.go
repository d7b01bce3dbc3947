package models

// PostSummary is one entry of a listing page.
type PostSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Truncated  bool   `json:"truncated"`
	Attachment string `json:"attachment,omitempty"`
	MediaKind  string `json:"media_kind,omitempty"`
	ReplyCount int    `json:"reply_count"`
	Color      string `json:"color"`
}

// Page is a slice of threads ordered by last activity.
type Page struct {
	Number  int           `json:"page"`
	Posts   []PostSummary `json:"posts"`
	HasNext bool          `json:"has_next"`
	HasPrev bool          `json:"has_prev"`
}

// NextPage is the number of the following page, or 0 when there is none.
func (p *Page) NextPage() int {
	if !p.HasNext {
		return 0
	}
	return p.Number + 1
}

// PrevPage is the number of the preceding page, or 0 when there is none.
func (p *Page) PrevPage() int {
	if !p.HasPrev {
		return 0
	}
	return p.Number - 1
}

// Reply is a numbered reply inside a thread view.
type Reply struct {
	Number    int    `json:"number"`
	Post      *Post  `json:"post"`
	MediaKind string `json:"media_kind,omitempty"`
}

// Thread is an original post followed by its replies.
type Thread struct {
	ParentID      string  `json:"parent_id"`
	Root          *Post   `json:"root"`
	RootMediaKind string  `json:"root_media_kind,omitempty"`
	Replies       []Reply `json:"replies"`
}
