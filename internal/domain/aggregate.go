package domain

import "time"

// Interactable is anything that can carry per-user interaction flags.
type Interactable interface {
	InteractionID() string
	SetInteraction(liked, saved bool)
}

// ContentAggregate is a content row with its tags and, for collections,
// one level of resolved children. Children of children are never
// expanded; every child aggregate has an empty Children slice.
type ContentAggregate struct {
	Content
	Tags     []*Tag              `json:"tags"`
	Children []*ContentAggregate `json:"children"`
	Liked    bool                `json:"liked"`
	Saved    bool                `json:"saved"`
}

// InteractionID implements Interactable.
func (a *ContentAggregate) InteractionID() string { return a.ID }

// SetInteraction implements Interactable.
func (a *ContentAggregate) SetInteraction(liked, saved bool) {
	a.Liked = liked
	a.Saved = saved
}

// ChildIDs returns the IDs of the resolved children in order.
func (a *ContentAggregate) ChildIDs() []string {
	out := make([]string, 0, len(a.Children))
	for _, c := range a.Children {
		out = append(out, c.ID)
	}
	return out
}

// ContentPreview is the light listing form of a content item.
type ContentPreview struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Type        ContentType   `json:"type"`
	Status      ContentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	PublishedAt *time.Time    `json:"published_at"`
	Likes       int           `json:"likes"`
	Saves       int           `json:"saves"`
	Tags        []*Tag        `json:"tags"`
	Liked       bool          `json:"liked"`
	Saved       bool          `json:"saved"`
}

// InteractionID implements Interactable.
func (p *ContentPreview) InteractionID() string { return p.ID }

// SetInteraction implements Interactable.
func (p *ContentPreview) SetInteraction(liked, saved bool) {
	p.Liked = liked
	p.Saved = saved
}

// InteractionKind names an interaction relation.
type InteractionKind string

// Interaction kinds. Each maps to its own existence table and counter.
const (
	InteractionLike InteractionKind = "like"
	InteractionSave InteractionKind = "save"
)
