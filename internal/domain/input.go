package domain

// ContentInput carries the caller-supplied fields for create and update.
// Slug is derived from Title when empty. TagIDs replaces the full set of
// tag associations.
type ContentInput struct {
	Title       string         `json:"title" validate:"required,min=1,max=200"`
	Slug        string         `json:"slug" validate:"omitempty,slug"`
	Description string         `json:"description" validate:"max=2000"`
	Type        ContentType    `json:"type" validate:"required,content_type"`
	Status      ContentStatus  `json:"status" validate:"required,oneof=draft published archived"`
	Body        string         `json:"body"`
	Metadata    map[string]any `json:"metadata"`
	Children    []string       `json:"children" validate:"max=500,dive,required"`
	TagIDs      []string       `json:"tag_ids" validate:"max=20,dive,required"`
}

// TagInput carries the caller-supplied fields for a tag.
type TagInput struct {
	Name  string `json:"name" validate:"required,min=1,max=64"`
	Slug  string `json:"slug" validate:"omitempty,slug"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}
