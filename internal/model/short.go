package model

import "time"

// Short statuses follow the production pipeline order.
const (
	ShortStatusIdea   = "idea"
	ShortStatusScript = "script"
)

// Short is one tracked shorts production item.
type Short struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Subtopic  string    `json:"subtopic"`
	Hook      string    `json:"hook"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShortPatch is a partial update; nil fields are left unchanged.
type ShortPatch struct {
	Topic    *string `json:"topic,omitempty"`
	Subtopic *string `json:"subtopic,omitempty"`
	Hook     *string `json:"hook,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// IdeaRequest is the input for AI idea generation.
type IdeaRequest struct {
	Keyword string `json:"keyword"`
}

// TrendingVideo is one trending snippet used to seed idea generation.
type TrendingVideo struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

// Idea is the generated shorts idea returned by the AI collaborator.
type Idea struct {
	Topic    string          `json:"topic"`
	Subtopic string          `json:"subtopic"`
	Hook     string          `json:"hook"`
	Notes    string          `json:"notes"`
	Trends   []TrendingVideo `json:"trends"`
}
