package models

// Vote is a single participant's vote on a card. The server keeps at most one per participant.
type Vote struct {
	ParticipantName string `json:"participant_name"`
}

// Reaction is an emoji reaction left by a participant on a card.
type Reaction struct {
	Emoji           string `json:"emoji"`
	ParticipantName string `json:"participant_name"`
}

// Card represents a single note placed in a column.
type Card struct {
	ID         string     `json:"id"`
	Column     string     `json:"column"`
	Text       string     `json:"text"`
	AuthorName string     `json:"author_name"`
	Published  bool       `json:"published"`
	Votes      []Vote     `json:"votes"`
	Reactions  []Reaction `json:"reactions"`
	Assignee   *string    `json:"assignee,omitempty"`
	CreatedAt  Timestamp  `json:"created_at"`
}

// VoteCount returns the number of votes on the card.
func (c *Card) VoteCount() int {
	return len(c.Votes)
}

// HasVoteFrom reports whether the named participant has voted on the card.
func (c *Card) HasVoteFrom(name string) bool {
	if name == "" {
		return false
	}
	for _, v := range c.Votes {
		if v.ParticipantName == name {
			return true
		}
	}
	return false
}

// IsAuthoredBy reports whether name is the author of the card.
func (c *Card) IsAuthoredBy(name string) bool {
	return name != "" && c.AuthorName == name
}

// AssigneeName returns the assignee or an empty string when unassigned.
func (c *Card) AssigneeName() string {
	if c.Assignee == nil {
		return ""
	}
	return *c.Assignee
}
