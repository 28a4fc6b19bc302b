package domain

import "time"

// Event is the envelope of an inbound webhook callback. Message and Caller are
// optional; transports that already know them embed them so the worker does not
// have to resolve them again.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Resource  string    `json:"resource"`
	Event     string    `json:"event"`
	Filter    string    `json:"filter"`
	OrgID     string    `json:"orgId"`
	CreatedBy string    `json:"createdBy"`
	AppID     string    `json:"appId"`
	OwnedBy   string    `json:"ownedBy"`
	Status    string    `json:"status"`
	ActorID   string    `json:"actorId"`
	Data      EventData `json:"data"`

	Message *Message `json:"-"`
	Caller  *Person  `json:"-"`
}

type EventData struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	RoomType    RoomType  `json:"roomType"`
	PersonID    string    `json:"personId"`
	PersonEmail string    `json:"personEmail"`
	Created     time.Time `json:"created"`
}

type RoomType string

const (
	Direct RoomType = "direct"
	Group  RoomType = "group"
)

type Message struct {
	ID              string    `json:"id"`
	RoomID          string    `json:"roomId"`
	RoomType        RoomType  `json:"roomType"`
	PersonID        string    `json:"personId"`
	PersonEmail     string    `json:"personEmail"`
	Text            string    `json:"text"`
	Markdown        string    `json:"markdown,omitempty"`
	MentionedPeople []string  `json:"mentionedPeople,omitempty"`
	Created         time.Time `json:"created"`
}

type Person struct {
	ID          string   `json:"id"`
	Emails      []string `json:"emails"`
	DisplayName string   `json:"displayName"`
	NickName    string   `json:"nickName"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	OrgID       string   `json:"orgId"`
	Type        string   `json:"type"`
}

// Names returns every non-empty name a person may be addressed by.
func (p *Person) Names() []string {
	if p == nil {
		return nil
	}

	var names []string
	for _, n := range []string{p.DisplayName, p.NickName, p.FirstName} {
		if n != "" {
			names = append(names, n)
		}
	}

	return names
}

type Room struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Type  RoomType `json:"type"`
}

type Webhook struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TargetURL string `json:"targetUrl"`
	Resource  string `json:"resource"`
	Event     string `json:"event"`
	Secret    string `json:"secret,omitempty"`
}

type TeamMembership struct {
	ID       string `json:"id"`
	TeamID   string `json:"teamId"`
	PersonID string `json:"personId"`
}

type Prompt struct {
	Prompt string
	Model  string
}
