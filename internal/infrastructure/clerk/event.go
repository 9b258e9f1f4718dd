package clerk

import (
	"encoding/json"
	"fmt"
)

const EventUserCreated = "user.created"

// Event is a webhook delivery envelope. Data is decoded lazily since its shape
// depends on Type.
type Event struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("clerk: decode event: %w", err)
	}
	return &ev, nil
}

// User decodes Data as a user object (user.created, user.updated).
func (e *Event) User() (UserDTO, error) {
	var u UserDTO
	if err := json.Unmarshal(e.Data, &u); err != nil {
		return UserDTO{}, fmt.Errorf("clerk: decode user: %w", err)
	}
	return u, nil
}
