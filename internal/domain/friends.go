package domain

import "time"

// FriendLink tracks another athlete by ID. The friend does not have to be a
// user of this service.
type FriendLink struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	FriendID    string    `json:"friendId"`
	FriendName  string    `json:"friendName"`
	FriendImage string    `json:"friendImage,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
