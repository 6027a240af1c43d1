package domain

import "time"

// User is a Strava athlete who has signed in at least once. The ID is the
// athlete ID as a decimal string.
type User struct {
	ID           string
	Name         string
	Image        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Image: u.Image}
}

type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Session is the resolved identity of a request: who the caller is and which
// Strava credentials act on their behalf.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
}

type StoredSession struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Athlete is the profile returned by the remote source for a bearer token.
type Athlete struct {
	ID        string
	FirstName string
	LastName  string
	Image     string
}

func (a Athlete) DisplayName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// OAuthToken is the result of an authorization-code exchange.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
