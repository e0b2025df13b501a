package request

// CreateRequest is the request body for creating a session
type CreateRequest struct {
	UserID       string `json:"userId"`
	GamePassword string `json:"gamePassword,omitempty"`
	Location     string `json:"location"`
	IsPublic     bool   `json:"isPublic"`
	GameName     string `json:"gameName"`
}

// JoinRequest is the request body for joining by code
type JoinRequest struct {
	UserID       string `json:"userId"`
	GameCode     string `json:"gameCode"`
	GamePassword string `json:"gamePassword,omitempty"`
}

// JoinTeamRequest is the request body for choosing a team
type JoinTeamRequest struct {
	UserID string `json:"userId"`
	Team   string `json:"team"`
}

// ScoreRequest is the request body for ending a session or updating its state
type ScoreRequest struct {
	GameTime       int `json:"gameTime"`
	TeamRedScores  int `json:"teamRedScores"`
	TeamBlueScores int `json:"teamBlueScores"`
}

// PutUserRequest is the request body for registering a username
type PutUserRequest struct {
	Username string `json:"username"`
}
