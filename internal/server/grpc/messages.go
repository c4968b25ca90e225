package grpc

import "github.com/dmitrijs2005/taskboard/internal/server/models"

type Empty struct{}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Session     models.Session `json:"session"`
	User        models.Profile `json:"user"`
}

type UserRequest struct {
	UserID string `json:"user_id"`
}

type UpdateUserRequest struct {
	UserID  string               `json:"user_id"`
	Profile models.ProfileUpdate `json:"profile"`
}

type ListRequest struct {
	Search  string   `json:"search,omitempty"`
	Filters []string `json:"filters,omitempty"`
	Sort    string   `json:"sort,omitempty"`
}

type UsersResponse struct {
	Users []models.Profile `json:"users"`
}

type BoardRequest struct {
	BoardID string `json:"board_id"`
}

type BoardInput struct {
	BoardID     string `json:"board_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type BoardsResponse struct {
	Boards []models.Board `json:"boards"`
}

type CreateListRequest struct {
	BoardID string   `json:"board_id"`
	Title   string   `json:"title"`
	Pos     *float64 `json:"pos,omitempty"`
}

type ListRef struct {
	BoardID string `json:"board_id"`
	ListID  string `json:"list_id"`
}

type RenameListRequest struct {
	ListRef
	Title string `json:"title"`
}

type MoveListRequest struct {
	ListRef
	Pos float64 `json:"pos"`
}

type CreateCardRequest struct {
	BoardID     string   `json:"board_id"`
	ListID      string   `json:"list_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Pos         *float64 `json:"pos,omitempty"`
}

type CardRef struct {
	BoardID string `json:"board_id"`
	CardID  string `json:"card_id"`
}

type UpdateCardRequest struct {
	CardRef
	Title       string `json:"title"`
	Description string `json:"description"`
}

type MoveCardRequest struct {
	CardRef
	ListID string   `json:"list_id"`
	Pos    *float64 `json:"pos,omitempty"`
}

type AssignRequest struct {
	CardRef
	UserID string `json:"user_id"`
}

type CommentRequest struct {
	CardRef
	Text string `json:"text"`
}

type ActivitiesResponse struct {
	Activities []models.Activity `json:"activities"`
}

type SendInvitationRequest struct {
	BoardID string           `json:"board_id"`
	UserID  string           `json:"user_id"`
	Role    models.BoardRole `json:"role"`
}

type InvitationsResponse struct {
	Invitations []models.Invitation `json:"invitations"`
}

type ResolveInvitationRequest struct {
	InvitationID string `json:"invitation_id"`
	Accept       bool   `json:"accept"`
}
