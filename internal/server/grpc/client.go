package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Client is a typed TaskBoard client. After Login it attaches the access
// token to every call.
type Client struct {
	conn *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

// NewClient connects to target. Extra options are appended to the defaults
// (plaintext transport, JSON codec).
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{}
	defaults := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}
	conn, err := grpc.NewClient(target, append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Conn exposes the underlying connection, e.g. for health checks.
func (c *Client) Conn() *grpc.ClientConn { return c.conn }

func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) accessTokenInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	if token := c.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := c.conn.Invoke(ctx, fullMethod(method), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, req any) error {
	_, err := invoke[Empty](ctx, c, method, req)
	return err
}

func (c *Client) Register(ctx context.Context, email, password string) (*models.Profile, error) {
	return invoke[models.Profile](ctx, c, "Register", &RegisterRequest{Email: email, Password: password})
}

// Login authenticates and keeps the returned token for subsequent calls.
func (c *Client) Login(ctx context.Context, login, password string) (*LoginResponse, error) {
	res, err := invoke[LoginResponse](ctx, c, "Login", &LoginRequest{Login: login, Password: password})
	if err != nil {
		return nil, err
	}
	c.SetAccessToken(res.AccessToken)
	return res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, "Logout", &Empty{})
}

func (c *Client) Me(ctx context.Context) (*models.Profile, error) {
	return invoke[models.Profile](ctx, c, "Me", &Empty{})
}

func (c *Client) GetUser(ctx context.Context, userID string) (*models.Profile, error) {
	return invoke[models.Profile](ctx, c, "GetUser", &UserRequest{UserID: userID})
}

func (c *Client) ListUsers(ctx context.Context, req ListRequest) ([]models.Profile, error) {
	res, err := invoke[UsersResponse](ctx, c, "ListUsers", &req)
	if err != nil {
		return nil, err
	}
	return res.Users, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, upd models.ProfileUpdate) error {
	return c.call(ctx, "UpdateUser", &UpdateUserRequest{UserID: userID, Profile: upd})
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.call(ctx, "DeleteUser", &UserRequest{UserID: userID})
}

func (c *Client) CreateBoard(ctx context.Context, title, description string) (*models.Board, error) {
	return invoke[models.Board](ctx, c, "CreateBoard", &BoardInput{Title: title, Description: description})
}

func (c *Client) ListBoards(ctx context.Context, req ListRequest) ([]models.Board, error) {
	res, err := invoke[BoardsResponse](ctx, c, "ListBoards", &req)
	if err != nil {
		return nil, err
	}
	return res.Boards, nil
}

func (c *Client) GetBoard(ctx context.Context, boardID string) (*models.BoardDetails, error) {
	return invoke[models.BoardDetails](ctx, c, "GetBoard", &BoardRequest{BoardID: boardID})
}

func (c *Client) UpdateBoard(ctx context.Context, boardID, title, description string) error {
	return c.call(ctx, "UpdateBoard", &BoardInput{BoardID: boardID, Title: title, Description: description})
}

func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	return c.call(ctx, "DeleteBoard", &BoardRequest{BoardID: boardID})
}

func (c *Client) CreateList(ctx context.Context, boardID, title string, pos *float64) (*models.List, error) {
	return invoke[models.List](ctx, c, "CreateList", &CreateListRequest{BoardID: boardID, Title: title, Pos: pos})
}

func (c *Client) RenameList(ctx context.Context, boardID, listID, title string) error {
	return c.call(ctx, "RenameList", &RenameListRequest{ListRef: ListRef{BoardID: boardID, ListID: listID}, Title: title})
}

func (c *Client) MoveList(ctx context.Context, boardID, listID string, pos float64) error {
	return c.call(ctx, "MoveList", &MoveListRequest{ListRef: ListRef{BoardID: boardID, ListID: listID}, Pos: pos})
}

func (c *Client) DeleteList(ctx context.Context, boardID, listID string) error {
	return c.call(ctx, "DeleteList", &ListRef{BoardID: boardID, ListID: listID})
}

func (c *Client) CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error) {
	return invoke[models.Card](ctx, c, "CreateCard", &req)
}

func (c *Client) UpdateCard(ctx context.Context, boardID, cardID, title, description string) error {
	return c.call(ctx, "UpdateCard", &UpdateCardRequest{CardRef: CardRef{BoardID: boardID, CardID: cardID}, Title: title, Description: description})
}

func (c *Client) MoveCard(ctx context.Context, boardID, cardID, listID string, pos *float64) error {
	return c.call(ctx, "MoveCard", &MoveCardRequest{CardRef: CardRef{BoardID: boardID, CardID: cardID}, ListID: listID, Pos: pos})
}

func (c *Client) DeleteCard(ctx context.Context, boardID, cardID string) error {
	return c.call(ctx, "DeleteCard", &CardRef{BoardID: boardID, CardID: cardID})
}

func (c *Client) AssignCard(ctx context.Context, boardID, cardID, userID string) error {
	return c.call(ctx, "AssignCard", &AssignRequest{CardRef: CardRef{BoardID: boardID, CardID: cardID}, UserID: userID})
}

func (c *Client) UnassignCard(ctx context.Context, boardID, cardID, userID string) error {
	return c.call(ctx, "UnassignCard", &AssignRequest{CardRef: CardRef{BoardID: boardID, CardID: cardID}, UserID: userID})
}

func (c *Client) CommentCard(ctx context.Context, boardID, cardID, text string) (*models.Activity, error) {
	return invoke[models.Activity](ctx, c, "CommentCard", &CommentRequest{CardRef: CardRef{BoardID: boardID, CardID: cardID}, Text: text})
}

func (c *Client) ListActivities(ctx context.Context, boardID, cardID string) ([]models.Activity, error) {
	res, err := invoke[ActivitiesResponse](ctx, c, "ListActivities", &CardRef{BoardID: boardID, CardID: cardID})
	if err != nil {
		return nil, err
	}
	return res.Activities, nil
}

func (c *Client) SendInvitation(ctx context.Context, boardID, userID string, role models.BoardRole) (*models.Invitation, error) {
	return invoke[models.Invitation](ctx, c, "SendInvitation", &SendInvitationRequest{BoardID: boardID, UserID: userID, Role: role})
}

func (c *Client) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	res, err := invoke[InvitationsResponse](ctx, c, "ListInvitations", &Empty{})
	if err != nil {
		return nil, err
	}
	return res.Invitations, nil
}

func (c *Client) ResolveInvitation(ctx context.Context, invitationID string, accept bool) error {
	return c.call(ctx, "ResolveInvitation", &ResolveInvitationRequest{InvitationID: invitationID, Accept: accept})
}
