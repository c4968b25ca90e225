package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"github.com/dmitrijs2005/taskboard/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// ---- fakes ----
// Each fake embeds its interface; calling a method that is not overridden
// panics, which flags an unexpected call.

type fakeUsers struct {
	Users
	sessions  *sessions.Store
	user      *models.User
	loggedOut []string
}

func (f *fakeUsers) Register(_ context.Context, email, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, common.ErrValidation
	}
	return &models.User{ID: "u1", Email: email, Role: models.UserRoleUser}, nil
}

func (f *fakeUsers) Login(_ context.Context, login, password string) (*services.LoginResult, error) {
	if password != "password1" {
		return nil, common.ErrorUnauthorized
	}
	token, s, err := f.sessions.Issue(f.user.ID, f.user.Role)
	if err != nil {
		return nil, err
	}
	return &services.LoginResult{Token: token, Session: s, User: f.user}, nil
}

func (f *fakeUsers) Logout(ctx context.Context, s models.Session) error {
	f.loggedOut = append(f.loggedOut, s.ID)
	return f.sessions.Revoke(ctx, s.ID, s.ExpiresAt)
}

func (f *fakeUsers) Me(_ context.Context, userID string) (*models.User, error) {
	if userID != f.user.ID {
		return nil, common.ErrorUnauthorized
	}
	return f.user, nil
}

type fakeBoards struct {
	Boards
	lastQuery models.ListQuery
}

func (f *fakeBoards) Get(_ context.Context, userID, boardID string) (*models.BoardDetails, error) {
	if boardID != "b1" {
		return nil, common.ErrBoardNotFound
	}
	return &models.BoardDetails{
		Board: models.Board{ID: "b1", Title: "Sprint", Members: []models.Member{{UserID: userID, Role: models.BoardRoleOwner}}},
		Lists: []models.List{{ID: "l1", BoardID: "b1", Title: "Todo", Pos: 65536}},
	}, nil
}

func (f *fakeBoards) List(_ context.Context, _ string, q models.ListQuery) ([]models.Board, error) {
	f.lastQuery = q
	return []models.Board{{ID: "b1", Title: "Sprint"}}, nil
}

type fakeInvitations struct {
	Invitations
	resolveErr error
}

func (f *fakeInvitations) Send(_ context.Context, boardID, invitedBy, inviteeID string, role models.BoardRole) (*models.Invitation, error) {
	if invitedBy != "u1" {
		return nil, common.ErrForbidden
	}
	return &models.Invitation{ID: "i1", UserID: inviteeID, Board: models.InvitedBoard{ID: boardID, Title: "Sprint", InvitedBy: invitedBy}, Role: role}, nil
}

func (f *fakeInvitations) Resolve(context.Context, string, string, bool) error {
	return f.resolveErr
}

type harness struct {
	client      *Client
	users       *fakeUsers
	boards      *fakeBoards
	invitations *fakeInvitations
}

func startServer(t *testing.T) *harness {
	t.Helper()
	store, _ := newSessionStore(t)
	h := &harness{
		users:       &fakeUsers{sessions: store, user: &models.User{ID: "u1", Email: "o@example.com", Role: models.UserRoleUser}},
		boards:      &fakeBoards{},
		invitations: &fakeInvitations{},
	}
	srv := NewGRPCServer("", logging.Nop{}, Services{
		Sessions:    store,
		Users:       h.users,
		Boards:      h.boards,
		Invitations: h.invitations,
	})

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	h.client = client

	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return h
}

func TestE2E_LoginThenAuthenticatedCalls(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	_, err := h.client.Me(ctx)
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.Login(ctx, "o@example.com", "wrong")
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	res, err := h.client.Login(ctx, "o@example.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "u1", res.User.ID)

	me, err := h.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "o@example.com", me.Email)

	d, err := h.client.GetBoard(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Sprint", d.Title)
	require.Len(t, d.Lists, 1)
	assert.Equal(t, 65536.0, d.Lists[0].Pos)

	_, err = h.client.GetBoard(ctx, "missing")
	require.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, common.ErrBoardNotFound.Error(), status.Convert(err).Message())
}

func TestE2E_RegisterIsPublicAndValidates(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	p, err := h.client.Register(ctx, "new@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", p.Email)

	_, err = h.client.Register(ctx, "new@example.com", "short")
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestE2E_LogoutRevokesToken(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	res, err := h.client.Login(ctx, "o@example.com", "password1")
	require.NoError(t, err)
	require.NoError(t, h.client.Logout(ctx))
	assert.Equal(t, []string{res.Session.ID}, h.users.loggedOut)

	_, err = h.client.Me(ctx)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrSessionRevoked.Error(), status.Convert(err).Message())
}

func TestE2E_ErrorMapping(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()
	_, err := h.client.Login(ctx, "o@example.com", "password1")
	require.NoError(t, err)

	h.invitations.resolveErr = common.ErrDuplicateInvitation
	err = h.client.ResolveInvitation(ctx, "i1", true)
	require.Equal(t, codes.AlreadyExists, status.Code(err))

	h.invitations.resolveErr = errors.Join(common.ErrTransactionAborted, errors.New("db error: reset"))
	err = h.client.ResolveInvitation(ctx, "i1", true)
	require.Equal(t, codes.Aborted, status.Code(err))

	h.invitations.resolveErr = errors.New("db error: password=hunter2")
	err = h.client.ResolveInvitation(ctx, "i1", true)
	require.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "internal error", status.Convert(err).Message())

	inv, err := h.client.SendInvitation(ctx, "b1", "u2", models.BoardRoleEditor)
	require.NoError(t, err)
	assert.Equal(t, "u2", inv.UserID)
	assert.Equal(t, "u1", inv.Board.InvitedBy)
}

func TestE2E_ListQueryIsForwarded(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()
	_, err := h.client.Login(ctx, "o@example.com", "password1")
	require.NoError(t, err)

	boards, err := h.client.ListBoards(ctx, ListRequest{Search: "spr", Filters: []string{"title"}, Sort: "title_desc"})
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "spr", h.boards.lastQuery.Search)
	assert.Equal(t, []models.SortField{{Field: "title", Desc: true}}, h.boards.lastQuery.Sort)
}

func TestE2E_HealthCheck(t *testing.T) {
	h := startServer(t)

	resp, err := healthpb.NewHealthClient(h.client.Conn()).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, Services{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, Services{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
