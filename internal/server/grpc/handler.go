package grpc

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/listquery"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) session(ctx context.Context) (models.Session, error) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return models.Session{}, status.Error(codes.Unauthenticated, "missing session")
	}
	return session, nil
}

func (r *ListRequest) query() models.ListQuery {
	return models.ListQuery{Search: r.Search, Filters: r.Filters, Sort: listquery.ParseSort(r.Sort)}
}

// done wraps handlers that return nothing but an error.
func (s *GRPCServer) done(ctx context.Context, err error) (*Empty, error) {
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

// users

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*models.Profile, error) {
	u, err := s.Users.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	p := u.Profile()
	return &p, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := s.Users.Login(ctx, req.Login, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &LoginResponse{AccessToken: res.Token, Session: res.Session, User: res.User.Profile()}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Users.Logout(ctx, session))
}

func (s *GRPCServer) Me(ctx context.Context, _ *Empty) (*models.Profile, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.Me(ctx, session.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	p := u.Profile()
	return &p, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *UserRequest) (*models.Profile, error) {
	p, err := s.Users.Get(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return p, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *ListRequest) (*UsersResponse, error) {
	users, err := s.Users.List(ctx, req.query())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &UsersResponse{Users: users}, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Users.Update(ctx, session, req.UserID, req.Profile))
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *UserRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Users.Delete(ctx, session, req.UserID))
}

// boards

func (s *GRPCServer) CreateBoard(ctx context.Context, req *BoardInput) (*models.Board, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.Boards.Create(ctx, session.UserID, req.Title, req.Description)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return b, nil
}

func (s *GRPCServer) ListBoards(ctx context.Context, req *ListRequest) (*BoardsResponse, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	boards, err := s.Boards.List(ctx, session.UserID, req.query())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &BoardsResponse{Boards: boards}, nil
}

func (s *GRPCServer) GetBoard(ctx context.Context, req *BoardRequest) (*models.BoardDetails, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.Boards.Get(ctx, session.UserID, req.BoardID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return d, nil
}

func (s *GRPCServer) UpdateBoard(ctx context.Context, req *BoardInput) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Boards.Update(ctx, session.UserID, req.BoardID, req.Title, req.Description))
}

func (s *GRPCServer) DeleteBoard(ctx context.Context, req *BoardRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Boards.Delete(ctx, session.UserID, req.BoardID))
}

// lists

func (s *GRPCServer) CreateList(ctx context.Context, req *CreateListRequest) (*models.List, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.Lists.Create(ctx, session.UserID, req.BoardID, req.Title, req.Pos)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return l, nil
}

func (s *GRPCServer) RenameList(ctx context.Context, req *RenameListRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Lists.Rename(ctx, session.UserID, req.BoardID, req.ListID, req.Title))
}

func (s *GRPCServer) MoveList(ctx context.Context, req *MoveListRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Lists.Move(ctx, session.UserID, req.BoardID, req.ListID, req.Pos))
}

func (s *GRPCServer) DeleteList(ctx context.Context, req *ListRef) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Lists.Delete(ctx, session.UserID, req.BoardID, req.ListID))
}

// cards

func (s *GRPCServer) CreateCard(ctx context.Context, req *CreateCardRequest) (*models.Card, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.Cards.Create(ctx, session.UserID, req.BoardID, req.ListID, req.Title, req.Description, req.Pos)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return c, nil
}

func (s *GRPCServer) UpdateCard(ctx context.Context, req *UpdateCardRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Cards.Update(ctx, session.UserID, req.BoardID, req.CardID, req.Title, req.Description))
}

func (s *GRPCServer) MoveCard(ctx context.Context, req *MoveCardRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Cards.Move(ctx, session.UserID, req.BoardID, req.CardID, req.ListID, req.Pos))
}

func (s *GRPCServer) DeleteCard(ctx context.Context, req *CardRef) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Cards.Delete(ctx, session.UserID, req.BoardID, req.CardID))
}

func (s *GRPCServer) AssignCard(ctx context.Context, req *AssignRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Cards.Assign(ctx, session.UserID, req.BoardID, req.CardID, req.UserID))
}

func (s *GRPCServer) UnassignCard(ctx context.Context, req *AssignRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Cards.Unassign(ctx, session.UserID, req.BoardID, req.CardID, req.UserID))
}

func (s *GRPCServer) CommentCard(ctx context.Context, req *CommentRequest) (*models.Activity, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.Cards.Comment(ctx, session.UserID, req.BoardID, req.CardID, req.Text)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return a, nil
}

func (s *GRPCServer) ListActivities(ctx context.Context, req *CardRef) (*ActivitiesResponse, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	log, err := s.Cards.Activities(ctx, session.UserID, req.BoardID, req.CardID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ActivitiesResponse{Activities: log}, nil
}

// invitations

func (s *GRPCServer) SendInvitation(ctx context.Context, req *SendInvitationRequest) (*models.Invitation, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.Invitations.Send(ctx, req.BoardID, session.UserID, req.UserID, req.Role)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return inv, nil
}

func (s *GRPCServer) ListInvitations(ctx context.Context, _ *Empty) (*InvitationsResponse, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	invs, err := s.Invitations.ListForUser(ctx, session.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &InvitationsResponse{Invitations: invs}, nil
}

func (s *GRPCServer) ResolveInvitation(ctx context.Context, req *ResolveInvitationRequest) (*Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.done(ctx, s.Invitations.Resolve(ctx, req.InvitationID, session.UserID, req.Accept))
}
