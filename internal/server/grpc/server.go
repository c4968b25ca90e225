// Package grpc exposes the task board over gRPC. Messages are plain Go
// structs carried by a JSON codec; the access token travels in the
// access_token metadata key.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type SessionVerifier interface {
	Verify(ctx context.Context, token string) (models.Session, error)
}

type Users interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, session models.Session) error
	Me(ctx context.Context, userID string) (*models.User, error)
	Get(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context, q models.ListQuery) ([]models.Profile, error)
	Update(ctx context.Context, actor models.Session, userID string, upd models.ProfileUpdate) error
	Delete(ctx context.Context, actor models.Session, userID string) error
}

type Boards interface {
	Create(ctx context.Context, userID, title, description string) (*models.Board, error)
	List(ctx context.Context, userID string, q models.ListQuery) ([]models.Board, error)
	Get(ctx context.Context, userID, boardID string) (*models.BoardDetails, error)
	Update(ctx context.Context, userID, boardID, title, description string) error
	Delete(ctx context.Context, userID, boardID string) error
}

type Lists interface {
	Create(ctx context.Context, userID, boardID, title string, pos *float64) (*models.List, error)
	Rename(ctx context.Context, userID, boardID, listID, title string) error
	Move(ctx context.Context, userID, boardID, listID string, pos float64) error
	Delete(ctx context.Context, userID, boardID, listID string) error
}

type Cards interface {
	Create(ctx context.Context, userID, boardID, listID, title, description string, pos *float64) (*models.Card, error)
	Update(ctx context.Context, userID, boardID, cardID, title, description string) error
	Move(ctx context.Context, userID, boardID, cardID, listID string, pos *float64) error
	Delete(ctx context.Context, userID, boardID, cardID string) error
	Assign(ctx context.Context, userID, boardID, cardID, assigneeID string) error
	Unassign(ctx context.Context, userID, boardID, cardID, assigneeID string) error
	Comment(ctx context.Context, userID, boardID, cardID, text string) (*models.Activity, error)
	Activities(ctx context.Context, userID, boardID, cardID string) ([]models.Activity, error)
}

type Invitations interface {
	Send(ctx context.Context, boardID, invitedBy, inviteeID string, role models.BoardRole) (*models.Invitation, error)
	ListForUser(ctx context.Context, userID string) ([]models.Invitation, error)
	Resolve(ctx context.Context, invitationID, inviteeID string, accept bool) error
}

var (
	_ Users       = (*services.UserService)(nil)
	_ Boards      = (*services.BoardService)(nil)
	_ Lists       = (*services.ListService)(nil)
	_ Cards       = (*services.CardService)(nil)
	_ Invitations = (*services.InvitationService)(nil)
)

// Services bundles the business layer the server dispatches to.
type Services struct {
	Sessions    SessionVerifier
	Users       Users
	Boards      Boards
	Lists       Lists
	Cards       Cards
	Invitations Invitations
}

type GRPCServer struct {
	address string
	logger  logging.Logger
	Services
}

func NewGRPCServer(a string, l logging.Logger, svc Services) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		Services: svc,
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	)
	srv.RegisterService(&serviceDesc, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then drains in-flight
// calls and returns.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
