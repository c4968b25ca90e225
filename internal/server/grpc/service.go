package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "taskboard.v1.TaskBoard"

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed handler to a grpc.MethodDesc, running the server's
// interceptor chain around it.
func unary[Req, Resp any](name string, h func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return h(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return h(s, ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", (*GRPCServer).Register),
		unary("Login", (*GRPCServer).Login),
		unary("Logout", (*GRPCServer).Logout),
		unary("Me", (*GRPCServer).Me),
		unary("GetUser", (*GRPCServer).GetUser),
		unary("ListUsers", (*GRPCServer).ListUsers),
		unary("UpdateUser", (*GRPCServer).UpdateUser),
		unary("DeleteUser", (*GRPCServer).DeleteUser),

		unary("CreateBoard", (*GRPCServer).CreateBoard),
		unary("ListBoards", (*GRPCServer).ListBoards),
		unary("GetBoard", (*GRPCServer).GetBoard),
		unary("UpdateBoard", (*GRPCServer).UpdateBoard),
		unary("DeleteBoard", (*GRPCServer).DeleteBoard),

		unary("CreateList", (*GRPCServer).CreateList),
		unary("RenameList", (*GRPCServer).RenameList),
		unary("MoveList", (*GRPCServer).MoveList),
		unary("DeleteList", (*GRPCServer).DeleteList),

		unary("CreateCard", (*GRPCServer).CreateCard),
		unary("UpdateCard", (*GRPCServer).UpdateCard),
		unary("MoveCard", (*GRPCServer).MoveCard),
		unary("DeleteCard", (*GRPCServer).DeleteCard),
		unary("AssignCard", (*GRPCServer).AssignCard),
		unary("UnassignCard", (*GRPCServer).UnassignCard),
		unary("CommentCard", (*GRPCServer).CommentCard),
		unary("ListActivities", (*GRPCServer).ListActivities),

		unary("SendInvitation", (*GRPCServer).SendInvitation),
		unary("ListInvitations", (*GRPCServer).ListInvitations),
		unary("ResolveInvitation", (*GRPCServer).ResolveInvitation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskboard/v1/taskboard.json",
}
