package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// VerifyToken returns the subject of a valid token.
func (s *GRPCServer) VerifyToken(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	subject, err := s.auth.VerifyToken(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.String(subject), nil
}

// WhoAmI describes the user authenticated by the interceptor.
func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	user, ok := userFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return structpb.NewStruct(map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
