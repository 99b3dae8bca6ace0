package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrMissingToken   = errors.New("missing authorization header")
	ErrMalformedToken = errors.New("invalid authorization format")
)

type contextKey struct{}

// ContextWithClaims returns a new context with the given Claims attached.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext extracts Claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}

// ParseBearer extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", ErrMalformedToken
	}
	return token, nil
}

// Policy decides who may call which gRPC method.
type Policy struct {
	// Public methods skip authentication entirely.
	Public []string
	// Roles maps a full method name to the roles allowed to call it. A caller
	// needs any one of them. Methods absent from the map only require a valid
	// token.
	Roles map[string][]string
}

// Grant adds roles for each of methods and returns p for chaining.
func (p Policy) Grant(methods []string, roles ...string) Policy {
	if p.Roles == nil {
		p.Roles = make(map[string][]string, len(methods))
	}
	for _, m := range methods {
		p.Roles[m] = append(p.Roles[m], roles...)
	}
	return p
}

// UnaryServerInterceptor authenticates the bearer token in the incoming
// metadata and enforces policy before calling the handler.
func UnaryServerInterceptor(jwtService *JWTService, policy Policy) grpc.UnaryServerInterceptor {
	public := make(map[string]struct{}, len(policy.Public))
	for _, m := range policy.Public {
		public[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}
		token, err := ParseBearer(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		if allowed, guarded := policy.Roles[info.FullMethod]; guarded && !hasAnyRole(claims, allowed) {
			return nil, status.Errorf(codes.PermissionDenied, "required role(s): %v", allowed)
		}

		return handler(ContextWithClaims(ctx, claims), req)
	}
}

func hasAnyRole(c *Claims, roles []string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}
