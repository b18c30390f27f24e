package graph

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/service"
)

// AuthAPI is the slice of the auth service the resolvers use.
type AuthAPI interface {
	Register(ctx context.Context, input service.RegisterInput, createdBy string) (*service.CommonResponse, error)
	RegisterUser(ctx context.Context, input service.RegisterUserInput) (*service.CommonResponse, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.LoginResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

// ConcertAPI is the slice of the concert service the resolvers use.
type ConcertAPI interface {
	Create(ctx context.Context, input service.CreateConcertInput, createdBy string) (*model.Concert, error)
	Delete(ctx context.Context, id string) error
	GetConcerts(ctx context.Context, userID string, take, skip int) (*service.ConcertsPage, error)
}

// ReservationAPI is the slice of the reservation service the resolvers use.
type ReservationAPI interface {
	Reserve(ctx context.Context, userID, concertID string) (*service.CommonResponse, error)
	Cancel(ctx context.Context, userID, concertID string) (*service.CommonResponse, error)
}

// ActivityLogAPI is the slice of the activity-log service the resolvers use.
type ActivityLogAPI interface {
	FindAll(ctx context.Context, adminID string, take, skip int) (*service.ActivityLogsPage, error)
}

// Resolver carries the services the GraphQL schema resolves against.
type Resolver struct {
	Auth         AuthAPI
	Concerts     ConcertAPI
	Reservations ReservationAPI
	ActivityLogs ActivityLogAPI
}

// NewResolver wires the resolver.
func NewResolver(auth AuthAPI, concerts ConcertAPI, reservations ReservationAPI, logs ActivityLogAPI) *Resolver {
	return &Resolver{Auth: auth, Concerts: concerts, Reservations: reservations, ActivityLogs: logs}
}

// requireUser returns the authenticated user or an unauthorized error.
func requireUser(p graphql.ResolveParams) (*CurrentUser, error) {
	u := UserFrom(p.Context)
	if u == nil {
		return nil, service.Unauthorized("Authentication required")
	}
	return u, nil
}

// requireAdmin returns the authenticated admin or an unauthorized error.
func requireAdmin(p graphql.ResolveParams) (*CurrentUser, error) {
	u, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, service.Unauthorized("Admin role required")
	}
	return u, nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

func intArg(p graphql.ResolveParams, name string, fallback int) int {
	if v, ok := p.Args[name].(int); ok {
		return v
	}
	return fallback
}

func (r *Resolver) resolveConcerts(p graphql.ResolveParams) (interface{}, error) {
	u, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	return r.Concerts.GetConcerts(p.Context, u.ID, intArg(p, "take", 10), intArg(p, "skip", 0))
}

func (r *Resolver) resolveActivityLogs(p graphql.ResolveParams) (interface{}, error) {
	u, err := requireAdmin(p)
	if err != nil {
		return nil, err
	}
	// Log entries are attributed to the concert owner's username.
	return r.ActivityLogs.FindAll(p.Context, u.Username, intArg(p, "take", 10), intArg(p, "skip", 0))
}

func (r *Resolver) resolveMe(p graphql.ResolveParams) (interface{}, error) {
	u, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	return r.Auth.Me(p.Context, u.ID)
}

func (r *Resolver) resolveRegister(p graphql.ResolveParams) (interface{}, error) {
	u, err := requireAdmin(p)
	if err != nil {
		return nil, err
	}
	roles := make([]string, 0)
	if raw, ok := p.Args["roles"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	input := service.RegisterInput{
		Username: stringArg(p, "username"),
		Email:    stringArg(p, "email"),
		Password: stringArg(p, "password"),
		Roles:    roles,
	}
	return r.Auth.Register(p.Context, input, u.Username)
}

func (r *Resolver) resolveRegisterUser(p graphql.ResolveParams) (interface{}, error) {
	input := service.RegisterUserInput{
		Username:        stringArg(p, "username"),
		Email:           stringArg(p, "email"),
		Password:        stringArg(p, "password"),
		ConfirmPassword: stringArg(p, "confirmPassword"),
	}
	return r.Auth.RegisterUser(p.Context, input)
}

func (r *Resolver) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	return r.Auth.Login(p.Context, stringArg(p, "email"), stringArg(p, "password"))
}

func (r *Resolver) resolveRefreshToken(p graphql.ResolveParams) (interface{}, error) {
	return r.Auth.Refresh(p.Context, stringArg(p, "refreshToken"))
}

func (r *Resolver) resolveCreateConcert(p graphql.ResolveParams) (interface{}, error) {
	u, err := requireAdmin(p)
	if err != nil {
		return nil, err
	}
	seats := intArg(p, "totalSeats", 0)
	if seats <= 0 {
		return nil, service.BadRequest("totalSeats must be positive")
	}
	input := service.CreateConcertInput{
		Name:        stringArg(p, "name"),
		Description: stringArg(p, "description"),
		TotalSeats:  uint32(seats),
	}
	return r.Concerts.Create(p.Context, input, u.Username)
}

func (r *Resolver) resolveDeleteConcert(p graphql.ResolveParams) (interface{}, error) {
	if _, err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := r.Concerts.Delete(p.Context, stringArg(p, "id")); err != nil {
		return nil, err
	}
	return &service.CommonResponse{Status: true, Message: "Concert deleted successfully"}, nil
}

func (r *Resolver) resolveReserve(p graphql.ResolveParams) (interface{}, error) {
	u, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	return r.Reservations.Reserve(p.Context, u.ID, stringArg(p, "concertId"))
}

func (r *Resolver) resolveCancel(p graphql.ResolveParams) (interface{}, error) {
	u, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	return r.Reservations.Cancel(p.Context, u.ID, stringArg(p, "concertId"))
}
