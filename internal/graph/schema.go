package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/repository"
)

// concertSource normalizes the two shapes the Concert type is resolved
// from: bare concerts (createConcert) and list rows annotated with the
// caller's reservation status.
func concertSource(src interface{}) (model.Concert, *string) {
	switch v := src.(type) {
	case repository.ConcertWithStatus:
		return v.Concert, v.UserReservationStatus
	case *repository.ConcertWithStatus:
		return v.Concert, v.UserReservationStatus
	case *model.Concert:
		return *v, nil
	case model.Concert:
		return v, nil
	}
	return model.Concert{}, nil
}

func concertField(pick func(model.Concert, *string) (interface{}, error)) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			c, status := concertSource(p.Source)
			return pick(c, status)
		},
	}
}

// NewSchema builds the executable schema around the given resolver.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	commonResponseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CommonResponse",
		Fields: graphql.Fields{
			"status":  &graphql.Field{Type: graphql.Boolean},
			"message": &graphql.Field{Type: graphql.String},
		},
	})

	loginResponseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LoginResponse",
		Fields: graphql.Fields{
			"status":       &graphql.Field{Type: graphql.Boolean},
			"message":      &graphql.Field{Type: graphql.String},
			"token":        &graphql.Field{Type: graphql.String},
			"refreshToken": &graphql.Field{Type: graphql.String},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.ID},
			"username":  &graphql.Field{Type: graphql.String},
			"email":     &graphql.Field{Type: graphql.String},
			"roles":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	concertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Concert",
		Fields: graphql.Fields{
			"id": concertField(func(c model.Concert, _ *string) (interface{}, error) {
				return c.ID, nil
			}),
			"name": concertField(func(c model.Concert, _ *string) (interface{}, error) {
				return c.Name, nil
			}),
			"description": concertField(func(c model.Concert, _ *string) (interface{}, error) {
				return c.Description, nil
			}),
			"totalSeats": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, _ := concertSource(p.Source)
					return int(c.TotalSeats), nil
				},
			},
			"seatsAvailable": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, _ := concertSource(p.Source)
					return int(c.SeatsAvailable), nil
				},
			},
			"createdBy": concertField(func(c model.Concert, _ *string) (interface{}, error) {
				return c.CreatedBy, nil
			}),
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, _ := concertSource(p.Source)
					return c.CreatedAt, nil
				},
			},
			"userReservationStatus": concertField(func(_ model.Concert, status *string) (interface{}, error) {
				if status == nil {
					return nil, nil
				}
				return *status, nil
			}),
		},
	})

	concertSummaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ConcertSummary",
		Fields: graphql.Fields{
			"totalSeat": &graphql.Field{Type: graphql.Int},
			"reserved":  &graphql.Field{Type: graphql.Int},
			"cancelled": &graphql.Field{Type: graphql.Int},
		},
	})

	concertsPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ConcertsPage",
		Fields: graphql.Fields{
			"summary": &graphql.Field{Type: concertSummaryType},
			"data":    &graphql.Field{Type: graphql.NewList(concertType)},
		},
	})

	activityLogType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ActivityLog",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.ID},
			"action":      &graphql.Field{Type: graphql.String},
			"username":    &graphql.Field{Type: graphql.String},
			"concertName": &graphql.Field{Type: graphql.String},
			"createdAt":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	activityLogsPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ActivityLogsPage",
		Fields: graphql.Fields{
			"data":  &graphql.Field{Type: graphql.NewList(activityLogType)},
			"total": &graphql.Field{Type: graphql.Int},
		},
	})

	pagingArgs := graphql.FieldConfigArgument{
		"take": &graphql.ArgumentConfig{Type: graphql.Int},
		"skip": &graphql.ArgumentConfig{Type: graphql.Int},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"concerts": &graphql.Field{
				Type:    concertsPageType,
				Args:    pagingArgs,
				Resolve: r.resolveConcerts,
			},
			"activityLogs": &graphql.Field{
				Type:    activityLogsPageType,
				Args:    pagingArgs,
				Resolve: r.resolveActivityLogs,
			},
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveMe,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: commonResponseType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"roles":    &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: r.resolveRegister,
			},
			"registerUser": &graphql.Field{
				Type: commonResponseType,
				Args: graphql.FieldConfigArgument{
					"username":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"confirmPassword": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveRegisterUser,
			},
			"login": &graphql.Field{
				Type: loginResponseType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveLogin,
			},
			"refreshToken": &graphql.Field{
				Type: loginResponseType,
				Args: graphql.FieldConfigArgument{
					"refreshToken": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveRefreshToken,
			},
			"createConcert": &graphql.Field{
				Type: concertType,
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"totalSeats":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.resolveCreateConcert,
			},
			"deleteConcert": &graphql.Field{
				Type: commonResponseType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveDeleteConcert,
			},
			"reserve": &graphql.Field{
				Type: commonResponseType,
				Args: graphql.FieldConfigArgument{
					"concertId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveReserve,
			},
			"cancel": &graphql.Field{
				Type: commonResponseType,
				Args: graphql.FieldConfigArgument{
					"concertId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveCancel,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
