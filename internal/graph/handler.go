package graph

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-ticketing/internal/service"
)

// request is the standard GraphQL-over-HTTP POST body.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves the GraphQL endpoint over echo.
type Handler struct {
	schema graphql.Schema
}

// NewHandler returns a handler executing against the given schema.
func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// Serve handles POST /graphql. Resolver errors are reported in the GraphQL
// errors array with the service status code under extensions.code; the HTTP
// status stays 200 as GraphQL clients expect.
func (h *Handler) Serve(c echo.Context) error {
	var req request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"errors": []echo.Map{{"message": "invalid request body"}},
		})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"errors": []echo.Map{{"message": "query is required"}},
		})
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c.Request().Context(),
	})
	for i := range result.Errors {
		if result.Errors[i].Extensions == nil {
			result.Errors[i].Extensions = map[string]interface{}{}
		}
		result.Errors[i].Extensions["code"] = codeFor(result.Errors[i])
	}
	return c.JSON(http.StatusOK, result)
}

// codeFor digs the service status code out of a formatted GraphQL error.
func codeFor(fe gqlerrors.FormattedError) int {
	err := fe.OriginalError()
	if err == nil {
		return http.StatusInternalServerError
	}
	var gerr *gqlerrors.Error
	if errors.As(err, &gerr) && gerr.OriginalError != nil {
		err = gerr.OriginalError
	}
	return service.CodeOf(err)
}
