package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/markermap/internal/core/domain"
	"github.com/samirrijal/markermap/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the marker service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	markerFields := graphql.Fields{
		"id":       &graphql.Field{Type: graphql.String},
		"name":     &graphql.Field{Type: graphql.String},
		"position": &graphql.Field{Type: positionType},
	}

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Marker",
		Fields: markerFields,
	})

	nearby := func(f func(usecases.NearbyMarker) interface{}) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			return f(p.Source.(usecases.NearbyMarker)), nil
		}
	}

	nearbyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyMarker",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.String,
				Resolve: nearby(func(n usecases.NearbyMarker) interface{} { return n.ID }),
			},
			"name": &graphql.Field{
				Type:    graphql.String,
				Resolve: nearby(func(n usecases.NearbyMarker) interface{} { return n.Name }),
			},
			"position": &graphql.Field{
				Type:    positionType,
				Resolve: nearby(func(n usecases.NearbyMarker) interface{} { return n.Position }),
			},
			"distance_m": &graphql.Field{
				Type:    graphql.Float,
				Resolve: nearby(func(n usecases.NearbyMarker) interface{} { return n.DistanceMeters }),
			},
		},
	})

	mapConfigType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapConfig",
		Fields: graphql.Fields{
			"tile_url":    &graphql.Field{Type: graphql.String},
			"attribution": &graphql.Field{Type: graphql.String},
			"center_lat":  &graphql.Field{Type: graphql.Float},
			"center_lng":  &graphql.Field{Type: graphql.Float},
			"zoom":        &graphql.Field{Type: graphql.Int},
			"cluster":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	saveResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SaveResult",
		Fields: graphql.Fields{
			"message": &graphql.Field{Type: graphql.String},
			"count":   &graphql.Field{Type: graphql.Int},
			"bytes":   &graphql.Field{Type: graphql.Int},
			"saved_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*usecases.SaveResult).SavedAt.Format("2006-01-02T15:04:05Z07:00"), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markers": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "Markers whose name contains query (case-insensitive)",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["query"].(string)
					return deps.Markers.List(p.Context, q), nil
				},
			},
			"marker": &graphql.Field{
				Type:        markerType,
				Description: "Get a marker by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Markers.Get(p.Context, p.Args["id"].(string))
				},
			},
			"nearby": &graphql.Field{
				Type:        graphql.NewList(nearbyType),
				Description: "Markers near a point, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pos := domain.Position{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					return deps.Markers.Nearby(p.Context, pos, p.Args["radius"].(float64), p.Args["limit"].(int))
				},
			},
			"mapConfig": &graphql.Field{
				Type:        mapConfigType,
				Description: "Tile layer and initial view",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Map, nil
				},
			},
		},
	})

	markerArgs := graphql.FieldConfigArgument{
		"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"lng":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addMarker": &graphql.Field{
				Type:        markerType,
				Description: "Add a marker; a blank name adds nothing and returns null",
				Args:        markerArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pos := domain.Position{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					m, err := deps.Markers.Add(p.Context, p.Args["name"].(string), pos)
					if err != nil || m == nil {
						return nil, err
					}
					return m, nil
				},
			},
			"updateMarker": &graphql.Field{
				Type: markerType,
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name": markerArgs["name"],
					"lat":  markerArgs["lat"],
					"lng":  markerArgs["lng"],
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pos := domain.Position{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					return deps.Markers.Update(p.Context, p.Args["id"].(string), p.Args["name"].(string), pos)
				},
			},
			"deleteMarker": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := deps.Markers.Delete(p.Context, p.Args["id"].(string)); err != nil {
						return false, err
					}
					return true, nil
				},
			},
			"saveMarkers": &graphql.Field{
				Type: saveResultType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := deps.Markers.Save(p.Context)
					if err != nil {
						return nil, fmt.Errorf("save markers: %w", err)
					}
					return res, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
