package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat":              &graphql.Field{Type: graphql.Float},
			"lon":              &graphql.Field{Type: graphql.Float},
			"type":             &graphql.Field{Type: graphql.String},
			"population":       &graphql.Field{Type: graphql.Int},
			"temperatureC":     &graphql.Field{Type: graphql.Float},
			"windSpeedMs":      &graphql.Field{Type: graphql.Float},
			"visibilityMeters": &graphql.Field{Type: graphql.Float},
		},
	})

	assessmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteAssessment",
		Fields: graphql.Fields{
			"route":            &graphql.Field{Type: graphql.NewList(pointType)},
			"routeDistance":    &graphql.Field{Type: graphql.Float},
			"populationImpact": &graphql.Field{Type: graphql.Int},
			"noiseImpactScore": &graphql.Field{Type: graphql.Float},
			"visibilityRisk":   &graphql.Field{Type: graphql.Float},
			"windRisk":         &graphql.Field{Type: graphql.Float},
		},
	})

	coordArgs := graphql.FieldConfigArgument{
		"latMin": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"lonMin": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"latMax": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"lonMax": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"boundingBox": &graphql.Field{
				Type:        graphql.NewList(geoPointType),
				Description: "Sparse-index geopoints inside a bounding box",
				Args:        coordArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Viewport.Viewport(p.Context, domain.Bounds{
						MinLat: p.Args["latMin"].(float64),
						MinLon: p.Args["lonMin"].(float64),
						MaxLat: p.Args["latMax"].(float64),
						MaxLon: p.Args["lonMax"].(float64),
					})
				},
			},
			"assessRoute": &graphql.Field{
				Type:        assessmentType,
				Description: "Ground-impact profile of the straight-line flight",
				Args: graphql.FieldConfigArgument{
					"latStart": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lonStart": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"latEnd":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lonEnd":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Assess.Assess(p.Context,
						domain.Point{Lat: p.Args["latStart"].(float64), Lon: p.Args["lonStart"].(float64)},
						domain.Point{Lat: p.Args["latEnd"].(float64), Lon: p.Args["lonEnd"].(float64)},
					)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// GraphQLHandler serves POST /graphql.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)

	return func(c *fiber.Ctx) error {
		if err != nil {
			return errInternal(c, "graphql schema: "+err.Error())
		}

		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}
