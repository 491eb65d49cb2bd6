package graphql

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"weftshop.GO/api"
	"weftshop.GO/graphqlserver"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

// RegisterGraphQLRoutes mounts the GraphQL endpoint on the root instance.
// Schema extensions must be registered before the first call (init time).
func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	schema, err := graphqlserver.NewSchema(db)
	if err != nil {
		log.Printf("graphql: schema parse failed, endpoint disabled: %v", err)
		return
	}
	handler := echo.WrapHandler(graphqlserver.Handler(schema))
	e.POST("/graphql", handler)
	e.GET("/graphql", func(c echo.Context) error {
		return c.HTML(http.StatusOK, playground)
	})
}

// GraphiQL page served on GET /graphql for manual queries.
const playground = `<!DOCTYPE html>
<html>
<head>
  <title>GraphQL</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql/graphiql.min.css" />
</head>
<body style="margin:0;">
  <div id="graphiql" style="height:100vh;"></div>
  <script src="https://unpkg.com/react/umd/react.production.min.js"></script>
  <script src="https://unpkg.com/react-dom/umd/react-dom.production.min.js"></script>
  <script src="https://unpkg.com/graphiql/graphiql.min.js"></script>
  <script>
    ReactDOM.render(
      React.createElement(GraphiQL, { fetcher: GraphiQL.createFetcher({ url: '/graphql' }) }),
      document.getElementById('graphiql')
    );
  </script>
</body>
</html>`
