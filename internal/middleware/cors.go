package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// CORS returns a middleware answering cross-origin requests for the ledger API.
//
// origins is a comma separated list of allowed origins; "*" or an empty
// list allows any origin. Preflight requests are answered without reaching
// the handlers.
func CORS(origins string) (gin.HandlerFunc, error) {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        corsMaxAge,
	}

	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)

		switch origin {
		case "":
		case "*":
			config.AllowAllOrigins = true
		default:
			config.AllowOrigins = append(config.AllowOrigins, origin)
		}
	}

	if config.AllowAllOrigins || len(config.AllowOrigins) == 0 {
		config.AllowAllOrigins = true
		config.AllowOrigins = nil
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS config: %w", err)
	}

	return cors.New(config), nil
}
