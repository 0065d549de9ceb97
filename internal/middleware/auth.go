package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/utils"
)

// AuthConfig carries the Casdoor application settings.
type AuthConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// Authenticator verifies bearer tokens issued by Casdoor and stores the
// caller's identity on the request context.
type Authenticator struct {
	client *casdoorsdk.Client
	logger utils.Logger
}

func NewAuthenticator(cfg AuthConfig, logger utils.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &Authenticator{
		client: client,
		logger: logger,
	}
}

// Middleware parses the Authorization header and populates user_id, user_name
// and user_email in the gin context. Requests without a valid token get 401.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing bearer token",
			})
			return
		}

		claims, err := a.client.ParseJwtToken(token)
		if err != nil {
			a.logger.Warn("Token verification failed", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.User.Id)
		c.Set("user_name", claims.User.Name)
		c.Set("user_email", claims.User.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// StaticUserMiddleware injects a fixed user identity. It backs local
// development when Casdoor is not configured.
func StaticUserMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}
