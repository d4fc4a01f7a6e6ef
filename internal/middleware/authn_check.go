package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	firebaseutil "io.revoapps.revofit/internal/firebase"
)

const authCacheTTL = 15 * time.Minute

// AuthMiddleware verifies the Firebase ID token and sets the user's uid in
// the request context. Verified tokens are cached in Redis (keyed by token
// hash) to keep hot requests off the Firebase verification path.
func AuthMiddleware(firebaseApp *firebase.App, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// Check if header starts with "Bearer "
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with 'Bearer '"})
			c.Abort()
			return
		}

		// Extract token
		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			c.Abort()
			return
		}

		ctx := context.Background()
		cacheKey := authCacheKey(token)

		// Step 1: Redis cache of previously verified tokens
		var userUID string
		if redisClient != nil {
			if uid, err := redisClient.Get(ctx, cacheKey).Result(); err == nil {
				userUID = uid
			}
		}

		// Step 2: verify with Firebase
		if userUID == "" {
			authClient, err := firebaseutil.GetAuthClient(firebaseApp)
			if err == nil {
				if idToken, err := authClient.VerifyIDToken(ctx, token); err == nil {
					userUID = idToken.UID
					if redisClient != nil {
						redisClient.Set(ctx, cacheKey, userUID, authCacheTTL)
					}
				}
			}
		}

		if userUID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Set user UID in context for use in handlers
		c.Set("uid", userUID)
		c.Next()
	}
}

func authCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth_uid:" + hex.EncodeToString(sum[:])
}
