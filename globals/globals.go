package globals

import "os"

var JwtSecret = []byte(jwtSecret())

func jwtSecret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "secreto_de_desarrollo"
}

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
