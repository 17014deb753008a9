package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"cargotrack-backend/internal/models"
	"cargotrack-backend/internal/repository"
	"cargotrack-backend/internal/session"
	"cargotrack-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

type LoginRequest struct {
	AccessCode string `json:"access_code"`
}

type LoginResponse struct {
	OK    bool                  `json:"ok"`
	Token string                `json:"token,omitempty"`
	User  *models.UserResponse  `json:"user,omitempty"`
	Error string                `json:"error,omitempty"`
}

// Login authenticates by access code. A hit stamps last_login and
// records the session; a miss returns 401 with no side effects.
func Login(userRepo *repository.UserRepository, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.AccessCode == "" {
			utils.RespondError(w, http.StatusBadRequest, "Access code is required")
			return
		}

		jwtSecret := os.Getenv("APP_JWT_SECRET")
		if jwtSecret == "" {
			log.Println("❌ JWT secret not configured")
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}

		user, err := userRepo.AuthenticateUser(r.Context(), req.AccessCode)
		if err != nil {
			log.Printf("❌ Authentication failed: %v", err)
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}
		if user == nil {
			log.Printf("❌ Invalid access code attempt")
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false, Error: "Invalid access code"})
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":   user.ID,
			"user_type": string(user.UserType),
			"iat":       time.Now().Unix(),
			"exp":       time.Now().Add(7 * 24 * time.Hour).Unix(),
		})

		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			log.Println("❌ Failed to create token")
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}

		if err := sessions.SaveUserSession(*user); err != nil {
			log.Printf("⚠️  Failed to persist session: %v", err)
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.ID, user.UserType)
		utils.RespondJSON(w, http.StatusOK, LoginResponse{OK: true, Token: tokenString, User: &userResponse})
	}
}

// Logout clears the durable session. The JWT is not revoked; it simply
// ages out.
func Logout(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Clear(); err != nil {
			log.Printf("❌ Failed to clear session: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to clear session")
			return
		}
		utils.Success(w, map[string]bool{"ok": true})
	}
}

// GetAuthStatus reports the durable session, if one is decodable.
func GetAuthStatus(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := sessions.CurrentUser()
		if !ok {
			utils.Success(w, map[string]interface{}{"logged_in": false})
			return
		}
		utils.Success(w, map[string]interface{}{
			"logged_in": true,
			"user":      user.ToUserResponse(),
		})
	}
}
