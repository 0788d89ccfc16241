package core

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, store sessions.Store, authService *AuthService, users UserRepository) *gin.Engine {
	startedAt := time.Now()
	r := gin.Default()

	// Global middleware: origin/CORS -> session
	r.Use(OriginRefererMiddleware(cfg))
	r.Use(SessionMiddleware(cfg, store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/accounts", func(c *gin.Context) {
			var req RegisterInput
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}

			user, err := authService.Register(c.Request.Context(), req)
			if err != nil {
				respondAuthError(c, err)
				return
			}
			log.Printf("account created id=%d username=%s", user.ID, user.Username)
			c.JSON(http.StatusCreated, Succeeded(MsgAccountCreated, user))
		})

		api.POST("/auth/login", func(c *gin.Context) {
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
				Remember bool   `json:"remember"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}
			email := strings.TrimSpace(req.Email)
			if email == "" || req.Password == "" {
				respondAuthError(c, ErrMissingCredentials)
				return
			}

			ctx := c.Request.Context()
			user, err := authService.VerifyLogin(ctx, email, req.Password)
			if err != nil {
				respondAuthError(c, err)
				return
			}

			if err := sessionManager(c).Login(ctx, *user); err != nil {
				log.Printf("login: failed to set session: %v", err)
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to set session")
				return
			}
			if req.Remember {
				if err := rememberedEmail(c).Save(ctx, email); err != nil {
					log.Printf("login: failed to remember email: %v", err)
				}
			}

			c.JSON(http.StatusOK, Succeeded(MsgLoginSucceeded, user))
		})

		api.POST("/auth/logout", func(c *gin.Context) {
			if err := sessionManager(c).Logout(c.Request.Context()); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to clear session")
				return
			}
			c.Status(http.StatusNoContent)
		})

		api.GET("/auth/remembered-email", func(c *gin.Context) {
			email, err := rememberedEmail(c).Load(c.Request.Context())
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to read preferences")
				return
			}
			c.JSON(http.StatusOK, gin.H{"email": email})
		})

		api.GET("/users/me", func(c *gin.Context) {
			user, ok := requireLogin(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"user": user})
		})

		api.GET("/profile-panel", func(c *gin.Context) {
			user, err := sessionManager(c).CurrentUser(c.Request.Context())
			if err != nil {
				// an unreadable slot renders as logged out
				log.Printf("profile panel: %v", err)
				user = nil
			}
			c.JSON(http.StatusOK, BuildProfilePanel(user))
		})

		api.GET("/carousel", func(c *gin.Context) {
			carousel, err := NewCarousel(cfg.CarouselSlides)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error())
				return
			}
			index := 0
			if s := strings.TrimSpace(c.Query("index")); s != "" {
				if index, err = strconv.Atoi(s); err != nil {
					respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "index must be an integer")
					return
				}
			}
			carousel.MoveTo(index)
			switch c.Query("step") {
			case "next":
				carousel.Next()
			case "prev":
				carousel.Prev()
			case "":
			default:
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "step must be next or prev")
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"index":     carousel.Index(),
				"slides":    carousel.Len(),
				"transform": carousel.Transform(),
			})
		})

		api.GET("/status", AdminOnly(users), func(c *gin.Context) {
			st, err := CollectSystemStatus(c.Request.Context(), users, cfg.StorageDriver, startedAt)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to load system status")
				return
			}
			c.JSON(http.StatusOK, st)
		})
	}

	return r
}

// requireLogin returns the session user or writes 401.
func requireLogin(c *gin.Context) (*UserRecord, bool) {
	user, err := sessionManager(c).CurrentUser(c.Request.Context())
	if err != nil || user == nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Debes iniciar sesión")
		return nil, false
	}
	return user, true
}

// respondAuthError maps domain failures to their status; anything else is a 500.
func respondAuthError(c *gin.Context, err error) {
	code, message, ok := ErrorCode(err)
	if !ok {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal error")
		return
	}
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	respondError(c, status, code, message)
}
