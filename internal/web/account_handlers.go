package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marquee-dev/marquee/internal/account"
)

func (s *Server) loginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "login.html", gin.H{"Username": ""})
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	_, err := s.app.Accounts.Login(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("Login failed")
		s.render(c, statusFor(err), "login.html", gin.H{"Error": err, "Username": username})
		return
	}
	redirectWithFlash(c, "/", "Welcome back, "+strings.TrimSpace(username)+"!")
}

func (s *Server) registerPage(c *gin.Context) {
	s.render(c, http.StatusOK, "register.html", gin.H{"Form": account.RegisterRequest{}})
}

func (s *Server) register(c *gin.Context) {
	age, _ := strconv.Atoi(c.PostForm("age"))
	req := account.RegisterRequest{
		Username:        c.PostForm("username"),
		FirstName:       c.PostForm("firstName"),
		LastName:        c.PostForm("lastName"),
		Email:           c.PostForm("email"),
		Age:             age,
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
	}

	sess, err := s.app.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		req.Password, req.ConfirmPassword = "", ""
		s.render(c, statusFor(err), "register.html", gin.H{"Error": err, "Form": req})
		return
	}
	redirectWithFlash(c, "/", "Account created. Welcome, "+sess.Username+"!")
}

func (s *Server) resetPasswordPage(c *gin.Context) {
	s.render(c, http.StatusOK, "reset_password.html", gin.H{"Token": c.Query("token")})
}

func (s *Server) resetPassword(c *gin.Context) {
	ctx := c.Request.Context()

	if token := c.PostForm("token"); token != "" {
		msg, err := s.app.Accounts.ResetPassword(ctx, token, c.PostForm("password"))
		if err != nil {
			s.render(c, statusFor(err), "reset_password.html", gin.H{"Error": err, "Token": token})
			return
		}
		redirectWithFlash(c, "/login", msg)
		return
	}

	msg, err := s.app.Accounts.ForgotPassword(ctx, c.PostForm("email"))
	if err != nil {
		s.render(c, statusFor(err), "reset_password.html", gin.H{"Error": err})
		return
	}
	s.render(c, http.StatusOK, "reset_password.html", gin.H{"Flash": msg, "Sent": true})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.app.Accounts.Logout(c.Request.Context()); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	redirectWithFlash(c, "/", "You have been logged out.")
}

// sessionSnapshot reports the stored session without the token.
func (s *Server) sessionSnapshot(c *gin.Context) {
	sess, err := s.app.Sessions.Load()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": sess.Authenticated(),
		"userId":        sess.UserID,
		"username":      sess.Username,
		"isAdmin":       sess.IsAdmin,
	})
}
