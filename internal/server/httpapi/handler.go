package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/services"
	"github.com/gin-gonic/gin"
)

// bcrypt ignores password bytes past 72.
type registerRequest struct {
	Name     string `json:"name" binding:"notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"min=6,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type meResponse struct {
	Success bool              `json:"success"`
	Data    models.PublicUser `json:"data"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !s.bindJSON(c, &req, registerMessages) {
		return
	}

	result, err := s.users.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", result.User.ID)
	c.JSON(http.StatusCreated, tokenResponse{Success: true, Token: result.Token})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !s.bindJSON(c, &req, loginMessages) {
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Success: true, Token: token})
}

func (s *Server) me(c *gin.Context) {
	user, err := s.users.Me(c.Request.Context(), userIDFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{Success: true, Data: user})
}

// logout has nothing to invalidate server-side; the client discards its token.
func (s *Server) logout(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse{Success: true})
}
