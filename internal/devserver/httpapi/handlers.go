package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mediguard/internal/common"
	"github.com/dmitrijs2005/mediguard/internal/devserver/records"
	"github.com/dmitrijs2005/mediguard/internal/devserver/users"
	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, code int, message string, data any) {
	c.JSON(code, envelope{Status: common.StatusSuccess, Message: message, Data: data})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, envelope{Status: common.StatusError, Message: message})
}

func (s *Server) health(c *gin.Context) {
	ok(c, http.StatusOK, "ok", nil)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.logger.Error(c.Request.Context(), "login failed", "error", err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, "Login successful", gin.H{"token": token, "user": toUserDTO(user)})
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	user, token, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrValidation):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, users.ErrAlreadyExists):
			fail(c, http.StatusConflict, "User with this email already exists")
		default:
			s.logger.Error(c.Request.Context(), "registration failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	s.logger.Info(c.Request.Context(), "user registered", "user_id", user.ID)
	ok(c, http.StatusCreated, "Registration successful", gin.H{"token": token, "user": toUserDTO(user)})
}

func (s *Server) profile(c *gin.Context) {
	ok(c, http.StatusOK, "", gin.H{"user": toUserDTO(currentUser(c))})
}

func (s *Server) logout(c *gin.Context) {
	s.users.Logout(c.Request.Context(), currentClaims(c))
	ok(c, http.StatusOK, "Logged out", nil)
}

func (s *Server) createReminder(c *gin.Context) {
	var req reminderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	r, err := s.records.CreateReminder(c.Request.Context(), currentUser(c).ID, req.toRecord())
	if err != nil {
		if errors.Is(err, records.ErrValidation) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusCreated, "Medication reminder created", gin.H{"medicationRemainder": toReminderDTO(r)})
}

func (s *Server) listReminders(c *gin.Context) {
	list := s.records.ListReminders(c.Request.Context(), currentUser(c).ID)
	out := make([]reminderDTO, 0, len(list))
	for _, r := range list {
		out = append(out, toReminderDTO(r))
	}
	ok(c, http.StatusOK, "", gin.H{"medicationRemainders": out})
}

func (s *Server) checkSymptoms(c *gin.Context) {
	var req symptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Message is required")
		return
	}

	check, err := s.records.CheckSymptoms(c.Request.Context(), currentUser(c).ID, req.Message)
	if err != nil {
		if errors.Is(err, records.ErrValidation) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, "", gin.H{"symptomCheck": toSymptomCheckDTO(check)})
}

func (s *Server) listSymptomChecks(c *gin.Context) {
	list := s.records.ListSymptomChecks(c.Request.Context(), currentUser(c).ID)
	out := make([]symptomCheckDTO, 0, len(list))
	for _, sc := range list {
		out = append(out, toSymptomCheckDTO(sc))
	}
	ok(c, http.StatusOK, "", gin.H{"symptomChecks": out})
}
