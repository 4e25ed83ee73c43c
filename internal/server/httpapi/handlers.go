package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

type registerResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body."})
	}

	token, err := s.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer"})
}

func (s *HTTPServer) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body."})
	}

	user, err := s.auth.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "User registered successfully.", ID: user.ID})
}

func (s *HTTPServer) me(c echo.Context) error {
	token, ok := common.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Missing bearer token."})
	}

	user, err := s.auth.Authenticate(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			err = common.ErrMalformedToken
		}
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, userResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and reported with a generic message.
func (s *HTTPServer) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid username or password."})
	case errors.Is(err, common.ErrUsernameTaken):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Username already in use."})
	case errors.Is(err, common.ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Email already in use."})
	case errors.Is(err, common.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrTokenExpired):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Token expired."})
	case common.IsTokenError(err):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid token."})
	default:
		s.logger.Error(c.Request().Context(), "request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error."})
	}
}
