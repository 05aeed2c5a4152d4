package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/services"
)

type signUploadRequest struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Mime     string `json:"mime"`
}

type objectPathRequest struct {
	ObjectPath string `json:"objectPath"`
}

type listResponse struct {
	PDFs  []*models.Ebook `json:"pdfs"`
	Count int             `json:"count"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

type registerResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// bindJSON binds the body and runs the validator.
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	return c.Validate(dst)
}

func (s *Server) signUpload(c echo.Context) error {
	var req signUploadRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ticket, err := s.ebooks.BeginUpload(c.Request().Context(), currentUserID(c), services.BeginUploadRequest{
		FileName: req.FileName,
		Size:     req.Size,
		MimeType: req.Mime,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticket)
}

func (s *Server) completeUpload(c echo.Context) error {
	var req objectPathRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := s.ebooks.CompleteUpload(c.Request().Context(), currentUserID(c), req.ObjectPath)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) viewURL(c echo.Context) error {
	var req objectPathRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := s.ebooks.CreateViewURL(c.Request().Context(), currentUserID(c), req.ObjectPath)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) list(c echo.Context) error {
	items, err := s.ebooks.ListReady(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	if items == nil {
		items = []*models.Ebook{}
	}
	s.logger.Debug(c.Request().Context(), "listed ebooks", "user_id", currentUserID(c), "role", string(currentRole(c)), "count", len(items))
	return c.JSON(http.StatusOK, listResponse{PDFs: items, Count: len(items)})
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, err := s.users.Register(c.Request().Context(), req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{ID: user.ID, Email: user.Email, Role: user.Role})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	pair, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

func (s *Server) refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	pair, err := s.users.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}
