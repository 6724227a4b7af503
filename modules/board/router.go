package board

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/memberboard/handler"
	"github.com/dmitrymomot/memberboard/modules/auth"
	"github.com/dmitrymomot/memberboard/pkg/binder"
	"github.com/dmitrymomot/memberboard/pkg/validator"
)

// Handler returns the board HTTP surface, intended to be mounted under
// /posts behind the auth middleware. Reads require a session; mutations
// additionally require a confirmed email, enforced by auth.RequireMember
// at mount time.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.handleList,
		handler.WithBinder(binder.Query()),
		handler.WithErrorHandler(errorResponse),
	))
	r.Post("/", handler.Wrap(s.handleCreate,
		handler.WithBinder(binder.JSON()),
		handler.WithErrorHandler(errorResponse),
	))
	r.Get("/{id}", handler.Wrap(s.handleGet,
		handler.WithErrorHandler(errorResponse),
	))
	r.Put("/{id}", handler.Wrap(s.handleUpdate,
		handler.WithBinder(binder.JSON()),
		handler.WithErrorHandler(errorResponse),
	))
	r.Delete("/{id}", handler.Wrap(s.handleDelete,
		handler.WithErrorHandler(errorResponse),
	))

	return r
}

type listRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

type createRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type updateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Service) handleList(r *http.Request, req listRequest) handler.Response {
	posts, err := s.List(r.Context(), req.Limit, req.Offset)
	if err != nil {
		return errorResponse(err)
	}
	public := make([]PublicPost, 0, len(posts))
	for _, post := range posts {
		public = append(public, post.Public())
	}
	return handler.JSON(public)
}

func (s *Service) handleCreate(r *http.Request, req createRequest) handler.Response {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		return handler.Error(http.StatusUnauthorized, "authentication required")
	}
	post, err := s.Create(r.Context(), user.ID, req.Title, req.Body)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSONWithStatus(http.StatusCreated, post.Public())
}

func (s *Service) handleGet(r *http.Request, _ struct{}) handler.Response {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return handler.Error(http.StatusBadRequest, "invalid post id")
	}
	post, err := s.Get(r.Context(), postID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(post.Public())
}

func (s *Service) handleUpdate(r *http.Request, req updateRequest) handler.Response {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		return handler.Error(http.StatusUnauthorized, "authentication required")
	}
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return handler.Error(http.StatusBadRequest, "invalid post id")
	}
	post, err := s.Update(r.Context(), user.ID, postID, req.Title, req.Body)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(post.Public())
}

func (s *Service) handleDelete(r *http.Request, _ struct{}) handler.Response {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		return handler.Error(http.StatusUnauthorized, "authentication required")
	}
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return handler.Error(http.StatusBadRequest, "invalid post id")
	}
	if err := s.Delete(r.Context(), user.ID, postID); err != nil {
		return errorResponse(err)
	}
	return handler.NoContent()
}

// errorResponse maps board domain errors to HTTP responses.
func errorResponse(err error) handler.Response {
	switch {
	case validator.IsValidationError(err):
		return handler.DefaultErrorHandler(err)
	case errors.Is(err, ErrPostNotFound):
		return handler.Error(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotPostAuthor):
		return handler.Error(http.StatusForbidden, err.Error())
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParseQuery),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType):
		return handler.DefaultErrorHandler(err)
	}
	return handler.Error(http.StatusInternalServerError, "internal error")
}
