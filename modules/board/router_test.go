package board

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/memberboard/modules/auth"
)

func authedRequest(method, path, body string, user *auth.User) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	return req
}

func TestBoardEndpoints(t *testing.T) {
	t.Parallel()

	member := &auth.User{ID: uuid.New(), Email: "member@example.com", EmailConfirmed: true}

	t.Run("create returns 201", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)

		storage.On("CreatePost", mock.Anything, mock.Anything).Return(nil)

		rec := httptest.NewRecorder()
		svc.Handler().ServeHTTP(rec, authedRequest("POST", "/", `{"title":"Hi","body":"First."}`, member))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), member.ID.String())
	})

	t.Run("create without user returns 401", func(t *testing.T) {
		t.Parallel()

		svc := NewService(new(MockStorage))

		rec := httptest.NewRecorder()
		svc.Handler().ServeHTTP(rec, authedRequest("POST", "/", `{"title":"Hi","body":"First."}`, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("get unknown post returns 404", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		postID := uuid.New()

		storage.On("GetPost", mock.Anything, postID).Return(nil, ErrPostNotFound)

		rec := httptest.NewRecorder()
		svc.Handler().ServeHTTP(rec, authedRequest("GET", "/"+postID.String(), "", member))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get with malformed id returns 400", func(t *testing.T) {
		t.Parallel()

		svc := NewService(new(MockStorage))

		rec := httptest.NewRecorder()
		svc.Handler().ServeHTTP(rec, authedRequest("GET", "/not-a-uuid", "", member))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update by non-author returns 403", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		post := testPost(uuid.New())

		storage.On("GetPost", mock.Anything, post.ID).Return(post, nil)

		rec := httptest.NewRecorder()
		svc.Handler().ServeHTTP(rec, authedRequest("PUT", "/"+post.ID.String(), `{"title":"X","body":"Y"}`, member))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete by author returns 204", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)
		post := testPost(member.ID)

		storage.On("GetPost", mock.Anything, post.ID).Return(post, nil)
		storage.On("DeletePost", mock.Anything, post.ID).Return(nil)

		rec := httptest.NewRecorder()
		svc.Handler().ServeHTTP(rec, authedRequest("DELETE", "/"+post.ID.String(), "", member))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("list passes pagination through", func(t *testing.T) {
		t.Parallel()

		storage := new(MockStorage)
		svc := NewService(storage)

		storage.On("ListPosts", mock.Anything, 5, 10).Return([]*Post{testPost(member.ID)}, nil)

		rec := httptest.NewRecorder()
		svc.Handler().ServeHTTP(rec, authedRequest("GET", "/?limit=5&offset=10", "", member))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "data")
	})
}
