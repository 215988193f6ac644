package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestBlogHandler_CRUD(t *testing.T) {
	s := setupRouterTest(t)

	w := s.do(t, http.MethodPost, "/api/blogs", map[string]any{
		"title": "Maintenance Tips",
		"contents": []map[string]any{
			{"type": "content", "data": "<p>Test monthly.</p>"},
			{"type": "image", "data": []string{"a.jpg"}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	blog := decodeBody[simplecms.Blog](t, w)
	path := "/api/blogs/" + blog.ID.String()

	w = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maintenance Tips", decodeBody[simplecms.Blog](t, w).Title)

	w = s.do(t, http.MethodPut, path, map[string]any{"title": "Maintenance Tips 2024"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[simplecms.Blog](t, w)
	assert.Equal(t, "Maintenance Tips 2024", updated.Title)
	assert.Len(t, updated.Contents, 2)

	w = s.do(t, http.MethodGet, path+"/html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<p>Test monthly.</p>")

	w = s.do(t, http.MethodGet, "/api/blogs", nil)
	assert.Len(t, decodeBody[[]simplecms.Blog](t, w), 1)

	w = s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Blog not found", decodeBody[errorBody](t, w).Message)
}

func TestBlogHandler_Validation(t *testing.T) {
	s := setupRouterTest(t)

	w := s.do(t, http.MethodPost, "/api/blogs", map[string]any{"contents": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/blogs/"+uuid.New().String(), map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
