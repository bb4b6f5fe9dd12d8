package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/nutrimenu/internal/model"
)

func TestUserLifecycle(t *testing.T) {
	env := setupHandlerTest(t, nil)

	var u model.User
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/users", map[string]any{"name": "oleg"}, &u))
	assert.Equal(t, http.StatusConflict, env.do(t, "POST", "/api/users", map[string]any{"name": "oleg"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, "POST", "/api/users", map[string]any{"name": ""}, nil))

	var got model.User
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/api/users?name=oleg", nil, &got))
	assert.Equal(t, u.ID, got.ID)

	require.Equal(t, http.StatusOK, env.do(t, "PUT", fmt.Sprintf("/api/users/%d", u.ID), map[string]any{"name": "olga"}, &got))
	assert.Equal(t, "olga", got.Name)

	require.Equal(t, http.StatusOK, env.do(t, "GET", fmt.Sprintf("/internal/users/%d", u.ID), nil, &got))
	assert.Equal(t, "olga", got.Name)
	require.Equal(t, http.StatusOK, env.do(t, "GET", "/internal/users?name=olga", nil, &got))
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/internal/users?name=oleg", nil, nil))

	assert.Equal(t, http.StatusNoContent, env.do(t, "DELETE", fmt.Sprintf("/api/users/%d", u.ID), nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", fmt.Sprintf("/api/users/%d", u.ID), nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, "PUT", fmt.Sprintf("/api/users/%d", u.ID), map[string]any{"name": "x"}, nil))
}
