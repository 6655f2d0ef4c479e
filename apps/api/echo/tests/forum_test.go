package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakportal/backend/core/forum"
	"github.com/sprakportal/backend/core/user"
)

func Test_forumApi(t *testing.T) {
	admin := createUser(t, "Forum Admin", "forum.admin@test.se", user.RoleAdmin, "", true)
	asker := createUser(t, "Forum Elev", "forum.elev@test.se", user.RoleStudent, "A2", true)
	voter := createUser(t, "Röst Elev", "rost.elev@test.se", user.RoleStudent, "A2", true)

	t.Run("Posting requires auth", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/forum/posts", []byte(`{"title": "x", "content": "y"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var post forum.Post
	t.Run("Create post", func(t *testing.T) {
		body := []byte(`{"title": "Hur böjs ordet 'gå'?", "content": "Jag förstår inte presensformen."}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/forum/posts", getToken(t, asker), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
		assert.Equal(t, asker.Name, post.AuthorName)
	})

	t.Run("Answer carries the author's role", func(t *testing.T) {
		body := []byte(`{"content": "Presens av gå är går."}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/forum/posts/"+itoa(post.ID)+"/answers", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var ans forum.Answer
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
		assert.Equal(t, user.RoleAdmin, ans.AuthorRole)
	})

	t.Run("Voting twice keeps one vote per user", func(t *testing.T) {
		votePath := "/v1/forum/posts/" + itoa(post.ID) + "/vote"
		token := getToken(t, voter)

		req, rec := newAuthRequest(http.MethodPost, votePath, token, []byte(`{"type": "like"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// switching to dislike replaces the earlier like
		req, rec = newAuthRequest(http.MethodPost, votePath, token, []byte(`{"type": "dislike"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated forum.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, 0, updated.Likes)
		assert.Equal(t, 1, updated.Dislikes)
	})

	t.Run("Invalid vote type", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/forum/posts/"+itoa(post.ID)+"/vote", getToken(t, voter), []byte(`{"type": "meh"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Moderation is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/forum/posts/"+itoa(post.ID), getToken(t, asker))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, "/v1/forum/posts/"+itoa(post.ID), getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
