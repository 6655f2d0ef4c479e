package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_statsApi_retrieve(t *testing.T) {
	student := createUser(t, "Stats Student", "stats.student@test.se", "student", "A2", true)
	admin := createUser(t, "Stats Admin", "stats.admin@test.se", "admin", "", true)
	createWord(t, "glaciär", "substantiv", "glacier", "A2")

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/statistics", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("aggregates counts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/statistics", getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats struct {
			Users struct {
				Total    int `json:"total"`
				Active   int `json:"active"`
				Students int `json:"students"`
				Admins   int `json:"admins"`
			} `json:"users"`
			Vocabulary struct {
				Total   int            `json:"total"`
				ByLevel map[string]int `json:"by_level"`
			} `json:"vocabulary"`
			Videos int `json:"videos"`
			Forum  struct {
				Posts   int `json:"posts"`
				Answers int `json:"answers"`
			} `json:"forum"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

		assert.GreaterOrEqual(t, stats.Users.Total, 2)
		assert.Equal(t, stats.Users.Total, stats.Users.Students+stats.Users.Admins)
		assert.GreaterOrEqual(t, stats.Users.Admins, 1)
		assert.GreaterOrEqual(t, stats.Vocabulary.Total, 1)
		assert.GreaterOrEqual(t, stats.Vocabulary.ByLevel["A2"], 1)

		var total int
		for _, n := range stats.Vocabulary.ByLevel {
			total += n
		}
		assert.Equal(t, stats.Vocabulary.Total, total)
	})
}
