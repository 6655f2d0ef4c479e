package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakportal/backend/core/user"
)

func Test_userApi_login(t *testing.T) {
	createUser(t, "Anna Svensson", "anna@test.se", user.RoleStudent, "A2", true)
	inactive := createUser(t, "Gammal Elev", "gammal@test.se", user.RoleStudent, "B1", false)

	tests := []httpTest{
		{
			name: "Valid credentials", body: []byte(`{"email": "anna@test.se", "password": "Secret123!"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "Email is case-insensitive", body: []byte(`{"email": "ANNA@test.se", "password": "Secret123!"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "Wrong password", body: []byte(`{"email": "anna@test.se", "password": "nope"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Error: "Fel e-postadress eller lösenord."}),
		},
		{
			name: "Unknown email", body: []byte(`{"email": "ingen@test.se", "password": "Secret123!"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Error: "Fel e-postadress eller lösenord."}),
		},
		{
			name: "Deactivated account", body: []byte(`{"email": "` + inactive.Email + `", "password": "Secret123!"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Error: "Kontot är avstängt."}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
				var resp struct {
					Token string `json:"token"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	student := createUser(t, "Lista Elev", "lista.elev@test.se", user.RoleStudent, "A1", true)
	admin := createUser(t, "Lista Admin", "lista.admin@test.se", user.RoleAdmin, "", true)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}, rec)
	})

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Admin can filter by role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?role=admin&search=Lista", getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Items      []user.User `json:"items"`
			TotalPages int         `json:"total_pages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, admin.ID, resp.Items[0].ID)
		assert.Equal(t, 1, resp.TotalPages)
	})
}

func Test_userApi_register(t *testing.T) {
	admin := createUser(t, "Reg Admin", "reg.admin@test.se", user.RoleAdmin, "", true)

	body := []byte(`{
		"name": "Ny Elev",
		"email": "ny.elev@test.se",
		"level": "A1",
		"password": "NyttLosen123!",
		"password_confirm": "NyttLosen123!"
	}`)

	t.Run("Guest signs up as a student", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "ny.elev@test.se", created.Email)
		assert.Equal(t, user.RoleStudent, created.Role)
		assert.True(t, created.IsActive)
	})

	t.Run("Guest cannot claim the admin role", func(t *testing.T) {
		sneaky := []byte(`{
			"name": "Falsk Admin",
			"email": "falsk.admin@test.se",
			"role": "admin",
			"password": "NyttLosen123!",
			"password_confirm": "NyttLosen123!"
		}`)
		req, rec := newRequest(http.MethodPost, "/v1/users/register", sneaky)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, user.RoleStudent, created.Role)
	})

	t.Run("Admin registers another admin", func(t *testing.T) {
		body := []byte(`{
			"name": "Ny Admin",
			"email": "ny.admin@test.se",
			"role": "admin",
			"password": "NyttLosen123!",
			"password_confirm": "NyttLosen123!"
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, user.RoleAdmin, created.Role)
	})

	t.Run("Duplicate email is a field error", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "email")
	})
}

func Test_userApi_update(t *testing.T) {
	admin := createUser(t, "Upd Admin", "upd.admin@test.se", user.RoleAdmin, "", true)
	student := createUser(t, "Upd Elev", "upd.elev@test.se", user.RoleStudent, "A1", true)
	other := createUser(t, "Annan Elev", "annan.elev@test.se", user.RoleStudent, "A1", true)

	path := "/v1/users/" + itoa(student.ID)

	t.Run("Student updates own name and level", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, student), []byte(`{"name": "Uppdaterad Elev", "level": "A2"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Uppdaterad Elev", updated.Name)
		assert.Equal(t, "A2", updated.Level)
	})

	t.Run("Student cannot deactivate themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, student), []byte(`{"is_active": false}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Student cannot touch another account", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, other), []byte(`{"name": "Hacker"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Admin deactivates the account", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, admin), []byte(`{"is_active": false}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.False(t, updated.IsActive)
	})
}

func Test_userApi_destroy(t *testing.T) {
	admin := createUser(t, "Del Admin", "del.admin@test.se", user.RoleAdmin, "", true)
	victim := createUser(t, "Del Elev", "del.elev@test.se", user.RoleStudent, "A1", true)

	t.Run("Admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+itoa(admin.ID), getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Admin deletes a student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+itoa(victim.ID), getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+itoa(victim.ID), getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_userApi_me(t *testing.T) {
	student := createUser(t, "Jag Elev", "jag.elev@test.se", user.RoleStudent, "B1", true)

	t.Run("Retrieve self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, student))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var me user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, student.ID, me.ID)
		assert.Equal(t, student.Email, me.Email)
	})

	t.Run("Change password requires the old one", func(t *testing.T) {
		body := []byte(`{"old_password": "wrong", "password": "NyttLosen123!", "password_confirm": "NyttLosen123!"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me/password", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Change password", func(t *testing.T) {
		body := []byte(`{"old_password": "Secret123!", "password": "NyttLosen123!", "password_confirm": "NyttLosen123!"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me/password", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// old password no longer works
		req, rec = newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "jag.elev@test.se", "password": "Secret123!"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req, rec = newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "jag.elev@test.se", "password": "NyttLosen123!"}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}
