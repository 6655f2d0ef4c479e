package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakportal/backend/core/study"
	"github.com/sprakportal/backend/core/user"
)

// Drives the whole admin-builds, student-takes flow through the API.
func Test_studyApi_testFlow(t *testing.T) {
	admin := createUser(t, "Prov Admin", "prov.admin@test.se", user.RoleAdmin, "", true)
	student := createUser(t, "Prov Elev", "prov.elev@test.se", user.RoleStudent, "A1", true)
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	post := func(t *testing.T, path string, body interface{}, token string) *json.Decoder {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, path, token, marshallObj(t, body))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return json.NewDecoder(rec.Body)
	}

	var cat study.Category
	require.NoError(t, post(t, "/v1/study/categories", study.NewCategory{Name: "Grammatik"}, adminToken).Decode(&cat))

	var sec study.Section
	require.NoError(t, post(t, "/v1/study/sections", study.NewSection{
		CategoryID: cat.ID, Title: "Verb i presens", Level: "A1",
	}, adminToken).Decode(&sec))

	var test study.Test
	require.NoError(t, post(t, "/v1/study/tests", study.NewTest{
		SectionID: sec.ID, Title: "Presensprov", Level: "A1",
	}, adminToken).Decode(&test))

	newQuestion := func(text, correct, wrong string) study.NewQuestion {
		return study.NewQuestion{
			Text: text,
			Options: []study.NewOption{
				{Text: correct, IsCorrect: true},
				{Text: wrong},
			},
		}
	}
	questionsPath := "/v1/study/tests/" + itoa(test.ID) + "/questions"
	var q1, q2 study.Question
	require.NoError(t, post(t, questionsPath, newQuestion("Jag ___ svenska", "talar", "tala"), adminToken).Decode(&q1))
	require.NoError(t, post(t, questionsPath, newQuestion("Hon ___ kaffe", "dricker", "dricka"), adminToken).Decode(&q2))

	t.Run("Question writes are admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, questionsPath, studentToken,
			marshallObj(t, newQuestion("Vi ___ hem", "går", "gå")))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Two correct options are rejected", func(t *testing.T) {
		bad := study.NewQuestion{
			Text: "Trasig fråga",
			Options: []study.NewOption{
				{Text: "a", IsCorrect: true},
				{Text: "b", IsCorrect: true},
			},
		}
		req, rec := newAuthRequest(http.MethodPost, questionsPath, adminToken, marshallObj(t, bad))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	var started struct {
		Test      study.Test       `json:"test"`
		Questions []study.Question `json:"questions"`
	}
	t.Run("Start strips the answer key", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/study/tests/"+itoa(test.ID), studentToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
		require.Len(t, started.Questions, 2)
		for _, q := range started.Questions {
			for _, o := range q.Options {
				assert.False(t, o.IsCorrect)
			}
		}
	})

	t.Run("Submit scores against the stored key", func(t *testing.T) {
		// q1 right, q2 wrong
		sub := study.TestSubmission{Answers: []study.SelectedAnswer{
			{QuestionID: q1.ID, OptionID: q1.Options[0].ID},
			{QuestionID: q2.ID, OptionID: q2.Options[1].ID},
		}}
		req, rec := newAuthRequest(http.MethodPost, "/v1/study/tests/"+itoa(test.ID)+"/submit", studentToken, marshallObj(t, sub))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result study.TestResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.CorrectAnswers)
		assert.Equal(t, 2, result.TotalQuestions)
		assert.False(t, result.Passed)
		assert.Len(t, result.Feedback, 2)
	})

	t.Run("Results land on the dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/study/results?passed=false", studentToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page struct {
			Items []study.TestResult `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Presensprov", page.Items[0].TestTitle)
	})

	t.Run("Unknown test is a 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/study/tests/99999", studentToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
