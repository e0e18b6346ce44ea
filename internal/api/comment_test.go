package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cuistot/backend/internal/testhelpers"
)

type ratingBody struct {
	ID      string  `json:"id"`
	Rating  float64 `json:"rating"`
	Comment struct {
		ID      uint   `json:"id"`
		Content string `json:"content"`
	} `json:"comment"`
}

type commentBody struct {
	ID       uint   `json:"id"`
	ParentID *uint  `json:"parentId"`
	Content  string `json:"content"`
}

func TestComments(t *testing.T) {
	app := newTestApp(t, nil)
	alice := testhelpers.CreateUser(t, app.db)
	bob := testhelpers.CreateUser(t, app.db)
	testhelpers.CreateRecipe(t, app.db, "Blanquette de veau")
	path := recipePath("Blanquette de veau", "comments")

	rr := app.do(http.MethodPost, path, `{"rating":4,"comment":"Très bon"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(http.MethodPost, path, `{"rating":4,"comment":"Très bon"}`, app.tokenFor(alice))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var rating ratingBody
	decodeBody(t, rr, &rating)
	assert.Equal(t, 4.0, rating.Rating)
	assert.Equal(t, "Très bon", rating.Comment.Content)
	require.NotZero(t, rating.Comment.ID)

	rr = app.do(http.MethodPost, path, `{"rating":1}`, app.tokenFor(alice))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"You have already voted for this recipe"}`, rr.Body.String())

	rr = app.do(http.MethodPost, path, `{"rating":2}`, app.tokenFor(bob))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = app.do(http.MethodGet, recipePath("Blanquette de veau", "rating"), nil, "")
	assert.JSONEq(t, `{"rating":3}`, rr.Body.String())

	rr = app.do(http.MethodGet, path, nil, app.tokenFor(alice))
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Ratings  []ratingBody `json:"ratings"`
		HasVoted bool         `json:"hasVoted"`
	}
	decodeBody(t, rr, &list)
	assert.Len(t, list.Ratings, 2)
	assert.True(t, list.HasVoted)

	rr = app.do(http.MethodGet, path, nil, "")
	decodeBody(t, rr, &list)
	assert.False(t, list.HasVoted)

	repliesPath := fmt.Sprintf("%s/%d", path, rating.Comment.ID)
	for _, text := range []string{"Merci !", "Avec du riz ?"} {
		rr = app.do(http.MethodPost, repliesPath, map[string]string{"comment": text}, app.tokenFor(bob))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr = app.do(http.MethodGet, repliesPath, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var replies []commentBody
	decodeBody(t, rr, &replies)
	require.Len(t, replies, 2)
	assert.Equal(t, "Avec du riz ?", replies[0].Content)
	assert.Equal(t, "Merci !", replies[1].Content)
	require.NotNil(t, replies[0].ParentID)
	assert.Equal(t, rating.Comment.ID, *replies[0].ParentID)
}

func TestComments_Validation(t *testing.T) {
	app := newTestApp(t, nil)
	user := testhelpers.CreateUser(t, app.db)
	token := app.tokenFor(user)
	testhelpers.CreateRecipe(t, app.db, "Bouillabaisse")
	path := recipePath("Bouillabaisse", "comments")

	rr := app.do(http.MethodPost, path, `{"rating":6}`, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body errorBody
	decodeBody(t, rr, &body)
	assert.Equal(t, "must be at most 5", body.Fields["rating"])

	rr = app.do(http.MethodPost, path, `{"rating":"5"}`, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(http.MethodPost, path, `not json`, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(http.MethodPost, recipePath("Inconnue", "comments"), `{"rating":3}`, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = app.do(http.MethodGet, path+"/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(http.MethodGet, path+"/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = app.do(http.MethodPost, path+"/999", map[string]string{"comment": "?"}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
