package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		input   string
		want    Rating
		wantErr bool
	}{
		{"", RatingBad, false},
		{"good", RatingGood, false},
		{"bad", RatingBad, false},
		{"meh", "", true},
		{"GOOD", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRating(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSession_Latest(t *testing.T) {
	var nilSession *Session
	assert.Nil(t, nilSession.Latest())
	assert.Nil(t, (&Session{}).Latest())

	s := &Session{Generations: []Generation{
		{ID: 10, Version: 1},
		{ID: 12, Version: 3},
		{ID: 11, Version: 2},
	}}
	latest := s.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, int64(12), latest.ID)
	assert.Equal(t, 3, latest.Version)
}

func TestSession_Generation(t *testing.T) {
	s := &Session{Generations: []Generation{{ID: 1, Version: 1}, {ID: 2, Version: 2}}}

	g := s.Generation(2)
	require.NotNil(t, g)
	assert.Equal(t, 2, g.Version)
	assert.Nil(t, s.Generation(99))
}

func TestGeneration_ArticleCopiesTags(t *testing.T) {
	g := &Generation{Title: "T", MetaDescription: "M", Content: "<p>c</p>", Tags: []string{"a", "b"}}

	article := g.Article()
	article.Tags[0] = "changed"

	assert.Equal(t, "a", g.Tags[0])
	assert.Equal(t, "T", article.Title)
	assert.Equal(t, "M", article.MetaDescription)
	assert.Equal(t, "<p>c</p>", article.Content)
}

func TestGroupHistory(t *testing.T) {
	t1 := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	genTime := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	title := "Gardening for beginners"
	version := 3

	rows := []HistoryRow{
		{SessionID: "s3", Keyword: "gardening", SessionCreatedAt: t1, LatestTitle: &title, LatestVersion: &version, LatestCreatedAt: &genTime},
		{SessionID: "s2", Keyword: "cooking", SessionCreatedAt: t2},
		{SessionID: "s1", Keyword: "gardening", SessionCreatedAt: t3},
	}

	history := GroupHistory(rows)
	require.Len(t, history, 2)

	assert.Equal(t, "gardening", history[0].Keyword)
	assert.Equal(t, 2, history[0].SessionCount)
	assert.Equal(t, title, history[0].LatestTitle)
	assert.Equal(t, genTime, history[0].LatestDate)
	require.Len(t, history[0].Sessions, 2)
	assert.Equal(t, "s3", history[0].Sessions[0].ID)
	assert.Equal(t, 3, history[0].Sessions[0].Version)
	assert.Equal(t, 1, history[0].Sessions[1].Version)

	assert.Equal(t, "cooking", history[1].Keyword)
	assert.Equal(t, "", history[1].LatestTitle)
	assert.Equal(t, t2, history[1].LatestDate)
}

func TestGroupHistory_Empty(t *testing.T) {
	history := GroupHistory(nil)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
