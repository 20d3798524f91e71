// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package music

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/biliread/biliread/core/credential"
)

type recordingGetter struct {
	endpoint string
	params   url.Values
	cred     *credential.Credential
}

func (g *recordingGetter) GetJSON(_ context.Context, endpoint string, params url.Values, cred *credential.Credential) ([]byte, error) {
	g.endpoint, g.params, g.cred = endpoint, params, cred

	return []byte(`{"data":[]}`), nil
}

func TestGetMusicIndexInfoDefaults(t *testing.T) {
	t.Parallel()

	getter := &recordingGetter{}

	_, err := GetMusicIndexInfo(context.Background(), getter, IndexQuery{})
	require.NoError(t, err)

	assert.Equal(t, endpointIndexList, getter.endpoint)
	assert.Equal(t, url.Values{
		"type":    {"1"},
		"lang":    {""},
		"genre":   {""},
		"keyword": {""},
		"pn":      {"1"},
		"ps":      {"10"},
	}, getter.params)
}

func TestGetMusicIndexInfoFilters(t *testing.T) {
	t.Parallel()

	getter := &recordingGetter{}

	_, err := GetMusicIndexInfo(context.Background(), getter, IndexQuery{
		Keyword:  "初音",
		Lang:     LangJapan,
		Genre:    GenreRhythmBlues,
		Order:    OrderHot,
		Page:     3,
		PageSize: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "2", getter.params.Get("type"))
	assert.Equal(t, "7", getter.params.Get("lang"))
	assert.Equal(t, "12", getter.params.Get("genre"))
	assert.Equal(t, "初音", getter.params.Get("keyword"))
	assert.Equal(t, "3", getter.params.Get("pn"))
	assert.Equal(t, "30", getter.params.Get("ps"))
}

func TestIndexQueryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   IndexQuery
		wantErr bool
	}{
		{"zero", IndexQuery{}, false},
		{"unknown lang", IndexQuery{Lang: 2}, true},
		{"unused genre number", IndexQuery{Genre: 11}, true},
		{"bad order", IndexQuery{Order: 3}, true},
		{"negative page", IndexQuery{Page: -1}, true},
		{"page too large", IndexQuery{PageSize: MaxPageSize + 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.query.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	getter := &recordingGetter{}
	_, err := GetMusicIndexInfo(context.Background(), getter, IndexQuery{Order: 9})
	require.Error(t, err)
	assert.Empty(t, getter.endpoint)
}

func TestGetHomepageRecommend(t *testing.T) {
	t.Parallel()

	getter := &recordingGetter{}
	cred := &credential.Credential{SESSDATA: "s"}

	_, err := GetHomepageRecommend(context.Background(), getter, cred)
	require.NoError(t, err)
	assert.Equal(t, endpointHomepageRecommend, getter.endpoint)
	assert.Same(t, cred, getter.cred)
}
