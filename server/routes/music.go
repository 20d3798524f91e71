// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/biliread/biliread/core/music"
	"codeberg.org/biliread/biliread/server/utils"
)

// MusicRecommend serves the music homepage recommendations.
func (s *Service) MusicRecommend(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, func() ([]byte, error) {
		return music.GetHomepageRecommend(r.Context(), s.Caller, s.Credential)
	})
}

// MusicIndex serves a page of the music index.
//
// Query parameters: keyword, lang, genre, order, pn, ps. Filters take the numeric values bilibili uses.
func (s *Service) MusicIndex(w http.ResponseWriter, r *http.Request) error {
	query := music.IndexQuery{Keyword: utils.GetQueryParam(r, "keyword")}

	ints := []struct {
		name string
		dst  *int
	}{
		{"pn", &query.Page},
		{"ps", &query.PageSize},
	}

	for _, p := range ints {
		v, err := utils.GetIntQueryParam(r, p.name, 0)
		if err != nil {
			return BadRequest(err)
		}

		*p.dst = v
	}

	lang, err := utils.GetIntQueryParam(r, "lang", int(music.LangAll))
	if err != nil {
		return BadRequest(err)
	}

	genre, err := utils.GetIntQueryParam(r, "genre", int(music.GenreAll))
	if err != nil {
		return BadRequest(err)
	}

	order, err := utils.GetIntQueryParam(r, "order", int(music.OrderNew))
	if err != nil {
		return BadRequest(err)
	}

	query.Lang = music.Lang(lang)
	query.Genre = music.Genre(genre)
	query.Order = music.Order(order)

	if err := query.Validate(); err != nil {
		return BadRequest(err)
	}

	return writeJSON(w, func() ([]byte, error) {
		return music.GetMusicIndexInfo(r.Context(), s.Caller, query)
	})
}
