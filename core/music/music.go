// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package music wraps the bilibili music (音频) index and recommendation endpoints.

Music ids (au numbers) also appear in video tags, so an id read from there can be passed on to
the audio endpoints.
*/
package music

import (
	"context"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codeberg.org/biliread/biliread/core/credential"
)

const (
	endpointHomepageRecommend = "https://www.bilibili.com/audio/music-service-c/web/home/recommend"
	endpointIndexList         = "https://www.bilibili.com/audio/music-service-c/web/song/of-menu-index"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Getter performs GET requests returning the unwrapped data of an API response.
// *requests.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, endpoint string, params url.Values, cred *credential.Credential) ([]byte, error)
}

// Order sorts the music index.
type Order int

const (
	OrderNew Order = 1
	OrderHot Order = 2
)

// Lang filters the music index by language. The zero value means every language.
type Lang int

const (
	LangAll           Lang = 0
	LangOther         Lang = 1
	LangChinese       Lang = 3
	LangEuropeAmerica Lang = 6
	LangJapan         Lang = 7
	LangKorea         Lang = 61
)

// Genre filters the music index by genre. The zero value means every genre.
type Genre int

const (
	GenreAll              Genre = 0
	GenrePopular          Genre = 1
	GenreRock             Genre = 2
	GenreElectronic       Genre = 3
	GenreCountryside      Genre = 4
	GenreFolk             Genre = 5
	GenreLive             Genre = 6 // light music
	GenreClassical        Genre = 7
	GenreNewCentury       Genre = 8
	GenreReggae           Genre = 9
	GenreBlues            Genre = 10
	GenreRhythmBlues      Genre = 12
	GenreOriginal         Genre = 13
	GenreWorld            Genre = 14
	GenreChildren         Genre = 15
	GenreLatin            Genre = 16
	GenrePunk             Genre = 17
	GenreMetal            Genre = 18
	GenreJazz             Genre = 19
	GenreHipHop           Genre = 20
	GenreSingerSongwriter Genre = 21
	GenreAmusement        Genre = 22
	GenreOther            Genre = 23
)

var (
	validLangs = []any{LangAll, LangOther, LangChinese, LangEuropeAmerica, LangJapan, LangKorea}

	validGenres = []any{
		GenreAll, GenrePopular, GenreRock, GenreElectronic, GenreCountryside, GenreFolk, GenreLive,
		GenreClassical, GenreNewCentury, GenreReggae, GenreBlues, GenreRhythmBlues, GenreOriginal,
		GenreWorld, GenreChildren, GenreLatin, GenrePunk, GenreMetal, GenreJazz, GenreHipHop,
		GenreSingerSongwriter, GenreAmusement, GenreOther,
	}
)

// IndexQuery selects a page of the music index. Zero Order, Page and PageSize take their defaults.
type IndexQuery struct {
	Keyword  string
	Lang     Lang
	Genre    Genre
	Order    Order
	Page     int
	PageSize int
}

func (q *IndexQuery) setDefaults() {
	if q.Order == 0 {
		q.Order = OrderNew
	}

	if q.Page == 0 {
		q.Page = 1
	}

	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
}

// Validate checks the query after defaults are applied.
func (q IndexQuery) Validate() error {
	q.setDefaults()

	return validation.ValidateStruct(&q,
		validation.Field(&q.Lang, validation.In(validLangs...)),
		validation.Field(&q.Genre, validation.In(validGenres...)),
		validation.Field(&q.Order, validation.In(OrderNew, OrderHot)),
		validation.Field(&q.Page, validation.Min(1)),
		validation.Field(&q.PageSize, validation.Min(1), validation.Max(MaxPageSize)),
	)
}

func (q IndexQuery) params() url.Values {
	q.setDefaults()

	return url.Values{
		"type":    {strconv.Itoa(int(q.Order))},
		"lang":    {optional(int(q.Lang))},
		"genre":   {optional(int(q.Genre))},
		"keyword": {q.Keyword},
		"pn":      {strconv.Itoa(q.Page)},
		"ps":      {strconv.Itoa(q.PageSize)},
	}
}

// optional renders the "all" filter value as an empty parameter.
func optional(v int) string {
	if v == 0 {
		return ""
	}

	return strconv.Itoa(v)
}

// GetHomepageRecommend returns the recommendations shown on the music homepage.
func GetHomepageRecommend(ctx context.Context, getter Getter, cred *credential.Credential) ([]byte, error) {
	return getter.GetJSON(ctx, endpointHomepageRecommend, nil, cred)
}

// GetMusicIndexInfo returns one page of the music index.
func GetMusicIndexInfo(ctx context.Context, getter Getter, query IndexQuery) ([]byte, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return getter.GetJSON(ctx, endpointIndexList, query.params(), nil)
}
