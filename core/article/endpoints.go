// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"context"
	"net/url"
	"strconv"

	"codeberg.org/biliread/biliread/core/credential"
)

const (
	endpointViewInfo    = "https://api.bilibili.com/x/article/viewinfo"
	endpointView        = "https://api.bilibili.com/x/article/view"
	endpointListContent = "https://api.bilibili.com/x/article/list/web/articles"
	endpointRank        = "https://api.bilibili.com/x/article/rank/list"
	endpointLike        = "https://api.bilibili.com/x/article/like"
	endpointFavoriteAdd = "https://api.bilibili.com/x/article/favorites/add"
	endpointFavoriteDel = "https://api.bilibili.com/x/article/favorites/del"
	endpointCoin        = "https://api.bilibili.com/x/web-interface/coin/add"
)

func pageURL(cvid int64) string {
	return "https://www.bilibili.com/read/cv" + strconv.FormatInt(cvid, 10) + "/?jump_opus=1"
}

// RankingType selects an article leaderboard.
type RankingType int

const (
	RankMonth              RankingType = 1
	RankWeek               RankingType = 2
	RankYesterday          RankingType = 3
	RankDayBeforeYesterday RankingType = 4
)

// ParseRankingType accepts a leaderboard name or its numeric id (1 to 4).
func ParseRankingType(name string) (RankingType, bool) {
	if n, err := strconv.Atoi(name); err == nil {
		rank := RankingType(n)

		return rank, rank >= RankMonth && rank <= RankDayBeforeYesterday
	}

	switch name {
	case "month":
		return RankMonth, true
	case "week":
		return RankWeek, true
	case "", "yesterday":
		return RankYesterday, true
	case "day_before_yesterday":
		return RankDayBeforeYesterday, true
	default:
		return 0, false
	}
}

// GetArticleRank returns an article leaderboard.
func GetArticleRank(ctx context.Context, getter Getter, rank RankingType) ([]byte, error) {
	params := url.Values{"cid": {strconv.Itoa(int(rank))}}

	return getter.GetJSON(ctx, endpointRank, params, nil)
}

// ArticleList is a collection of articles (文集).
type ArticleList struct {
	RLID int64

	getter     Getter
	credential *credential.Credential
}

func NewArticleList(rlid int64, getter Getter, cred *credential.Credential) *ArticleList {
	return &ArticleList{RLID: rlid, getter: getter, credential: cred}
}

// GetContent returns the list's metadata and its articles.
func (l *ArticleList) GetContent(ctx context.Context) ([]byte, error) {
	params := url.Values{"id": {strconv.FormatInt(l.RLID, 10)}}

	return l.getter.GetJSON(ctx, endpointListContent, params, l.credential)
}
