// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"codeberg.org/biliread/biliread/core/article"
	"codeberg.org/biliread/biliread/server/utils"
)

const (
	markdownContentType = "text/markdown; charset=utf-8"
	jsonContentType     = "application/json; charset=utf-8"
	htmlContentType     = "text/html; charset=utf-8"
)

// fetchArticle builds the article named by the {cvid} path variable and converts its body.
func (s *Service) fetchArticle(r *http.Request) (*article.Article, error) {
	a, err := s.articleFromPath(r)
	if err != nil {
		return nil, err
	}

	if err := a.FetchContent(r.Context()); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) articleFromPath(r *http.Request) (*article.Article, error) {
	cvid, err := utils.ParseID(utils.GetPathVar(r, "cvid"), "cv")
	if err != nil {
		return nil, BadRequest(err)
	}

	return s.newArticle(cvid), nil
}

// ArticleMarkdown serves an article as Markdown with a YAML front matter block.
func (s *Service) ArticleMarkdown(w http.ResponseWriter, r *http.Request) error {
	a, err := s.fetchArticle(r)
	if err != nil {
		return err
	}

	md, err := a.Markdown()
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", markdownContentType)
	_, err = w.Write([]byte(md))

	return err
}

// ArticleJSON serves an article's node tree.
func (s *Service) ArticleJSON(w http.ResponseWriter, r *http.Request) error {
	a, err := s.fetchArticle(r)
	if err != nil {
		return err
	}

	body, err := a.JSONBytes()
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", jsonContentType)
	_, err = w.Write(body)

	return err
}

// ArticleHTML serves an article as a standalone HTML page rendered from its Markdown.
func (s *Service) ArticleHTML(w http.ResponseWriter, r *http.Request) error {
	a, err := s.fetchArticle(r)
	if err != nil {
		return err
	}

	md, err := a.Markdown()
	if err != nil {
		return err
	}

	page, err := renderArticlePage([]byte(md))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", htmlContentType)
	_, err = w.Write(page)

	return err
}

// ArticleInfo serves the viewer-specific state of an article (liked, favourited, coins).
func (s *Service) ArticleInfo(w http.ResponseWriter, r *http.Request) error {
	a, err := s.articleFromPath(r)
	if err != nil {
		return err
	}

	return writeJSON(w, func() ([]byte, error) { return a.GetInfo(r.Context()) })
}

// ArticleDynamic serves the id of the social post that mirrors an article.
func (s *Service) ArticleDynamic(w http.ResponseWriter, r *http.Request) error {
	a, err := s.articleFromPath(r)
	if err != nil {
		return err
	}

	id, err := a.DynamicID(r.Context())
	if err != nil {
		return err
	}

	isNote, err := a.IsNote(r.Context())
	if err != nil {
		return err
	}

	return writeValue(w, map[string]any{
		"cvid":       a.CVID(),
		"dynamic_id": id,
		"is_note":    isNote,
	})
}

// ArticleAction performs a write action on an article with the configured credential.
//
// {action} is one of like, favorite or coin. like and favorite take ?status=0 to undo.
func (s *Service) ArticleAction(w http.ResponseWriter, r *http.Request) error {
	a, err := s.articleFromPath(r)
	if err != nil {
		return err
	}

	status := true
	if raw := utils.GetQueryParam(r, "status"); raw != "" {
		status, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequestf("invalid status %q", raw)
		}
	}

	ctx := r.Context()

	var act func() ([]byte, error)

	switch action := utils.GetPathVar(r, "action"); action {
	case "like":
		act = func() ([]byte, error) { return a.SetLike(ctx, status) }
	case "favorite":
		act = func() ([]byte, error) { return a.SetFavorite(ctx, status) }
	case "coin":
		act = func() ([]byte, error) { return a.AddCoins(ctx) }
	default:
		return &HTTPError{StatusCode: http.StatusNotFound, Err: fmt.Errorf("unknown action %q", action)}
	}

	log.Info().
		Int64("cvid", a.CVID()).
		Str("action", utils.GetPathVar(r, "action")).
		Bool("status", status).
		Msg("Performing article action")

	return writeJSON(w, act)
}

// ArticleRank serves the column ranking selected by ?type= (month, week, yesterday, day_before_yesterday).
func (s *Service) ArticleRank(w http.ResponseWriter, r *http.Request) error {
	name := utils.GetQueryParam(r, "type")

	rank, ok := article.ParseRankingType(name)
	if !ok {
		return badRequestf("unknown ranking type %q", name)
	}

	return writeJSON(w, func() ([]byte, error) { return article.GetArticleRank(r.Context(), s.Caller, rank) })
}

// ArticleList serves an article list (文集) and its articles.
func (s *Service) ArticleList(w http.ResponseWriter, r *http.Request) error {
	rlid, err := utils.ParseID(utils.GetPathVar(r, "rlid"), "rl")
	if err != nil {
		return BadRequest(err)
	}

	list := article.NewArticleList(rlid, s.Caller, s.Credential)

	return writeJSON(w, func() ([]byte, error) { return list.GetContent(r.Context()) })
}
