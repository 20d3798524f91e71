// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package routes holds the HTTP handlers of the BiliRead service.

Handlers have the signature func(w http.ResponseWriter, r *http.Request) error and are wrapped by
middleware.CatchError, which turns a returned error into the response status via StatusFor.
*/
package routes

import (
	"codeberg.org/biliread/biliread/core/article"
	"codeberg.org/biliread/biliread/core/credential"
	"codeberg.org/biliread/biliread/core/xref"
)

// Service carries the collaborators shared by every handler.
type Service struct {
	Caller     article.Caller
	Credential *credential.Credential

	// Registry is optional.
	Registry *xref.Registry

	// Resolver is optional; without one, empty links in articles are dropped.
	Resolver           article.LinkResolver
	ResolveConcurrency int
}

func (s *Service) newArticle(cvid int64) *article.Article {
	opts := []article.Option{
		article.WithCredential(s.Credential),
		article.WithRegistry(s.Registry),
		article.WithResolveConcurrency(s.ResolveConcurrency),
	}

	if s.Resolver != nil {
		opts = append(opts, article.WithLinkResolver(s.Resolver))
	}

	return article.New(cvid, s.Caller, opts...)
}
