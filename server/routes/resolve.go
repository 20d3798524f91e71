// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"net/http"

	"codeberg.org/biliread/biliread/core/linkparse"
	"codeberg.org/biliread/biliread/server/utils"
)

var errMissingURL = errors.New("missing url parameter")

// Resolve identifies the bilibili resource behind ?url=, following short links.
func (s *Service) Resolve(w http.ResponseWriter, r *http.Request) error {
	link := utils.GetQueryParam(r, "url")
	if link == "" {
		return BadRequest(errMissingURL)
	}

	resolver := s.Resolver
	if resolver == nil {
		resolver = linkparse.NewResolver(nil)
	}

	res, err := resolver.Resolve(r.Context(), link)
	if err != nil {
		return err
	}

	out := map[string]any{
		"kind": res.Kind,
		"id":   res.ID,
	}

	if res.Kind == linkparse.KindVideo {
		out["bvid"] = linkparse.AIDToBV(res.ID)
	}

	return writeValue(w, out)
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")
	_, err := w.Write([]byte("ok\n"))

	return err
}
