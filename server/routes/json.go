// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// writeJSON relays an upstream data payload, which is already JSON.
func writeJSON(w http.ResponseWriter, fetch func() ([]byte, error)) error {
	data, err := fetch()
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", jsonContentType)
	_, err = w.Write(data)

	return err
}

func writeValue(w http.ResponseWriter, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	w.Header().Set("Content-Type", jsonContentType)
	_, err = w.Write(body)

	return err
}
