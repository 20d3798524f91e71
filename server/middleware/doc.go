// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware wraps the handlers of the BiliRead service.

Middleware has the signature of Middleware and is chained by router.Router in registration order.
*/
package middleware
