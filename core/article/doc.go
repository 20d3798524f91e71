// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package article reads bilibili columns (专栏) and converts their editor HTML to Markdown and JSON.

Conversion has two phases. [Parse] is a pure walk of the HTML that leaves empty links as
[UnresolvedLink] placeholders, and [Resolve] looks those links up concurrently and puts the
resulting cards back in document order. [Article] ties fetching, parsing and rendering together.
*/
package article
