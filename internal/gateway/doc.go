// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway implements the client side of the guide's backend LLM
// endpoint.
//
// The backend exposes a single POST /api/ai route that forwards message
// pairs to the upstream vendor. Responses come back either as one JSON
// payload (choices/message/content shape) or, with stream=true, as a
// server-sent-event stream of data: {"text": chunk} frames terminated by
// data: [DONE].
//
// This client does not retry: a non-OK status is a terminal failure
// surfaced as a single error, and whether to re-issue the request is the
// caller's decision.
package gateway
