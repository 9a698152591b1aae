// Package genai is a small client for the Gemini generateContent REST API.
//
// # Overview
//
// Three operations back the application:
//
//   - [Client.GenerateTextResponse]: a chat reply in the Blacksteel persona,
//     shaped by a mode modifier and optionally grounded on an image
//   - [Client.GenerateImage]: an educational illustration
//   - [Client.GenerateMindMapData]: a mind-map tree returned as JSON and
//     decoded into [mindmap.Node]
//
// There is no package-level client. Credentials travel in [Config] and are
// injected at construction:
//
//	c, err := genai.New(genai.Config{APIKey: key})
//	tree, err := c.GenerateMindMapData(ctx, "أنظمة التشغيل")
//
// # Errors
//
// Every failure returned by the three operations is a GENERATION error. The
// transport cause stays in the chain, so callers can still test for
// UNAUTHORIZED, RATE_LIMITED, NETWORK_ERROR, TIMEOUT or EMPTY_RESPONSE with
// [errors.Is].
//
// # Resilience
//
// Requests go through an [httputil.Guard]: rate limited, retried on network
// errors, 429 and 5xx, and cut off by a circuit breaker when the API keeps
// failing. Token usage reported by the API accumulates in
// [Client.TokensUsed].
package genai
