// Package semantic turns free-text RFQs into structured payloads using a
// language model backend.
//
// A Completer performs one chat-completion round trip. Implementations exist
// for OpenAI-compatible chat APIs (Mistral, OpenAI), Anthropic's messages API,
// a local Ollama server, and an in-process MockClient. The Extractor wraps a
// Completer with the RFQ prompt, secret redaction, a per-call timeout and
// schema validation of the response.
//
// Every failure is returned to the caller; nothing is retried. The rfq parser
// treats any error as a signal to fall back to pattern extraction.
package semantic
