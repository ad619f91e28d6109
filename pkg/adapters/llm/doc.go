/*
Package llm provides ports.ChatProvider adapters for hosted and local language models.

Supported kinds are OpenAI (Responses API), Google Gemini, Anthropic, Ollama and an
offline scripted provider. Decorators add rate limiting and lifecycle events.
*/
package llm
