// Package llm provides generative model clients used to propose filenames.
// It supports Ollama, OpenAI-compatible servers, Anthropic and the Claude Code
// CLI, with retry logic and rate limiting layered on top by Namer.
package llm
