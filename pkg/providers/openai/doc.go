// Package openai adapts OpenAI-compatible chat completion APIs to
// providers.Generator using the official openai-go SDK.
//
// The assistant talks to DeepSeek (https://api.deepseek.com/v1) and the
// enricher to xAI (https://api.x.ai/v1); both speak this protocol.
package openai
