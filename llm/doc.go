// Package llm provides implementations of the core.Generator port used by
// the connection, content, visual, multimedia and validation capabilities.
// Provider adapters live in subpackages (anthropic, openai); this package
// contains the deterministic MockGenerator used in tests and examples.
package llm
