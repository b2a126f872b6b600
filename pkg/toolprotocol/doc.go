// Package toolprotocol implements the Tool-Protocol Client (C10): a thin,
// transport-agnostic RPC client for calling out to an external tool server
// (a child process speaking newline-framed JSON over stdio, or an HTTP
// server), plus the discovery and node-registration glue that turns each
// tool a server advertises into an ordinary registry.Node the compiler and
// engine never have to treat specially.
//
// A Client owns one Transport and paces calls against it with a token-bucket
// rate limit (calls per second); it does not bound how many calls are in
// flight at once. It never retries on its own — that's the wrapped
// node's job (pkg/node's retry/fallback layer), the same way the teacher
// never retries inside an http.RoundTripper and instead lets the caller's
// policy decide.
package toolprotocol
