// Package analyzer dispatches analysis requests to the AI backend and
// classifies how they fail.
//
// Two transports implement Dispatcher: Client speaks the backend's own
// GET / and POST /analyze contract, OpenAIClient talks to any
// OpenAI-compatible chat completions endpoint directly. Both report
// failures as one of three error types:
//
//   - *ValidationError: the request was rejected locally, nothing was sent
//   - *ConnectionError: the backend could not be reached (includes timeouts)
//   - *BackendError: the backend answered with a non-success status
package analyzer
