package core

// ErrorKind classifies a contained agent-side failure. Failures cross the
// agent boundary as data on the AgentResponse, never as returned errors.
type ErrorKind string

const (
	// ErrorKindNone marks a successful response.
	ErrorKindNone ErrorKind = ""
	// ErrorKindTimeout marks a per-attempt deadline overrun (transient).
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindProvider marks an external collaborator failure.
	ErrorKindProvider ErrorKind = "provider"
	// ErrorKindCircuitOpen marks a fast-fail from an open circuit breaker.
	ErrorKindCircuitOpen ErrorKind = "circuit_open"
	// ErrorKindRetryExhausted marks a task that burned all retry attempts.
	ErrorKindRetryExhausted ErrorKind = "retry_exhausted"
	// ErrorKindMalformed marks an unparseable collaborator response.
	ErrorKindMalformed ErrorKind = "malformed"
)

// DiscoveredConcept is one concept/relationship pair surfaced by an agent.
// Relationship describes how the concept relates to the task's seed concept
// (e.g. "analogy", "cross_domain", "fact").
type DiscoveredConcept struct {
	Concept      string  `json:"concept"`
	Content      string  `json:"content"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
}

// AgentPayload is the structured data portion of an agent response. Summary
// carries prose output; Concepts carry graph-mergeable discoveries; Extra
// holds capability-specific fields (diagram specs, media references, source
// lists) that are retained on the node content but not interpreted here.
type AgentPayload struct {
	Concept  string              `json:"concept"`
	Summary  string              `json:"summary,omitempty"`
	Concepts []DiscoveredConcept `json:"concepts,omitempty"`
	Extra    map[string]any      `json:"extra,omitempty"`
}

// AgentResponse is produced exactly once per task attempt. Success carries a
// payload and confidence in [0,1]; failure carries an ErrorKind and message.
type AgentResponse struct {
	TaskID     string       `json:"task_id"`
	AgentName  string       `json:"agent_name"`
	Success    bool         `json:"success"`
	Data       AgentPayload `json:"data"`
	Confidence float64      `json:"confidence"`
	Error      ErrorKind    `json:"error,omitempty"`
	ErrorMsg   string       `json:"error_msg,omitempty"`
}

// NewAgentResponse builds a successful response, clamping confidence to [0,1].
func NewAgentResponse(taskID, agentName string, data AgentPayload, confidence float64) AgentResponse {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return AgentResponse{TaskID: taskID, AgentName: agentName, Success: true, Data: data, Confidence: confidence}
}

// NewAgentFailure builds a failed response carrying the contained error.
func NewAgentFailure(taskID, agentName string, kind ErrorKind, err error) AgentResponse {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return AgentResponse{TaskID: taskID, AgentName: agentName, Success: false, Error: kind, ErrorMsg: msg}
}
