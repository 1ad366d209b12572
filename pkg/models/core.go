// Package models holds the data types shared across nikcli's core
// components: model routing, provider requests/responses, tool
// definitions, agent/task state, plans, sessions, and the streaming
// arbiter's message envelope.
package models

import (
	"encoding/json"
	"time"
)

// ModelScope is a closed enumeration of task categories used to select a
// model strategy.
type ModelScope string

const (
	ScopeChatDefault ModelScope = "chat_default"
	ScopePlanning    ModelScope = "planning"
	ScopeCodeGen     ModelScope = "code_gen"
	ScopeToolLight   ModelScope = "tool_light"
	ScopeToolHeavy   ModelScope = "tool_heavy"
	ScopeVision      ModelScope = "vision"
	ScopeResearch    ModelScope = "research"
	ScopeQuick       ModelScope = "quick"
)

// ModelStrategy bundles the parameters a scope resolves to.
type ModelStrategy struct {
	Primary          string   `json:"primary" yaml:"primary"`
	Fallbacks        []string `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
	MaxTokens        int      `json:"max_tokens" yaml:"max_tokens"`
	Temperature      float32  `json:"temperature" yaml:"temperature"`
	ReasoningEnabled bool     `json:"reasoning_enabled" yaml:"reasoning_enabled"`
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in a session's ordered conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// GenerateRequest is a provider-agnostic chat-completion request.
type GenerateRequest struct {
	Messages         []ChatMessage `json:"messages"`
	Temperature      *float32      `json:"temperature,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	TopP             *float32      `json:"top_p,omitempty"`
	FrequencyPenalty *float32      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float32      `json:"presence_penalty,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
	Stream           bool          `json:"stream,omitempty"`
	Scope            ModelScope    `json:"scope,omitempty"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelResponse is a provider-agnostic chat-completion response.
type ModelResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	Model        string `json:"model"`
	Usage        *Usage `json:"usage,omitempty"`
}

// TextDelta is one incremental chunk of a streamed response.
type TextDelta struct {
	Text  string `json:"text,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Usage *Usage `json:"usage,omitempty"`
	Err   error  `json:"-"`
}

// ModelInfo describes a model a provider exposes.
type ModelInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ContextSize    int    `json:"context_size"`
	SupportsVision bool   `json:"supports_vision"`
}

// CacheEntry is a cached response keyed by request fingerprint.
type CacheEntry struct {
	Response  ModelResponse `json:"response"`
	CreatedAt int64         `json:"created_at"`
	Hits      uint64        `json:"hits"`
}

// ToolCategory classifies a tool for listing/filtering.
type ToolCategory string

const (
	ToolCategoryFile   ToolCategory = "file"
	ToolCategorySystem ToolCategory = "system"
	ToolCategoryGit    ToolCategory = "git"
	ToolCategorySearch ToolCategory = "search"
	ToolCategoryCustom ToolCategory = "custom"
)

// ToolDefinition describes a registered tool.
type ToolDefinition struct {
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	Category            ToolCategory    `json:"category"`
	ParametersSchema    json.RawMessage `json:"parameters_schema"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	Dangerous           bool            `json:"dangerous"`
}

// AgentStatusKind is the agent lifecycle state machine.
type AgentStatusKind string

const (
	AgentReady      AgentStatusKind = "ready"
	AgentBusy       AgentStatusKind = "busy"
	AgentError      AgentStatusKind = "error"
	AgentTerminated AgentStatusKind = "terminated"
)

// Agent is a member of the agent pool tracked by the agent service.
type Agent struct {
	ID                 string          `json:"id"`
	Name                string          `json:"name"`
	Specialization      string          `json:"specialization,omitempty"`
	Capabilities        map[string]bool `json:"capabilities"`
	CurrentTasks        int             `json:"current_tasks"`
	MaxConcurrentTasks  int             `json:"max_concurrent_tasks"`
	Status              AgentStatusKind `json:"status"`
	LastActivity        time.Time       `json:"last_activity"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// AgentTaskStatus is the task state machine.
type AgentTaskStatus string

const (
	TaskPending    AgentTaskStatus = "pending"
	TaskInProgress AgentTaskStatus = "in_progress"
	TaskCompleted  AgentTaskStatus = "completed"
	TaskFailed     AgentTaskStatus = "failed"
	TaskCancelled  AgentTaskStatus = "cancelled"
)

// AgentTaskTimestamps records the task's lifecycle timestamps.
type AgentTaskTimestamps struct {
	Created   time.Time  `json:"created"`
	Started   *time.Time `json:"started,omitempty"`
	Completed *time.Time `json:"completed,omitempty"`
}

// AgentTask is a unit of work dispatched to an agent.
type AgentTask struct {
	ID                   string              `json:"id"`
	Description          string              `json:"description"`
	AgentID              string              `json:"agent_id,omitempty"`
	Status               AgentTaskStatus     `json:"status"`
	Priority             int                 `json:"priority"`
	RequiredCapabilities map[string]bool     `json:"required_capabilities,omitempty"`
	Dependencies         []string            `json:"dependencies,omitempty"`
	Context              map[string]any      `json:"context,omitempty"`
	Timestamps           AgentTaskTimestamps `json:"timestamps"`
	TimeoutMs            *int64              `json:"timeout_ms,omitempty"`
}

// TaskResult is the outcome recorded by complete_task.
type TaskResult struct {
	TaskID  string `json:"task_id"`
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PlanStatus is the plan lifecycle.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanRunning   PlanStatus = "running"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
)

// PlanStep is one unit of a plan: a sequence of tool calls executed
// together with atomic success/failure semantics.
type PlanStep struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	ToolCalls     []ToolCall `json:"tool_calls"`
	DependsOn     []string   `json:"depends_on,omitempty"`
	ExecutionLog  []string   `json:"execution_log,omitempty"`
}

// PlanTimestamps records when a plan was created/started/completed.
type PlanTimestamps struct {
	Created   time.Time  `json:"created"`
	Started   *time.Time `json:"started,omitempty"`
	Completed *time.Time `json:"completed,omitempty"`
}

// Plan is an ordered sequence of steps generated for a task description.
type Plan struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Steps      []PlanStep     `json:"steps"`
	Status     PlanStatus     `json:"status"`
	Timestamps PlanTimestamps `json:"timestamps"`
}

// ExecutionSummary totals the outcome of a plan execution.
type ExecutionSummary struct {
	TotalSteps int `json:"total_steps"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// PlanExecutionResult is returned by execute_plan.
type PlanExecutionResult struct {
	PlanID  string           `json:"plan_id"`
	Success bool             `json:"success"`
	Summary ExecutionSummary `json:"summary"`
}

// FileOpKind tags the variant of a FileOperation.
type FileOpKind string

const (
	FileOpCreate FileOpKind = "create"
	FileOpModify FileOpKind = "modify"
	FileOpDelete FileOpKind = "delete"
)

// FileOperation is a reversible, timestamped file mutation. Exactly one of
// New/Old is meaningful per Kind: Create carries New only, Modify carries
// both, Delete carries Old only.
type FileOperation struct {
	Kind      FileOpKind `json:"operation"`
	Path      string     `json:"file_path"`
	Old       string     `json:"old_content,omitempty"`
	New       string     `json:"new_content,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// WorkSession is a durable chat session with its reversible edit history.
type WorkSession struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	CreatedAt    time.Time              `json:"created_at"`
	LastAccessed time.Time              `json:"last_accessed_at"`
	Messages     []ChatMessage          `json:"messages"`
	UndoStack    []FileOperation        `json:"undo,omitempty"`
	RedoStack    []FileOperation        `json:"redo,omitempty"`
	Metadata     map[string]any         `json:"metadata,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
}

// StreamMessageType classifies a StreamMessage for the output arbiter.
type StreamMessageType string

const (
	StreamUser   StreamMessageType = "user"
	StreamSystem StreamMessageType = "system"
	StreamAgent  StreamMessageType = "agent"
	StreamTool   StreamMessageType = "tool"
	StreamDiff   StreamMessageType = "diff"
	StreamError  StreamMessageType = "error"
)

// StreamMessageStatus tracks a StreamMessage's progress through the arbiter.
type StreamMessageStatus string

const (
	StreamQueued     StreamMessageStatus = "queued"
	StreamProcessing StreamMessageStatus = "processing"
	StreamCompleted  StreamMessageStatus = "completed"
	StreamAbsorbed   StreamMessageStatus = "absorbed"
)

// StreamMessage is one unit written to the shared terminal sink.
type StreamMessage struct {
	ID        string              `json:"id"`
	Type      StreamMessageType   `json:"type"`
	Content   string              `json:"content"`
	Status    StreamMessageStatus `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	AgentID   string              `json:"agent_id,omitempty"`
	Progress  *float32            `json:"progress,omitempty"`
	Cause     string              `json:"cause,omitempty"`
}
