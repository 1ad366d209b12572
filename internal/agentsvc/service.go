// Package agentsvc tracks the agent pool and the tasks dispatched to it:
// agent registration, capability-matched task assignment, completion and
// cancellation bookkeeping, and derived per-agent statistics.
package agentsvc

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// AgentConfig describes a new agent at creation time.
type AgentConfig struct {
	ID                 string
	Name               string
	Specialization     string
	Capabilities       []string
	MaxConcurrentTasks int
}

// Stats is the derived, per-agent snapshot returned by GetAgentStats.
type Stats struct {
	AgentID      string
	AgentName    string
	CurrentTasks int
	Completed    int
	Failed       int
	SuccessRate  float32
	Status       models.AgentStatusKind
}

// Service owns the agent table, task table, task results, and the active
// task→agent assignment map described in spec.md §4.6. Every exported
// method is safe for concurrent use; one mutex serializes the whole
// sub-transaction each operation performs, matching the invariant that
// an agent's CurrentTasks always equals its count of in_progress tasks.
type Service struct {
	mu     sync.Mutex
	agents map[string]*models.Agent
	tasks  map[string]*models.AgentTask
	results map[string]models.TaskResult
	active  map[string]string // task_id -> agent_id
}

// New constructs an empty Service. Unlike the original implementation,
// no default agent is auto-registered: callers create the agents they
// need via CreateAgent.
func New() *Service {
	return &Service{
		agents:  make(map[string]*models.Agent),
		tasks:   make(map[string]*models.AgentTask),
		results: make(map[string]models.TaskResult),
		active:  make(map[string]string),
	}
}

// CreateAgent registers a new agent in state ready.
func (s *Service) CreateAgent(cfg AgentConfig) *models.Agent {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	caps := make(map[string]bool, len(cfg.Capabilities))
	for _, c := range cfg.Capabilities {
		caps[c] = true
	}
	maxTasks := cfg.MaxConcurrentTasks
	if maxTasks <= 0 {
		maxTasks = 1
	}

	agent := &models.Agent{
		ID:                 id,
		Name:               cfg.Name,
		Specialization:     cfg.Specialization,
		Capabilities:       caps,
		MaxConcurrentTasks: maxTasks,
		Status:             models.AgentReady,
		LastActivity:       time.Now(),
	}

	s.mu.Lock()
	s.agents[agent.ID] = agent
	s.mu.Unlock()

	cp := *agent
	return &cp
}

// GetAgent returns a copy of the agent, or nil if unknown.
func (s *Service) GetAgent(agentID string) *models.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[agentID]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// ListAgents returns a copy of every registered agent.
func (s *Service) ListAgents() []models.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, *a)
	}
	return out
}

// AssignTask selects an available agent whose capability set is a
// superset of task.RequiredCapabilities, assigns the task to it, and
// transitions both to their busy/in-progress states. Returns
// corerr.NotFound (NoAvailableAgent) when no agent qualifies; the task
// is left untouched in that case.
func (s *Service) AssignTask(task models.AgentTask) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent := s.findAvailableAgent(task.RequiredCapabilities)
	if agent == nil {
		return "", corerr.NotFound("no agent available for required capabilities")
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.AgentID = agent.ID
	task.Status = models.TaskInProgress
	now := time.Now()
	task.Timestamps.Started = &now
	if task.Timestamps.Created.IsZero() {
		task.Timestamps.Created = now
	}

	stored := task
	s.tasks[task.ID] = &stored
	s.active[task.ID] = agent.ID

	agent.CurrentTasks++
	agent.Status = models.AgentBusy
	agent.LastActivity = now

	return task.ID, nil
}

// findAvailableAgent implements spec.md's "status ∈ {ready, idle}" rule:
// this model has no separate idle state, so an agent is available
// whenever it isn't error/terminated and still has spare capacity —
// ready agents and busy-but-not-full agents both qualify.
func (s *Service) findAvailableAgent(required map[string]bool) *models.Agent {
	for _, agent := range s.agents {
		if agent.Status != models.AgentReady && agent.Status != models.AgentBusy {
			continue
		}
		if agent.CurrentTasks >= agent.MaxConcurrentTasks {
			continue
		}
		if !hasAllCapabilities(agent.Capabilities, required) {
			continue
		}
		return agent
	}
	return nil
}

func hasAllCapabilities(have, required map[string]bool) bool {
	for cap, wanted := range required {
		if !wanted {
			continue
		}
		if !have[cap] {
			return false
		}
	}
	return true
}

// CompleteTask records result, transitions the task to completed or
// failed per result.Success, decrements the owning agent's CurrentTasks,
// and returns the agent to ready once it reaches zero.
func (s *Service) CompleteTask(taskID string, result models.TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if task, ok := s.tasks[taskID]; ok {
		if result.Success {
			task.Status = models.TaskCompleted
		} else {
			task.Status = models.TaskFailed
		}
		task.Timestamps.Completed = &now
	}
	s.results[taskID] = result
	s.releaseAgent(taskID, now)
}

// CancelTask transitions taskID to cancelled from any non-terminal state
// and performs the same agent bookkeeping as CompleteTask.
func (s *Service) CancelTask(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if task, ok := s.tasks[taskID]; ok {
		task.Status = models.TaskCancelled
		task.Timestamps.Completed = &now
	}
	s.releaseAgent(taskID, now)
}

func (s *Service) releaseAgent(taskID string, at time.Time) {
	agentID, ok := s.active[taskID]
	if !ok {
		return
	}
	delete(s.active, taskID)

	agent, ok := s.agents[agentID]
	if !ok {
		return
	}
	if agent.CurrentTasks > 0 {
		agent.CurrentTasks--
	}
	agent.LastActivity = at
	if agent.CurrentTasks == 0 {
		agent.Status = models.AgentReady
	}
}

// CancelAllTasks cancels every pending or in-progress task, zeroes every
// agent's CurrentTasks, and resets every agent's status to ready. Returns
// the number of tasks cancelled.
func (s *Service) CancelAllTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cancelled := 0
	for taskID, task := range s.tasks {
		if task.Status == models.TaskInProgress || task.Status == models.TaskPending {
			task.Status = models.TaskCancelled
			task.Timestamps.Completed = &now
			cancelled++
		}
		delete(s.active, taskID)
	}

	for _, agent := range s.agents {
		if agent.CurrentTasks > 0 {
			agent.CurrentTasks = 0
			agent.Status = models.AgentReady
		}
	}

	return cancelled
}

// GetTask returns a copy of the task, or nil if unknown.
func (s *Service) GetTask(taskID string) *models.AgentTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

// GetAgentStats derives success rate from recorded task results; returns
// nil if agentID is unknown. Never divides by zero.
func (s *Service) GetAgentStats(agentID string) *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[agentID]
	if !ok {
		return nil
	}

	var completed, failed int
	for taskID, result := range s.results {
		task, ok := s.tasks[taskID]
		if !ok || task.AgentID != agentID {
			continue
		}
		if result.Success {
			completed++
		} else {
			failed++
		}
	}

	total := completed + failed
	var rate float32
	if total > 0 {
		rate = float32(completed) / float32(total)
	}

	return &Stats{
		AgentID:      agent.ID,
		AgentName:    agent.Name,
		CurrentTasks: agent.CurrentTasks,
		Completed:    completed,
		Failed:       failed,
		SuccessRate:  rate,
		Status:       agent.Status,
	}
}
