package runner

import (
	"context"
	"slices"
	"time"
)

// Task represents a background task that can be scheduled
type Task interface {
	// Name returns the unique name of the task
	Name() string

	// Schedule returns the cron schedule expression for this task
	Schedule() string

	// Run executes the task
	Run(ctx context.Context) error

	// Timeout returns the maximum time this task should run; 0 means no limit
	Timeout() time.Duration
}

// TaskRegistry holds all registered tasks
type TaskRegistry struct {
	tasks map[string]Task
}

// NewTaskRegistry creates a new task registry
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]Task),
	}
}

// Register adds a task to the registry, replacing one with the same name
func (r *TaskRegistry) Register(task Task) {
	r.tasks[task.Name()] = task
}

// Get returns a task by name
func (r *TaskRegistry) Get(name string) (Task, bool) {
	task, exists := r.tasks[name]
	return task, exists
}

// Names returns the registered task names in sorted order
func (r *TaskRegistry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FuncTask adapts a plain function to Task.
type FuncTask struct {
	TaskName    string
	Cron        string
	MaxDuration time.Duration
	Fn          func(ctx context.Context) error
}

func (f *FuncTask) Name() string { return f.TaskName }

func (f *FuncTask) Schedule() string { return f.Cron }

func (f *FuncTask) Timeout() time.Duration { return f.MaxDuration }

func (f *FuncTask) Run(ctx context.Context) error { return f.Fn(ctx) }
