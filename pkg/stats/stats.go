package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ToolStats represents statistics for a single tool
type ToolStats struct {
	Name                 string        `json:"name"`
	CallCount            int           `json:"call_count"`
	ErrorCount           int           `json:"error_count"`
	TotalExecutionTime   time.Duration `json:"total_execution_time"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
	InputBytes           int           `json:"input_bytes"`
	OutputBytes          int           `json:"output_bytes"`
	LastUsed             time.Time     `json:"last_used"`
}

func (t *ToolStats) record(executionTime time.Duration, inputBytes, outputBytes int, failed bool, now time.Time) {
	t.CallCount++
	if failed {
		t.ErrorCount++
	}
	t.TotalExecutionTime += executionTime
	t.AverageExecutionTime = t.TotalExecutionTime / time.Duration(t.CallCount)
	t.InputBytes += inputBytes
	t.OutputBytes += outputBytes
	t.LastUsed = now
}

// SessionStats represents statistics since the server started
type SessionStats struct {
	StartTime time.Time             `json:"start_time"`
	Tools     map[string]*ToolStats `json:"tools"`
}

// PersistentStats represents statistics persisted across restarts
type PersistentStats struct {
	FirstRecorded time.Time             `json:"first_recorded"`
	LastUpdated   time.Time             `json:"last_updated"`
	Tools         map[string]*ToolStats `json:"tools"`
}

// StatsManager manages tool usage statistics
type StatsManager struct {
	sessionStats    *SessionStats
	persistentStats *PersistentStats
	statsFilePath   string
	mutex           sync.RWMutex
	now             func() time.Time
}

// NewStatsManager creates a new StatsManager backed by statsFilePath
func NewStatsManager(statsFilePath string) (*StatsManager, error) {
	now := time.Now()
	manager := &StatsManager{
		sessionStats: &SessionStats{
			StartTime: now,
			Tools:     make(map[string]*ToolStats),
		},
		persistentStats: &PersistentStats{
			FirstRecorded: now,
			LastUpdated:   now,
			Tools:         make(map[string]*ToolStats),
		},
		statsFilePath: statsFilePath,
		now:           time.Now,
	}

	if err := os.MkdirAll(filepath.Dir(statsFilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for stats file: %w", err)
	}

	data, err := os.ReadFile(statsFilePath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, manager.persistentStats); err != nil {
			return nil, fmt.Errorf("failed to parse stats file: %w", err)
		}
		if manager.persistentStats.Tools == nil {
			manager.persistentStats.Tools = make(map[string]*ToolStats)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}

	return manager, nil
}

// RecordToolUsage records statistics for one tool call
func (m *StatsManager) RecordToolUsage(toolName string, executionTime time.Duration, inputBytes, outputBytes int, failed bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	for _, tools := range []map[string]*ToolStats{m.sessionStats.Tools, m.persistentStats.Tools} {
		tool, ok := tools[toolName]
		if !ok {
			tool = &ToolStats{Name: toolName}
			tools[toolName] = tool
		}
		tool.record(executionTime, inputBytes, outputBytes, failed, now)
	}
	m.persistentStats.LastUpdated = now

	return m.savePersistentStats()
}

// GetSessionStats returns a copy of the statistics since start
func (m *StatsManager) GetSessionStats() *SessionStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return &SessionStats{
		StartTime: m.sessionStats.StartTime,
		Tools:     copyTools(m.sessionStats.Tools),
	}
}

// GetPersistentStats returns a copy of the persisted statistics
func (m *StatsManager) GetPersistentStats() *PersistentStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return &PersistentStats{
		FirstRecorded: m.persistentStats.FirstRecorded,
		LastUpdated:   m.persistentStats.LastUpdated,
		Tools:         copyTools(m.persistentStats.Tools),
	}
}

// ResetSessionStats resets the statistics since start
func (m *StatsManager) ResetSessionStats() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sessionStats = &SessionStats{
		StartTime: m.now(),
		Tools:     make(map[string]*ToolStats),
	}
}

func copyTools(tools map[string]*ToolStats) map[string]*ToolStats {
	out := make(map[string]*ToolStats, len(tools))
	for name, tool := range tools {
		toolCopy := *tool
		out[name] = &toolCopy
	}
	return out
}

// savePersistentStats writes the persisted statistics; the caller holds the lock
func (m *StatsManager) savePersistentStats() error {
	data, err := json.MarshalIndent(m.persistentStats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := os.WriteFile(m.statsFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}

	return nil
}

func formatTable(sb *strings.Builder, tools map[string]*ToolStats) {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("Tool                  | Calls | Errors | Avg Time  | Total Time | Output\n")
	sb.WriteString("----------------------|-------|--------|-----------|------------|--------\n")
	for _, name := range names {
		tool := tools[name]
		fmt.Fprintf(sb, "%-22s| %5d | %6d | %9s | %10s | %6d\n",
			tool.Name,
			tool.CallCount,
			tool.ErrorCount,
			tool.AverageExecutionTime.Round(time.Millisecond).String(),
			tool.TotalExecutionTime.Round(time.Millisecond).String(),
			tool.OutputBytes)
	}
}

// FormatStats formats statistics as a string
func FormatStats(sessionStats *SessionStats, persistentStats *PersistentStats) string {
	var sb strings.Builder
	sb.WriteString("Tool Usage Statistics\n\n")

	sb.WriteString("Since Server Start:\n")
	fmt.Fprintf(&sb, "Started: %s\n", sessionStats.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Uptime: %s\n\n", time.Since(sessionStats.StartTime).Round(time.Second))
	if len(sessionStats.Tools) > 0 {
		formatTable(&sb, sessionStats.Tools)
	} else {
		sb.WriteString("No tools used since start.\n")
	}

	sb.WriteString("\nAll-Time Statistics:\n")
	fmt.Fprintf(&sb, "First recorded: %s\n", persistentStats.FirstRecorded.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Last updated: %s\n\n", persistentStats.LastUpdated.Format(time.RFC3339))
	if len(persistentStats.Tools) > 0 {
		formatTable(&sb, persistentStats.Tools)
	} else {
		sb.WriteString("No tools used yet.\n")
	}

	return sb.String()
}
