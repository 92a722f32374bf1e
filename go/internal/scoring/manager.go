package scoring

import (
	"github.com/rs/zerolog/log"
)

// Manager keeps the undo and redo stacks of one match.
//
// A Manager is not safe for concurrent use. The session that owns the match
// serializes access to it.
type Manager struct {
	history []Command
	redo    []Command
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// ExecuteCommand runs cmd and records it for undo. The redo stack is cleared
// whether or not cmd applied; a skipped command is not recorded.
func (m *Manager) ExecuteCommand(cmd Command) Result {
	res := cmd.Execute()
	m.redo = nil
	if !res.Applied() {
		log.Debug().
			Str("command", string(cmd.CommandType())).
			Str("reason", string(res.Reason)).
			Msg("command skipped")
		return res
	}
	m.history = append(m.history, cmd)
	return res
}

// Undo reverts the most recent command. A command whose undo is skipped stays
// on the history.
func (m *Manager) Undo() (Command, Result) {
	n := len(m.history)
	if n == 0 {
		return nil, skipped(ReasonNothingToUndo)
	}
	cmd := m.history[n-1]
	res := cmd.Undo()
	if !res.Applied() {
		log.Warn().
			Str("command", string(cmd.CommandType())).
			Str("reason", string(res.Reason)).
			Msg("undo skipped")
		return cmd, res
	}
	m.history[n-1] = nil
	m.history = m.history[:n-1]
	m.redo = append(m.redo, cmd)
	return cmd, res
}

// Redo re-runs the most recently undone command.
func (m *Manager) Redo() (Command, Result) {
	n := len(m.redo)
	if n == 0 {
		return nil, skipped(ReasonNothingToRedo)
	}
	cmd := m.redo[n-1]
	res := cmd.Execute()
	if !res.Applied() {
		log.Warn().
			Str("command", string(cmd.CommandType())).
			Str("reason", string(res.Reason)).
			Msg("redo skipped")
		return cmd, res
	}
	m.redo[n-1] = nil
	m.redo = m.redo[:n-1]
	m.history = append(m.history, cmd)
	return cmd, res
}

func (m *Manager) CanUndo() bool { return len(m.history) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// HistoryLen returns the number of undoable commands.
func (m *Manager) HistoryLen() int { return len(m.history) }

// RedoLen returns the number of redoable commands.
func (m *Manager) RedoLen() int { return len(m.redo) }

// Reset discards both stacks.
func (m *Manager) Reset() {
	m.history = nil
	m.redo = nil
}
