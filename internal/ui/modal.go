package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// openModalMsg asks the root model to stack a modal over the current view.
type openModalMsg struct {
	modal Modal
}

func openModal(m Modal) tea.Cmd {
	return func() tea.Msg {
		return openModalMsg{modal: m}
	}
}
