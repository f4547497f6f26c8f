package views

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ViewType represents different screens in the application
type ViewType int

const (
	ViewAuthors ViewType = iota
	ViewAuthorDetails
)

// String returns the name of the view
func (v ViewType) String() string {
	switch v {
	case ViewAuthors:
		return "Authors"
	case ViewAuthorDetails:
		return "Author"
	default:
		return "Unknown"
	}
}

// View is the interface that all views must implement
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Message types for inter-view communication

// NavigateMsg asks the app to show the screen for Path
type NavigateMsg struct {
	Path string
}

// BackMsg asks the app to return to the previous screen
type BackMsg struct{}

// ThemeChangedMsg is sent after the active theme changes
type ThemeChangedMsg struct {
	Name string
}

// Helper functions to create messages

// Navigate creates a command that routes to path
func Navigate(path string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path}
	}
}

// Back creates a command that returns to the previous screen
func Back() tea.Cmd {
	return func() tea.Msg {
		return BackMsg{}
	}
}

// NotifyThemeChanged creates a command announcing a theme switch
func NotifyThemeChanged(name string) tea.Cmd {
	return func() tea.Msg {
		return ThemeChangedMsg{Name: name}
	}
}
