package tui

import (
	"log"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Confirm asks a single yes/no question. A form error (closed
// terminal, interrupted prompt) resolves to the negative answer so an
// unattended failure never destroys anything.
func Confirm(title, description, affirmative, negative string) bool {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative(negative).
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		log.Printf("tui: confirm prompt failed, assuming %q: %v", negative, err)
		return false
	}
	return confirmed
}

// Prompter carries the session's interactive decisions. It satisfies
// the orchestrator's prompter interface.
type Prompter struct{}

func (Prompter) ConfirmCancel() bool {
	return Confirm(
		"Cancel this recording?",
		"The audio captured so far will be discarded.",
		"Cancel recording",
		"Keep recording",
	)
}

func (Prompter) ConfirmDeleteTranscript() bool {
	return Confirm(
		"Delete the transcript file?",
		"Choosing No keeps it on disk marked as cancelled.",
		"Delete",
		"Keep",
	)
}

func (Prompter) ConfirmDeleteAudio() bool {
	return Confirm(
		"Delete the archived audio?",
		"The transcript is saved. The audio file is only needed if you want to re-listen.",
		"Delete audio",
		"Keep audio",
	)
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
