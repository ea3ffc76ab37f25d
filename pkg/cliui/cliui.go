// Package cliui provides terminal helpers for kauni commands: step spinners,
// shared styles and markdown rendering of answers.
package cliui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	HeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// spinnerFrames is the braille dot spinner.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// DisableColor strips colors from every style rendered afterwards. Marks
// rendered at init keep their colors.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Step runs fn and prints a ✓ or ✗ with the elapsed time. On a terminal an
// animated spinner is shown while fn runs.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	if isTerminal(w) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			frame := 0
			ticker := time.NewTicker(80 * time.Millisecond)
			defer ticker.Stop()

			for {
				mu.Lock()
				fmt.Fprintf(w, "\r  %s %s",
					spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
					msg,
				)
				mu.Unlock()

				select {
				case <-done:
					return
				case <-ticker.C:
					frame++
				}
			}
		}()
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)
	wg.Wait()

	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// On failure the content is returned unchanged with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}

// AnswerFooter summarizes where an answer came from.
func AnswerFooter(source, confidence string, contexts int) string {
	return DimStyle.Render(fmt.Sprintf("source: %s · confidence: %s · contexts: %d", source, confidence, contexts))
}
