package controller

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const memoWrapWidth = 80

func (c *Controller) getMemoGrid() *tview.Grid {
	help := tview.NewTextView().SetDynamicColors(true)
	help.SetText(shortcutLine(c.memoEvents))

	c.memoView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	c.memoView.SetBorder(true).SetTitle("Memo")

	grid := tview.NewGrid().SetBorders(true).SetRows(1, 0)
	grid.AddItem(help, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.memoView, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) showMemo() {
	c.memoView.SetText(renderMemo(c.session.Memo(), memoWrapWidth))
	c.memoView.ScrollToBeginning()

	c.pages.SwitchToPage(pageMemo)
	c.app.SetFocus(c.memoView)
	c.app.SetInputCapture(c.handleMemoKeys)
}

func (c *Controller) handleMemoKeys(evt *tcell.EventKey) *tcell.EventKey {
	if k, ok := c.memoEvents[AsKey(evt)]; ok {
		return k.Action(evt)
	}

	return evt
}

// renderMemo renders markdown for the memo page, falling back to the escaped raw text.
func renderMemo(memo string, width int) string {
	if strings.TrimSpace(memo) == "" {
		return "[gray]No memo yet. Press <E> to write one.[white]"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return tview.Escape(memo)
	}

	out, err := r.Render(memo)
	if err != nil {
		return tview.Escape(memo)
	}

	return tview.TranslateANSI(out)
}

func (c *Controller) getEditMemoAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		var (
			memo string
			err  error
		)

		c.app.Suspend(func() {
			memo, err = editInExternalEditor(c.session.Memo())
		})

		if err != nil {
			log.Warn().Err(err).Msg("error editing memo")
			c.memoView.SetText(fmt.Sprintf("[red]editor failed: %s[white]", tview.Escape(err.Error())))

			return nil
		}

		c.session.SetMemo(memo)
		c.showMemo()

		return nil
	}
}

func externalEditorName() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}

	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}

	return "vi"
}

// editInExternalEditor opens text in the user's editor and returns the saved result.
func editInExternalEditor(text string) (string, error) {
	f, err := os.CreateTemp("", "remindlist-memo-*.md")
	if err != nil {
		return "", fmt.Errorf("error creating memo file: %w", err)
	}

	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(text); err != nil {
		f.Close()

		return "", fmt.Errorf("error writing memo file: %w", err)
	}

	f.Close()

	args := strings.Fields(externalEditorName())

	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running %s: %w", args[0], err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading memo file: %w", err)
	}

	return string(b), nil
}
