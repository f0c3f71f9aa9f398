package commands

import (
	"context"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/colonyops/casereview/internal/core/host"
	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/internal/printer"
)

// isInteractive reports whether prompts can be shown.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// confirmer returns the host.Confirmer commands use. With yes set, or with
// no terminal to prompt on, it answers without asking.
func confirmer(yes bool) host.Confirmer {
	if yes {
		return host.Always(true)
	}
	if !isInteractive() {
		return host.Always(false)
	}
	return host.ConfirmFunc(func(_ context.Context, message string) bool {
		var ok bool
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			log.Debug().Err(err).Msg("confirm prompt aborted")
			return false
		}
		return ok
	})
}

// printNavigator reports navigation on the command output. The CLI has no
// router, so leaving a case ends with the destination printed for the caller.
func printNavigator() host.Navigator {
	return host.NavigateFunc(func(ctx context.Context, path string) error {
		printer.Ctx(ctx).Successf("Navigate to %s", path)
		return nil
	})
}
