package cli

import "github.com/charmbracelet/huh"

// confirm prompts the operator before a destructive action. It defaults to
// "no" so a stray Enter never triggers data loss.
func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	).Run()
	return ok, err
}
