package utils

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned if the user aborted a prompt with ctrl-c or ctrl-d
var ErrAborted = errors.New("aborted")

// SelectPrompt runs prompt and returns the selected item
func SelectPrompt(prompt *promptui.Select) (string, error) {
	_, res, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return res, nil
}
