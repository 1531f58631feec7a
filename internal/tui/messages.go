package tui

import (
	"github.com/fruitcakej/GuardianNews/internal/loader"
)

type articlesLoadedMsg struct {
	result loader.Result
}

// prefsChangedMsg is posted once per preference write, whether it came
// from the settings screen or from an external edit of the file.
type prefsChangedMsg struct {
	keys []string
}

type statusErrMsg struct {
	err error
}
