package cl

import "github.com/itchio/itch-bootstrap/localize"

// globals, get your globals here!

type CLI struct {
	// Name of the client being bootstrapped (`itch`, `kitch`)
	AppName string
	// Shown in window titles
	ProjectName   string
	VersionString string
	SessionID     string

	Localizer *localize.Localizer

	// `auto`, `gtk`, `walk`, `tui`, `headless`
	UI         string
	Standalone bool
	AssumeYes  bool
	JSON       bool

	ScriptPath        string
	ControllerCommand []string

	LogDir string

	// Linked from the error dialog
	IssueTrackerURL string
}
