package templates

import (
	"fmt"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/nonfiler/internal/core"
)

// HomeData is the state shown on the landing page.
type HomeData struct {
	Loaded bool
	Report core.LoadReport
	Alert  templ.Component // result of the last action, if any
}

// LoadSuccessMessage is the confirmation shown after a load.
func LoadSuccessMessage(r core.LoadReport) string {
	return fmt.Sprintf("Data Load Successfully. Time Taken: %d seconds", r.Seconds())
}

func machineTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func displayTime(t time.Time) string {
	return t.UTC().Format("02 Jan 2006 15:04 MST")
}
