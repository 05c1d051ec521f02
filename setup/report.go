package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dchest/safefile"
	"github.com/pkg/errors"
)

const FaultReportName = "last-error.txt"

// FaultReport is what gets written next to the logs when the
// bootstrapper fails, so it can be attached to a bug report even
// after the error dialog is gone.
type FaultReport struct {
	AppName   string
	Version   string
	SessionID string
	Err       error
}

func (r FaultReport) String() string {
	return fmt.Sprintf("%s-bootstrap %s\nsession: %s\ntime: %s\n\n%+v\n",
		r.AppName, r.Version, r.SessionID, time.Now().UTC().Format(time.RFC3339), r.Err)
}

// WriteFaultReport atomically replaces dir/last-error.txt.
func WriteFaultReport(dir string, r FaultReport) (string, error) {
	reportPath := filepath.Join(dir, FaultReportName)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", errors.WithMessage(err, "creating folder for fault report")
	}

	f, err := safefile.Create(reportPath, 0644)
	if err != nil {
		return "", errors.WithMessage(err, "creating fault report")
	}
	defer f.Close()

	_, err = f.WriteString(r.String())
	if err != nil {
		return "", errors.WithMessage(err, "writing fault report")
	}

	err = f.Commit()
	if err != nil {
		return "", errors.WithMessage(err, "committing fault report")
	}

	return reportPath, nil
}
