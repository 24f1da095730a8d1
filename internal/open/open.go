package open

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
)

// OpenSession opens the session page in the default browser. $BROWSER
// overrides the platform opener.
func OpenSession(db *index.DB, year uint, sessionID string) error {
	session, err := db.GetSession(year, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %d/%s", year, sessionID)
	}
	if !session.URL.Valid {
		return fmt.Errorf("session %d/%s has no url", year, sessionID)
	}

	name, args := opener(runtime.GOOS, os.Getenv("BROWSER"))
	cmd := exec.Command(name, append(args, session.URL.String)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func opener(goos, browser string) (string, []string) {
	if browser != "" {
		return browser, nil
	}
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
