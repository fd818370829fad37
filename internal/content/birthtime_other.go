//go:build !darwin

package content

import (
	"os"
	"time"
)

// Birth time is not exposed through os.FileInfo outside macOS.
func birthTime(os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
