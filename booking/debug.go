package booking

import (
	"fmt"
	"os"
	"strings"
)

func debugf(format string, args ...any) {
	if strings.TrimSpace(os.Getenv("CINEBOOK_DEBUG")) == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "[cinebook] "+format+"\n", args...)
}
