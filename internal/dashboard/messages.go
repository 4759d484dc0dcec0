package dashboard

import "time"

// tickMsg requests a fresh read of the observed world's track snapshot.
type tickMsg time.Time
