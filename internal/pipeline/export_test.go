package pipeline

import "time"

// SetPublishBackoff shortens the audit retry delay for tests.
func (p *Pipeline) SetPublishBackoff(d time.Duration) { p.backoff = d }
