package core

import (
	"fmt"

	"github.com/google/uuid"
)

// DebugName produces a unique name for a GPU resource wrapper, used in
// log output when several resources of the same kind are alive at once
// (the depth and MSAA attachments recreated with the swapchain).
func DebugName(kind string) string {
	return fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8])
}
