package negotiation

import (
	"fmt"

	"github.com/kilianp07/vpp/core/logger"
)

// decisionLog keeps the ordered record of every decision of a cycle and
// mirrors it to the component logger.
type decisionLog struct {
	opp   string
	lines []string
	log   logger.Logger
}

func (d *decisionLog) add(stage, format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", stage, fmt.Sprintf(format, args...))
	d.lines = append(d.lines, line)
	d.log.Infof("%s %s", d.opp, line)
}

func roundStage(r int) string { return fmt.Sprintf("round %d", r) }
