package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/skytour/internal/system"
)

// ReportLog collects one line per session.
const ReportLog = "session.log"

// Report prints the session summary to w and appends a line to logPath.
func (c *Controller) Report(w io.Writer, usage system.Usage, logPath string) error {
	s := c.stats
	total := c.sched.Now().Sub(s.Started)

	fmt.Fprintf(w,
		"--- [SESSION REPORT] ---\n"+
			"Build: %s\n"+
			"Tour: %s (%d waypoints)\n"+
			"Total Time: %.2fs\n"+
			"Transitions: %d (interrupted: %d)\n"+
			"Jumps: %d\n"+
			"Final Speed: x%g\n"+
			"Process: %s\n"+
			"------------------------\n",
		c.cfg.BuildVersion, c.tour.Title, c.tour.Len(), total.Seconds(),
		s.Transitions, s.Interrupted, s.Jumps, c.timing.Speed(), usage,
	)

	if logPath == "" {
		return nil
	}
	entry := fmt.Sprintf("[%s] Build: %s | Tour: %s | Waypoint: %d/%d | Total: %.2fs | Transitions: %d | Interrupted: %d | RSS: %d\n",
		time.Now().Format("2006-01-02 15:04:05"),
		c.cfg.BuildVersion,
		filepath.Base(c.cfg.TourPath),
		c.index+1, c.tour.Len(),
		total.Seconds(),
		s.Transitions, s.Interrupted,
		usage.RSS,
	)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("не удалось записать %s: %w", logPath, err)
	}
	defer f.Close()
	_, err = f.WriteString(entry)
	return err
}
