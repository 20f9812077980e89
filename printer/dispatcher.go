package printer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ocna/restaurant-pos/utils"
	"github.com/sirupsen/logrus"
)

// Dispatcher hands a ticket to whatever prints it. A nil error means the
// ticket was accepted.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Ticket) error
}

// SpoolDispatcher drops rendered tickets into a directory watched by the
// device print driver, one file per ticket.
type SpoolDispatcher struct {
	Dir   string
	Width int
}

func NewSpoolDispatcher(dir string, width int) *SpoolDispatcher {
	return &SpoolDispatcher{Dir: dir, Width: width}
}

func (d *SpoolDispatcher) Dispatch(ctx context.Context, t Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.txt", t.Kind, t.ID)
	tmp := filepath.Join(d.Dir, "."+name)
	if err := os.WriteFile(tmp, []byte(Render(t, d.Width)), 0o644); err != nil {
		return fmt.Errorf("write ticket: %w", err)
	}
	// The driver only picks up complete files.
	if err := os.Rename(tmp, filepath.Join(d.Dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("spool ticket: %w", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"ticket": t.ID,
		"kind":   t.Kind,
		"table":  t.TableName,
	}).Info("ticket spooled")
	return nil
}

// LogDispatcher prints tickets to the info log. Used when no printer is set up.
type LogDispatcher struct {
	Width int
}

func (d LogDispatcher) Dispatch(ctx context.Context, t Ticket) error {
	utils.InfoLogger.WithFields(logrus.Fields{
		"ticket": t.ID,
		"kind":   t.Kind,
		"table":  t.TableName,
	}).Info("ticket\n" + Render(t, d.Width))
	return nil
}
