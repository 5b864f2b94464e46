package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"wellbeing-waitlist/internal/service"
	"wellbeing-waitlist/internal/view"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const clearScreen = "\033[H\033[2J"

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live waitlist with cure countdowns",
		Long: `Live waitlist with cure countdowns.

Commands (one per line on stdin):
  cure <id>        mark a patient as cured (admin)
  delete <id>      ask to delete a record (admin)
  confirm          confirm the pending deletion
  cancel           cancel the pending deletion
  login <password> admin login
  logout           drop admin access
  reload           fetch the list again
  quit             leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub := a.publisher()
			defer func() {
				if err := pub.Close(); err != nil {
					a.log.Warn("Failed to close publishers", zap.Error(err))
				}
			}()

			ctx, cancel := context.WithCancel(cmd.Context())
			s := &watchSession{
				app:      a,
				waitlist: a.waitlist(pub),
				auth:     service.NewAuth(a.client, a.session, a.log),
				out:      os.Stdout,
			}
			defer s.shutdown(cancel)

			if err := s.waitlist.Load(ctx); err != nil {
				a.log.Warn("Initial load failed", zap.Error(err))
			}
			return s.run(ctx, os.Stdin)
		},
	}
}

type watchSession struct {
	app      *app
	waitlist *service.Waitlist
	auth     *service.Auth
	out      io.Writer

	// inflight backend actions started by async
	inflight sync.WaitGroup
}

// shutdown cancels in-flight actions, waits for them, then stops the view
func (s *watchSession) shutdown(cancel context.CancelFunc) {
	cancel()
	s.inflight.Wait()
	s.waitlist.Close()
}

func (s *watchSession) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	// banners expire without a state change, so redraw periodically too
	refresh := time.NewTicker(250 * time.Millisecond)
	defer refresh.Stop()

	s.render()
	for {
		select {
		case <-ctx.Done():
			s.app.log.Info("Watch stopped")
			return nil
		case <-s.waitlist.Changes():
			s.render()
		case <-refresh.C:
			s.render()
		case line, ok := <-lines:
			if !ok {
				// stdin closed: keep watching until interrupted
				lines = nil
				continue
			}
			if quit := s.handle(ctx, line); quit {
				return nil
			}
			s.render()
		}
	}
}

// handle runs one console command; true means leave
func (s *watchSession) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch fields[0] {
	case "quit", "exit", "q":
		return true
	case "cure":
		if s.requireArg(fields) {
			var id int64
			if id, err = parseID(fields[1]); err == nil {
				s.async(func() error { return s.waitlist.MarkCured(ctx, id) })
			}
		}
	case "delete":
		if s.requireArg(fields) {
			var id int64
			if id, err = parseID(fields[1]); err == nil {
				err = s.waitlist.RequestDelete(id)
			}
		}
	case "confirm":
		s.async(func() error { return s.waitlist.ConfirmDelete(ctx) })
	case "cancel":
		s.waitlist.CancelDelete()
		s.waitlist.SetMessage("")
	case "login":
		if s.requireArg(fields) {
			if err = s.auth.Login(ctx, fields[1]); err == nil {
				s.waitlist.SetMessage(service.MsgLoggedIn)
				err = s.waitlist.Load(ctx)
			}
		}
	case "logout":
		s.waitlist.CancelDelete()
		if err = s.auth.Logout(ctx); err == nil {
			s.waitlist.SetMessage(service.MsgLoggedOut)
			err = s.waitlist.Load(ctx)
		}
	case "reload":
		err = s.waitlist.Load(ctx)
	default:
		s.waitlist.SetMessage(fmt.Sprintf("Unknown command %q", fields[0]))
	}

	if err != nil {
		s.waitlist.SetMessage(errorLine(err))
	}
	return false
}

// async runs a backend action without blocking the redraw loop
func (s *watchSession) async(f func() error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := f(); err != nil {
			s.waitlist.SetMessage(errorLine(err))
		}
	}()
}

func (s *watchSession) requireArg(fields []string) bool {
	if len(fields) < 2 {
		s.waitlist.SetMessage(fmt.Sprintf("Usage: %s <value>", fields[0]))
		return false
	}
	return true
}

func (s *watchSession) render() {
	privileged := s.waitlist.Privileged()
	rows := view.Rows(s.waitlist.Snapshot(), privileged)

	fmt.Fprint(s.out, clearScreen)
	if err := view.Render(s.out, rows, privileged, s.waitlist.Notifications(), s.waitlist.Message()); err != nil {
		s.app.log.Error("Failed to render waitlist", zap.Error(err))
		return
	}

	if id, ok := s.waitlist.PendingDelete(); ok {
		if s.waitlist.Deleting(id) {
			fmt.Fprintf(s.out, "\nDeleting #%d...\n", id)
		} else {
			fmt.Fprintf(s.out, "\nDelete record #%d? Type 'confirm' or 'cancel'.\n", id)
		}
	}
	if !privileged {
		fmt.Fprintln(s.out, "\nAdmin Access Only: type 'login <password>'")
	}
}
