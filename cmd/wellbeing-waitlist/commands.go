package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"wellbeing-waitlist/internal/models"
	"wellbeing-waitlist/internal/service"
	"wellbeing-waitlist/internal/view"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func homeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Enter the console; drops admin access unless coming from the admin area",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromAdmin, _ := cmd.Flags().GetBool("from-admin")
			auth := service.NewAuth(a.client, a.session, a.log)
			if err := auth.Enter(cmd.Context(), fromAdmin); err != nil {
				return err
			}
			if a.session.IsPrivileged() {
				fmt.Println("Admin access active")
			} else {
				fmt.Println("Viewer access")
			}
			return nil
		},
	}
	cmd.Flags().Bool("from-admin", false, "Keep an existing admin session")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a patient on the waitlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			age, _ := cmd.Flags().GetInt("age")
			gender, _ := cmd.Flags().GetString("gender")
			problem, _ := cmd.Flags().GetString("problem")

			intake := service.NewIntake(a.client, a.log)
			p, err := intake.Register(cmd.Context(), models.Registration{
				Name:    name,
				Age:     age,
				Gender:  gender,
				Problem: problem,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s (#%d, %s priority)\n", service.MsgRegistered, p.ID, view.PriorityLabel(p.EmergencyLevel))
			return nil
		},
	}
	cmd.Flags().String("name", "", "Patient name")
	cmd.Flags().Int("age", 0, "Patient age (1-150)")
	cmd.Flags().String("gender", "", "Male, Female or Other")
	cmd.Flags().String("problem", "", "Description of the problem")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Admin login",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				fmt.Print("Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			auth := service.NewAuth(a.client, a.session, a.log)
			if err := auth.Login(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Println(service.MsgLoggedIn)
			if a.cfg.Session.Store != "redis" {
				a.log.Warn("Session store is in-memory; admin access ends with this command")
			}
			return nil
		},
	}
	cmd.Flags().String("password", "", "Admin password (prompted when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop admin access",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := service.NewAuth(a.client, a.session, a.log)
			if err := auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(service.MsgLoggedOut)
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the waitlist once",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := a.waitlist(nil)
			defer w.Close()

			if err := w.Load(cmd.Context()); err != nil {
				return err
			}
			rows := view.Rows(w.Snapshot(), w.Privileged())
			return view.Render(os.Stdout, rows, w.Privileged(), nil, "")
		},
	}
}

func cureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cure <id>",
		Short: "Mark a patient as cured",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			w := a.waitlist(nil)
			defer w.Close()

			if err := w.MarkCured(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println(w.Message())
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient record (asks for confirmation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")

			w := a.waitlist(nil)
			defer w.Close()

			if err := w.Load(cmd.Context()); err != nil {
				return err
			}
			if err := w.RequestDelete(id); err != nil {
				return err
			}

			if !yes {
				p, _ := w.Get(id)
				fmt.Printf("Delete the record of %s (#%d)? This cannot be undone. [y/N] ", p.Name, id)
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					w.CancelDelete()
					fmt.Println("Cancelled")
					return nil
				}
			}

			if err := w.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(w.Message())
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the waitlist to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			w := a.waitlist(nil)
			defer w.Close()

			if err := w.Load(cmd.Context()); err != nil {
				return err
			}
			rows := view.Rows(w.Snapshot(), w.Privileged())
			data, err := view.ExportExcel(rows)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			a.log.Info("Waitlist exported", zap.String("file", out), zap.Int("rows", len(rows)))
			fmt.Printf("Exported %d patients to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "waitlist.xlsx", "Output file")
	return cmd
}

func pingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Backend connection successful")
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid patient id %q", s)
	}
	return id, nil
}
