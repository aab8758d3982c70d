package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/spec-kit/support-intake/internal/api/dto"
	"github.com/spec-kit/support-intake/internal/client"
	"github.com/spec-kit/support-intake/internal/domain"
	"github.com/spec-kit/support-intake/internal/mcp"
	"github.com/spec-kit/support-intake/internal/tui"
)

const serverEnvVar = "SUPPORT_SERVER_URL"

// newCLIApp creates the CLI application with all commands.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "supportctl",
		Usage:   "Submit and triage support tickets",
		Version: Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   client.DefaultBaseURL,
				EnvVars: []string{serverEnvVar},
				Usage:   "Ticket API base URL",
			},
		},
		Commands: []*cli.Command{
			submitCmd(),
			listCmd(),
			getCmd(),
			resolveCmd(),
			statusCmd(),
			formCmd(),
			dashboardCmd(),
			mcpCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func apiClient(c *cli.Context) *client.Client {
	return client.New(c.String("server"))
}

// submitCmd creates the submit command.
func submitCmd() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "File a new ticket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Requester name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Requester email"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Required: true, Usage: "Describe the issue"},
		},
		Action: func(c *cli.Context) error {
			ticket, err := apiClient(c).CreateTicket(c.Context, c.String("name"), c.String("email"), c.String("message"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, dto.TicketMutationResponse{Success: true, Ticket: dto.NewTicketResponse(ticket)})
		},
	}
}

// listCmd creates the list command.
func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all tickets, newest first",
		Action: func(c *cli.Context) error {
			tickets, err := apiClient(c).ListTickets(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, dto.NewTicketListResponse(tickets))
		},
	}
}

// getCmd creates the get command.
func getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one ticket",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return err
			}
			ticket, err := apiClient(c).GetTicket(c.Context, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, dto.TicketEnvelope{Ticket: dto.NewTicketResponse(ticket)})
		},
	}
}

// resolveCmd creates the resolve command.
func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Mark a ticket resolved",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return err
			}
			return updateStatus(c, id, domain.TicketStatusResolved)
		},
	}
}

// statusCmd creates the status command.
func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Set a ticket's status (new|resolved)",
		ArgsUsage: "<id> <status>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return err
			}
			raw, err := requireArg(c, 1, "status")
			if err != nil {
				return err
			}
			status, ok := domain.ParseStatus(raw)
			if !ok {
				return cli.Exit(fmt.Sprintf("[VALIDATION_FAILED] unknown status %q", raw), 1)
			}
			return updateStatus(c, id, status)
		},
	}
}

func updateStatus(c *cli.Context, id string, status domain.TicketStatus) error {
	ticket, err := apiClient(c).UpdateStatus(c.Context, id, status)
	if err != nil {
		return outputError(err)
	}
	return outputJSON(c, dto.TicketMutationResponse{Success: true, Ticket: dto.NewTicketResponse(ticket)})
}

// formCmd creates the form command.
func formCmd() *cli.Command {
	return &cli.Command{
		Name:  "form",
		Usage: "Open the interactive submission form",
		Action: func(c *cli.Context) error {
			_, err := tea.NewProgram(tui.NewFormModel(c.Context, apiClient(c)), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// dashboardCmd creates the dashboard command.
func dashboardCmd() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Open the ticket triage dashboard",
		Action: func(c *cli.Context) error {
			_, err := tea.NewProgram(tui.NewDashboardModel(c.Context, apiClient(c)), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the ticket tools over MCP stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(apiClient(c), Version)
		},
	}
}

func requireArg(c *cli.Context, index int, name string) (string, error) {
	value := strings.TrimSpace(c.Args().Get(index))
	if value == "" {
		return "", cli.Exit(fmt.Sprintf("[VALIDATION_FAILED] %s is required", name), 1)
	}
	return value, nil
}

// outputJSON writes v as indented JSON to the app writer.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return cli.Exit(fmt.Sprintf("[%s] %s", apiErr.Code, apiErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
