package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/drewfead/meetplan/internal/calendar"
	"github.com/drewfead/meetplan/internal/config"
	"github.com/drewfead/meetplan/internal/planner"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

var errConflicts = errors.New("calendar already has overlapping events")

func newRootCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "meetplan",
		Usage: "plan meetings, check what they cost, and send the invites",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML config file (default ~/.config/meetplan/config.yaml)",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "output format: json or yaml",
				Value: "json",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureLogging(cmd.Bool("verbose"))

			switch format := cmd.String("output"); format {
			case "json", "yaml":
				a.format = format
			default:
				return ctx, fmt.Errorf("unsupported output format %q", format)
			}

			if a.cfg != nil {
				return ctx, nil
			}
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return ctx, fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			return ctx, nil
		},
		Commands: []*cli.Command{
			slotsCommand(a),
			planCommand(a),
			inviteCommand(a),
			cancelCommand(a),
			templatesCommand(a),
		},
	}
}

// print writes v to the app output in the format chosen on the root command.
func (a *app) print(v any) error {
	if a.format == "yaml" {
		enc := yaml.NewEncoder(a.out)
		defer enc.Close()
		return enc.Encode(v)
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func slotsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "list candidate meeting times from the meeting-times API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "meeting-times API base URL (overrides config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.IsSet("base-url") {
				a.cfg.API.BaseURL = cmd.String("base-url")
			}

			client, err := a.meetingsClient(ctx)
			if err != nil {
				return err
			}

			times, err := client.FindMeetingTimes(ctx)
			if err != nil {
				return err
			}
			slog.Debug("fetched meeting times", "count", len(times.Slots))
			return a.print(times)
		},
	}
}

func loadMeeting(cmd *cli.Command) (planner.Meeting, error) {
	if path := cmd.Args().First(); path != "" {
		return planner.LoadMeeting(path)
	}
	return planner.DefaultMeeting(), nil
}

type planOutput struct {
	Meeting        planner.Meeting `json:"meeting" yaml:"meeting"`
	Summary        planner.Summary `json:"summary" yaml:"summary"`
	SummaryLine    string          `json:"summary_line" yaml:"summary_line"`
	SuggestionLine string          `json:"suggestion_line" yaml:"suggestion_line"`
}

func planCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "cost a meeting and suggest whether to hold it",
		ArgsUsage: "[meeting.yaml]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log", Usage: "append the result to this decision log CSV"},
			&cli.StringFlag{Name: "owner", Usage: "decision owner recorded in the log"},
			&cli.StringFlag{Name: "decision", Usage: "decision recorded in the log"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m, err := loadMeeting(cmd)
			if err != nil {
				return err
			}

			sum, err := planner.Evaluate(a.cfg.Planner, m)
			if err != nil {
				return err
			}
			for _, w := range sum.Warnings {
				slog.Warn(w)
			}

			if path := cmd.String("log"); path != "" {
				err := planner.AppendDecision(path, planner.Decision{
					Date:     time.Now(),
					Title:    m.Title,
					Decision: cmd.String("decision"),
					Owner:    cmd.String("owner"),
					Summary:  sum,
				})
				if err != nil {
					return err
				}
				slog.Info("decision logged", "path", path)
			}

			return a.print(planOutput{
				Meeting:        m,
				Summary:        sum,
				SummaryLine:    planner.SummaryLine(m, sum),
				SuggestionLine: planner.SuggestionLine(sum),
			})
		},
	}
}

type inviteOutput struct {
	EventID    string `json:"event_id,omitempty" yaml:"event_id,omitempty"`
	Success    bool   `json:"success" yaml:"success"`
	Message    string `json:"message" yaml:"message"`
	HtmlLink   string `json:"html_link,omitempty" yaml:"html_link,omitempty"`
	CalendarID string `json:"calendar_id" yaml:"calendar_id"`
	Start      string `json:"start" yaml:"start"`
	End        string `json:"end" yaml:"end"`
}

func inviteCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "invite",
		Usage:     "create a Google Calendar invite for a meeting",
		ArgsUsage: "[meeting.yaml]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "calendar-id", Usage: "calendar to add the invite to (overrides config)"},
			&cli.BoolFlag{Name: "dry-run", Usage: "print the invite without creating it"},
			&cli.BoolFlag{Name: "force", Usage: "create the invite even if it overlaps existing events"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.IsSet("calendar-id") {
				a.cfg.Calendar.ID = cmd.String("calendar-id")
			}

			m, err := loadMeeting(cmd)
			if err != nil {
				return err
			}
			sum, err := planner.Evaluate(a.cfg.Planner, m)
			if err != nil {
				return err
			}

			var slots []string
			if m.StartTime == "" {
				client, err := a.meetingsClient(ctx)
				if err != nil {
					return err
				}
				times, err := client.FindMeetingTimes(ctx)
				if err != nil {
					return err
				}
				slots = times.Slots
			}

			start, err := calendar.MeetingStart(m, slots...)
			if err != nil {
				return err
			}
			event := calendar.MapMeetingToEvent(m, sum, start)

			if path := cmd.String("ics"); path != "" {
				if err := calendar.WriteICS(path, event); err != nil {
					return err
				}
				slog.Info("invite file written", "path", path)
			}

			out := inviteOutput{
				CalendarID: a.cfg.Calendar.ID,
				Start:      event.Start.DateTime,
				End:        event.End.DateTime,
			}

			if cmd.Bool("dry-run") {
				out.Success = true
				out.Message = fmt.Sprintf("Dry run: would add '%s' (%s)", event.Summary, planner.SuggestionLine(sum))
				return a.print(out)
			}

			client, err := a.ensureCalendar(ctx)
			if err != nil {
				return err
			}

			end := start.Add(time.Duration(m.DurationMinutes) * time.Minute)
			conflicts, err := client.Conflicts(ctx, a.cfg.Calendar.ID, start, end)
			if err != nil {
				return err
			}
			for _, c := range conflicts {
				slog.Warn("invite overlaps an existing event", "summary", c.Summary, "start", c.Start.DateTime, "end", c.End.DateTime)
			}
			if len(conflicts) > 0 && !cmd.Bool("force") {
				return fmt.Errorf("%w: %d found, use --force to add anyway", errConflicts, len(conflicts))
			}

			created, err := client.CreateEvent(ctx, a.cfg.Calendar.ID, event)
			if err != nil {
				return err
			}

			out.EventID = created.Id
			out.Success = true
			out.HtmlLink = created.HtmlLink
			out.Message = fmt.Sprintf("Event '%s' added successfully to Google Calendar", created.Summary)
			return a.print(out)
		},
	}
}

func cancelCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "cancel a calendar invite and notify its attendees",
		ArgsUsage: "<event-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "calendar-id", Usage: "calendar holding the invite (overrides config)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eventID := cmd.Args().First()
			if eventID == "" {
				return fmt.Errorf("event ID is required")
			}
			if cmd.IsSet("calendar-id") {
				a.cfg.Calendar.ID = cmd.String("calendar-id")
			}

			client, err := a.ensureCalendar(ctx)
			if err != nil {
				return err
			}

			event, err := client.GetEvent(ctx, a.cfg.Calendar.ID, eventID)
			if err != nil {
				return err
			}
			if err := client.DeleteEvent(ctx, a.cfg.Calendar.ID, eventID); err != nil {
				return err
			}
			slog.Info("invite cancelled", "event_id", eventID, "summary", event.Summary)

			out := inviteOutput{
				EventID:    eventID,
				Success:    true,
				Message:    fmt.Sprintf("Event '%s' cancelled", event.Summary),
				CalendarID: a.cfg.Calendar.ID,
			}
			if event.Start != nil {
				out.Start = event.Start.DateTime
			}
			if event.End != nil {
				out.End = event.End.DateTime
			}
			return a.print(out)
		},
	}
}

func templatesCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "templates",
		Usage:     "write the planning workbook, CSV templates and a sample invite",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "meeting", Usage: "meeting YAML to fill the workbook and invite with"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = "."
			}

			m := planner.DefaultMeeting()
			if path := cmd.String("meeting"); path != "" {
				var err error
				if m, err = planner.LoadMeeting(path); err != nil {
					return err
				}
			}
			sum, err := planner.Evaluate(a.cfg.Planner, m)
			if err != nil {
				return err
			}

			paths, err := planner.WriteTemplates(dir)
			if err != nil {
				return err
			}

			workbook, err := planner.WriteWorkbook(dir, a.cfg.Planner, m)
			if err != nil {
				return err
			}
			paths = append(paths, workbook)

			start, err := calendar.MeetingStart(m)
			if err != nil {
				return err
			}
			invite := filepath.Join(dir, calendar.ICSFile)
			if err := calendar.WriteICS(invite, calendar.MapMeetingToEvent(m, sum, start)); err != nil {
				return err
			}
			paths = append(paths, invite)

			return a.print(map[string][]string{"templates": paths})
		},
	}
}
