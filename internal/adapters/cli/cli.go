// Package cli is the command-line front-end over the three gateways.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/uniempresarial/bienestar-client/internal/adapters/health"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

var ErrUsage = errors.New("usage error")

type command struct {
	summary string
	run     func(ctx context.Context, args []string) error
}

type App struct {
	auth      ports.AuthGateway
	analytics ports.AnalyticsGateway
	survey    ports.SurveyGateway
	sessions  ports.SessionStore
	health    *health.Checker
	out       io.Writer
	errOut    io.Writer
	log       logrus.FieldLogger

	commands map[string]command
}

type Deps struct {
	Auth      ports.AuthGateway
	Analytics ports.AnalyticsGateway
	Survey    ports.SurveyGateway
	Sessions  ports.SessionStore
	Health    *health.Checker
	Out       io.Writer
	// ErrOut receives usage and flag errors so Out stays JSON only.
	// Defaults to os.Stderr.
	ErrOut    io.Writer
	Logger    logrus.FieldLogger
}

func NewApp(d Deps) *App {
	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	errOut := d.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}
	a := &App{
		auth:      d.Auth,
		analytics: d.Analytics,
		survey:    d.Survey,
		sessions:  d.Sessions,
		health:    d.Health,
		out:       d.Out,
		errOut:    errOut,
		log:       log,
	}
	a.commands = map[string]command{
		"programs":         {"list academic programs", a.programs},
		"positions":        {"list staff positions", a.positions},
		"register-student": {"register a student account", a.registerStudent},
		"register-staff":   {"register a staff account", a.registerStaff},
		"login":            {"log in and keep the session", a.login},
		"logout":           {"forget the stored session", a.logout},
		"whoami":           {"show the stored session claims", a.whoami},
		"metrics":          {"show dashboard metrics", a.metrics},
		"alerts":           {"list alerts", a.alerts},
		"resolve-alert":    {"resolve an alert", a.resolveAlert},
		"export":           {"download the Excel export", a.export},
		"consent":          {"record survey consent", a.consent},
		"questions":        {"list WHO-5 questions", a.questions},
		"submit":           {"submit a WHO-5 survey", a.submit},
		"surveys":          {"list my surveys", a.surveys},
		"result":           {"show one survey result", a.result},
		"health":           {"check backend and session store", a.healthCheck},
	}
	return a
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}
	cmd, ok := a.commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(ctx, args[1:])
}

func (a *App) usage() {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.errOut, "usage: bienestar <command> [flags]")
	fmt.Fprintln(a.errOut)
	for _, name := range names {
		fmt.Fprintf(a.errOut, "  %-18s %s\n", name, a.commands[name].summary)
	}
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

func requireFlag(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: -%s is required", ErrUsage, name)
	}
	return nil
}

func (a *App) healthCheck(ctx context.Context, args []string) error {
	if err := a.parse(a.flagSet("health"), args); err != nil {
		return err
	}
	if a.health == nil {
		return fmt.Errorf("health checks are not configured")
	}
	report := a.health.Ready(ctx)
	if err := a.writeJSON(report); err != nil {
		return err
	}
	if report.Status != health.StatusUp {
		return fmt.Errorf("dependencies down")
	}
	return nil
}
