package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

var helpLines = []string{
	"  whoami                      - Show current active user",
	"  su [admin|gustavw|stephenc] - Switch operator identity",
	"  ls                          - List all hosts",
	"  regions                     - Show hosts grouped by region",
	"  tools                       - List server and web scan tools",
	"  ping [host]                 - Ping a specific host",
	"  disk [host]                 - Check disk usage on host",
	"  logs [host]                 - Tail syslog on host",
	"  scan [host] [tool] [-v]     - Run full security scan on host",
	"  web [url] [tool]            - Run web vulnerability scan",
	"  host add [name] [ip] [region]",
	"  host rm [id] | host toggle [id]",
	"  host set [id] [name|ip|region|status] [value]",
	"  menu [main|jump|scan|web|config] - Switch menu view",
	"  abort                       - Cancel the running action",
	"  clear                       - Clear the terminal",
}

// Interpreter parses operator input lines and dispatches them against the
// session and pipeline.
type Interpreter struct {
	session  *Session
	pipeline *Pipeline
	logger   *slog.Logger
	recorder Recorder
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithInterpreterLogger sets the structured logger.
func WithInterpreterLogger(l *slog.Logger) InterpreterOption {
	return func(in *Interpreter) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithCommandRecorder sets the metrics sink for handled commands.
func WithCommandRecorder(r Recorder) InterpreterOption {
	return func(in *Interpreter) {
		if r != nil {
			in.recorder = r
		}
	}
}

// NewInterpreter binds an interpreter to a session and pipeline.
func NewInterpreter(s *Session, p *Pipeline, opts ...InterpreterOption) *Interpreter {
	in := &Interpreter{
		session:  s,
		pipeline: p,
		logger:   slog.New(slog.DiscardHandler),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Submit handles one raw input line. Blank input is ignored. Every other line
// is echoed as a command line first. When the command starts a pipeline the
// Run is returned. The returned error classifies a non-fatal failure that has
// already been reported as one error line.
func (in *Interpreter) Submit(ctx context.Context, input string) (*Run, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return nil, nil
	}
	log := in.session.Log
	log.Command(in.session.Prompt() + " " + raw)

	parts := strings.Fields(raw)
	name := strings.ToLower(parts[0])
	args := parts[1:]

	run, err := in.dispatch(ctx, name, args)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		in.logger.Debug("command failed", "command", name, "error", err)
	}
	in.recorder.CommandHandled(metricName(name), outcome)
	return run, err
}

func (in *Interpreter) dispatch(ctx context.Context, name string, args []string) (*Run, error) {
	s := in.session
	log := s.Log
	switch name {
	case "whoami":
		log.Success(s.Operator())

	case "help":
		log.Success("AVAILABLE COMMANDS:")
		for _, l := range helpLines {
			log.Info(l)
		}

	case "clear":
		log.Clear()

	case "ls":
		log.Success("HOST REGISTRY:")
		for _, h := range s.Hosts.List() {
			log.Info(FormatHostRow(h))
		}

	case "regions":
		log.Success("REGIONAL DEPLOYMENTS:")
		for _, g := range s.Hosts.ByRegion() {
			log.Info(fmt.Sprintf("  %s (%d nodes)", g.Region, len(g.Hosts)))
		}

	case "tools":
		log.Success("SERVER SCAN TOOLS:")
		for _, t := range ServerTools {
			log.Info("  " + t)
		}
		log.Success("WEB SCAN TOOLS:")
		for _, t := range WebTools {
			log.Info("  " + t)
		}

	case "menu":
		token := ""
		if len(args) > 0 {
			token = args[0]
		}
		st, ok := ParseMenuState(token)
		if !ok {
			log.Error(MenuUsage)
			return nil, fmt.Errorf("%w: %q", ErrUnknownMenu, token)
		}
		s.SetMenu(st)

	case "su":
		if len(args) == 0 {
			log.Error("Usage: su [" + strings.Join(Operators, "|") + "]")
			return nil, fmt.Errorf("%w: operator", ErrMissingArgument)
		}
		if err := s.SwitchOperator(args[0]); err != nil {
			log.Error(fmt.Sprintf("Unknown operator '%s'. Available: %s", args[0], strings.Join(Operators, ", ")))
			return nil, err
		}

	case "ping", "disk", "logs", "scan":
		return in.hostAction(ctx, name, args)

	case "web":
		url, tool := "", ""
		if len(args) > 0 {
			url = args[0]
		}
		if len(args) > 1 {
			tool = args[1]
		}
		return in.WebScan(ctx, url, tool)

	case "host":
		return nil, in.hostCommand(args)

	case "abort":
		if !in.Abort() {
			log.Info("No action is running.")
		}

	default:
		log.Error(fmt.Sprintf("Command not recognized: %s. Type 'help'.", name))
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return nil, nil
}

func (in *Interpreter) hostAction(ctx context.Context, name string, args []string) (*Run, error) {
	log := in.session.Log
	if len(args) == 0 {
		log.Error(fmt.Sprintf("Usage: %s <host-name-or-ip>", name))
		return nil, fmt.Errorf("%w: host", ErrMissingArgument)
	}
	h, ok := in.session.Hosts.Lookup(args[0])
	if !ok {
		log.Error(fmt.Sprintf("Host '%s' not found. Run 'ls' to list registered hosts.", args[0]))
		return nil, fmt.Errorf("%w: %q", ErrHostNotFound, args[0])
	}
	switch name {
	case "ping":
		return in.Troubleshoot(ctx, h, PingCommand)
	case "disk":
		return in.Troubleshoot(ctx, h, DiskCommand)
	case "logs":
		return in.Troubleshoot(ctx, h, LogsCommand)
	}

	verbose := false
	tool := ""
	for _, a := range args[1:] {
		switch strings.ToLower(a) {
		case "-v", "--verbose":
			verbose = true
		default:
			if tool == "" {
				tool = a
			}
		}
	}
	return in.Scan(ctx, h, tool, verbose)
}

func (in *Interpreter) hostCommand(args []string) error {
	s := in.session
	log := s.Log
	usage := func() error {
		log.Error("Usage: host add [name] [ip] [region] | host rm <id> | host toggle <id> | host set <id> <field> <value>")
		return fmt.Errorf("%w: host subcommand", ErrMissingArgument)
	}
	if len(args) == 0 {
		return usage()
	}

	switch strings.ToLower(args[0]) {
	case "add":
		var p HostPatch
		if len(args) > 1 {
			p.Name = StringField(args[1])
		}
		if len(args) > 2 {
			p.IP = StringField(args[2])
		}
		if len(args) > 3 {
			p.Region = StringField(args[3])
		}
		in.AddHost(p)
		return nil

	case "rm", "remove", "delete":
		if len(args) < 2 {
			return usage()
		}
		return in.RemoveHost(args[1])

	case "toggle":
		if len(args) < 2 {
			return usage()
		}
		h, ok := s.Hosts.Get(args[1])
		if !ok {
			return in.unknownHostID(args[1])
		}
		next := h.Status.Toggle()
		s.Hosts.Update(h.ID, HostPatch{Status: StatusField(next)})
		log.Success(fmt.Sprintf("SYSTEM: Node %s marked %s.", h.ID, next))
		return nil

	case "set":
		if len(args) < 4 {
			return usage()
		}
		id, field, value := args[1], strings.ToLower(args[2]), args[3]
		if _, ok := s.Hosts.Get(id); !ok {
			return in.unknownHostID(id)
		}
		var p HostPatch
		switch field {
		case "name":
			p.Name = StringField(value)
		case "ip":
			p.IP = StringField(value)
		case "region":
			p.Region = StringField(value)
		case "status":
			st, ok := ParseHostStatus(value)
			if !ok {
				log.Error(fmt.Sprintf("Invalid status '%s'. Use online or offline.", value))
				return fmt.Errorf("%w: status %q", ErrInvalidField, value)
			}
			p.Status = StatusField(st)
		default:
			log.Error(fmt.Sprintf("Unknown field '%s'. Use name, ip, region or status.", field))
			return fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		s.Hosts.Update(id, p)
		log.Success(fmt.Sprintf("SYSTEM: Node %s updated (%s=%s).", id, field, value))
		return nil
	}
	return usage()
}

func (in *Interpreter) unknownHostID(id string) error {
	in.session.Log.Error(fmt.Sprintf("Node '%s' not found. Run 'ls' to list registered hosts.", id))
	return fmt.Errorf("%w: id %q", ErrHostNotFound, id)
}

// FormatHostRow renders one registry row for `ls`.
func FormatHostRow(h Host) string {
	return fmt.Sprintf("  %-20s %-15s [%s]", h.Name, h.IP, h.Status)
}

var knownCommands = map[string]struct{}{
	"whoami": {}, "help": {}, "clear": {}, "ls": {}, "regions": {}, "tools": {},
	"menu": {}, "su": {}, "ping": {}, "disk": {}, "logs": {}, "scan": {},
	"web": {}, "host": {}, "abort": {},
}

// metricName keeps metric label cardinality bounded.
func metricName(name string) string {
	if _, ok := knownCommands[name]; ok {
		return name
	}
	return "unknown"
}
