package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/ontoserver/collabclient"
	"github.com/ontoserver/collabclient/internal/config"
	"github.com/ontoserver/collabclient/internal/fakeauthority"
	"github.com/ontoserver/collabclient/pkg/history"
	"github.com/ontoserver/collabclient/pkg/logger"
	"github.com/ontoserver/collabclient/pkg/models"
)

type app struct {
	cfg    *config.Config
	opts   docopt.Opts
	out    io.Writer
	logger logger.Logger
	json   bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var shown string
	parser := &docopt.Parser{HelpHandler: func(err error, output string) {
		if err == nil {
			shown = output
		}
	}}
	opts, err := parser.ParseArgs(usage, args, CollabctlVersion)
	if err != nil {
		return err
	}
	if shown != "" {
		fmt.Fprintln(stdout, shown)
		return nil
	}

	path, _ := opts.String("--config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log, err := logger.FromFormat(cfg.Log.Format, cfg.Log.Level, stderr)
	if err != nil {
		return err
	}
	asJSON, _ := opts.Bool("--json")

	a := &app{cfg: cfg, opts: opts, out: stdout, logger: log, json: asJSON}

	commands := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"projects", a.projects},
		{"history", a.history},
		{"roles", a.roles},
		{"operations", a.operations},
		{"can", a.can},
		{"create-project", a.createProject},
		{"commit", a.commit},
		{"serve-fake", a.serveFake},
	}
	for _, c := range commands {
		if selected, _ := opts.Bool(c.name); selected {
			return c.run(ctx)
		}
	}
	return errors.New("no command given")
}

func (a *app) session() (*collabclient.Session, error) {
	if a.cfg.Authority.Token == "" {
		return nil, errors.New("no token configured, set TOKEN or authority.token")
	}
	s, err := collabclient.FromEndpointURLString(
		a.cfg.Authority.Endpoint,
		models.AuthToken(a.cfg.Authority.Token),
		collabclient.WithLogger(a.logger),
		collabclient.WithTimeout(a.cfg.Authority.Timeout),
		collabclient.WithCompression(a.cfg.Authority.Compression),
	)
	if err != nil {
		return nil, err
	}
	if a.cfg.Authority.Project != "" {
		s.SetActiveProject(models.ProjectID(a.cfg.Authority.Project))
	}
	return s, nil
}

// project returns the <project> argument, or the configured one.
func (a *app) project() (models.ProjectID, bool) {
	if p, _ := a.opts.String("<project>"); p != "" {
		return models.ProjectID(p), true
	}
	if a.cfg.Authority.Project != "" {
		return models.ProjectID(a.cfg.Authority.Project), true
	}
	return "", false
}

func (a *app) withSession(ctx context.Context, fn func(s *collabclient.Session) error) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Disconnect(ctx); err != nil {
			a.logger.Debug("disconnect failed", "error", err)
		}
	}()
	return fn(s)
}

func (a *app) projects(ctx context.Context) error {
	return a.withSession(ctx, func(s *collabclient.Session) error {
		projects, err := s.GetProjects(ctx)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(projects)
		}
		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, []string{string(p.ID), p.Name, string(p.Owner), p.Description})
		}
		return a.printTable([]string{"ID", "NAME", "OWNER", "DESCRIPTION"}, rows)
	})
}

func (a *app) history(ctx context.Context) error {
	id, _ := a.project()
	return a.withSession(ctx, func(s *collabclient.Session) error {
		doc, err := s.OpenProject(ctx, id)
		if err != nil {
			return err
		}
		table := history.NewTable(doc.History)
		if a.json {
			rows, err := table.Rows()
			if err != nil {
				return err
			}
			return a.printJSON(rows)
		}

		header := []string{"REVISION"}
		for _, col := range history.Columns() {
			header = append(header, strings.ToUpper(col.String()))
		}
		rows := make([][]string, 0, table.RowCount())
		for i := 0; i < table.RowCount(); i++ {
			rev, err := table.Revision(i)
			if err != nil {
				return err
			}
			row := []string{rev.String()}
			for _, col := range history.Columns() {
				cell, err := table.Text(i, col)
				if err != nil {
					return err
				}
				row = append(row, cell)
			}
			rows = append(rows, row)
		}
		return a.printTable(header, rows)
	})
}

func (a *app) roles(ctx context.Context) error {
	return a.withSession(ctx, func(s *collabclient.Session) error {
		var roles []models.Role
		var err error
		if id, ok := a.project(); ok {
			roles, err = s.GetRoles(ctx, s.UserID(), id)
		} else {
			roles, err = s.GetAllRoles(ctx)
		}
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(roles)
		}
		rows := make([][]string, 0, len(roles))
		for _, r := range roles {
			rows = append(rows, []string{string(r.ID), r.Name, strconv.Itoa(len(r.Operations))})
		}
		return a.printTable([]string{"ID", "NAME", "OPERATIONS"}, rows)
	})
}

func (a *app) operations(ctx context.Context) error {
	return a.withSession(ctx, func(s *collabclient.Session) error {
		var ops []models.Operation
		var err error
		if id, ok := a.project(); ok {
			ops, err = s.GetOperations(ctx, s.UserID(), id)
		} else {
			ops, err = s.GetAllOperations(ctx)
		}
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(ops)
		}
		rows := make([][]string, 0, len(ops))
		for _, op := range ops {
			rows = append(rows, []string{string(op.ID), string(op.Type), op.Name})
		}
		return a.printTable([]string{"ID", "TYPE", "NAME"}, rows)
	})
}

func (a *app) can(ctx context.Context) error {
	op, _ := a.opts.String("<operation>")
	return a.withSession(ctx, func(s *collabclient.Session) error {
		if id, ok := a.project(); ok {
			s.SetActiveProject(id)
		}
		res := s.CheckPermission(ctx, models.OperationID(op))
		if res.Err != nil {
			return res.Err
		}
		if a.json {
			return a.printJSON(map[string]any{"operation": op, "allowed": res.Allowed})
		}
		if res.Allowed {
			fmt.Fprintf(a.out, "%s: allowed\n", op)
		} else {
			fmt.Fprintf(a.out, "%s: denied\n", op)
		}
		return nil
	})
}

func (a *app) createProject(ctx context.Context) error {
	id, _ := a.project()
	name, _ := a.opts.String("--name")
	description, _ := a.opts.String("--description")
	comment, _ := a.opts.String("--comment")
	edits, err := parseEdits(a.opts["<edit>"])
	if err != nil {
		return err
	}

	return a.withSession(ctx, func(s *collabclient.Session) error {
		req := collabclient.ProjectRequest{ID: id, Name: name, Description: description}
		if len(edits) > 0 {
			req.Initial = models.NewCommitBundle(models.RevisionBase, comment, edits...)
		}
		doc, err := s.CreateProject(ctx, req)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(map[string]any{"project": doc.ProjectID, "head": int64(doc.History.HeadRevision())})
		}
		fmt.Fprintf(a.out, "created %s at %v\n", doc.ProjectID, doc.History.HeadRevision())
		return nil
	})
}

func (a *app) commit(ctx context.Context) error {
	id, _ := a.project()
	baseArg, _ := a.opts.String("--base")
	base, err := strconv.ParseInt(strings.TrimPrefix(baseArg, "R"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid base revision %q: %w", baseArg, err)
	}
	comment, _ := a.opts.String("--comment")
	edits, err := parseEdits(a.opts["<edit>"])
	if err != nil {
		return err
	}

	return a.withSession(ctx, func(s *collabclient.Session) error {
		h, err := s.Commit(ctx, id, models.NewCommitBundle(models.DocumentRevision(base), comment, edits...))
		var syncErr *collabclient.OutOfSyncError
		if errors.As(err, &syncErr) {
			return fmt.Errorf("%w (open the project again and rebase the edits)", err)
		}
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(map[string]any{"project": id, "head": int64(h.HeadRevision())})
		}
		fmt.Fprintf(a.out, "committed %s at %v\n", id, h.HeadRevision())
		return nil
	})
}

func (a *app) serveFake(ctx context.Context) error {
	addr, _ := a.opts.String("--addr")
	if addr == "" {
		addr = a.cfg.Fake.Addr
	}

	authority := fakeauthority.New(a.cfg.Fake.Secret, fakeauthority.WithLogger(a.logger))
	token, err := authority.RegisterUser(models.User{ID: models.UserID(a.cfg.Fake.Admin), Name: a.cfg.Fake.Admin}, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "TOKEN=%s\n", token)

	return authority.Serve(ctx, addr)
}

// parseEdits reads <kind>:<content> arguments.
func parseEdits(arg any) ([]models.Edit, error) {
	raw, _ := arg.([]string)
	edits := make([]models.Edit, 0, len(raw))
	for _, r := range raw {
		kind, content, ok := strings.Cut(r, ":")
		if !ok || kind == "" {
			return nil, fmt.Errorf("invalid edit %q, want <kind>:<content>", r)
		}
		e := models.Edit{Kind: models.EditKind(kind), Content: content}
		if _, guarded := e.RequiredOperation(); !guarded {
			return nil, fmt.Errorf("unknown edit kind %q", kind)
		}
		edits = append(edits, e)
	}
	return edits, nil
}
