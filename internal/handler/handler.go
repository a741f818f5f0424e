// Package handler implements the bizctl commands on top of the API client.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"bizflow/internal/client"
	"bizflow/internal/models"
	"bizflow/internal/payload"
	"bizflow/internal/presenter"
	"bizflow/internal/timeline"
	"bizflow/internal/workorder"
)

var ErrUnknownCommand = errors.New("unknown command, type 'help' for usage")

// ErrUsage is returned with the expected syntax when arguments are missing.
type ErrUsage string

func (e ErrUsage) Error() string { return "usage: " + string(e) }

type Handler struct {
	c      *client.Client
	out    io.Writer
	submit *presenter.Submitter
	now    func() time.Time
}

func New(c *client.Client, out io.Writer) *Handler {
	return &Handler{c: c, out: out, submit: presenter.NewSubmitter(), now: time.Now}
}

func (h *Handler) Execute(ctx context.Context, cmd string, args []string) error {
	commands := map[string]func(context.Context, []string) error{
		"help":               h.printHelp,
		"kinds":              h.handleKinds,
		"vocab":              h.handleVocab,
		"list":               h.handleList,
		"show":               h.handleShow,
		"create":             h.handleCreate,
		"transition":         h.handleTransition,
		"history":            h.handleHistory,
		"orders":             h.handleOrders,
		"menu":               h.handleMenu,
		"menu_add":           h.handleMenuAdd,
		"export_work_orders": h.handleExportWorkOrders,
		"import_work_orders": h.handleImportWorkOrders,
	}

	fn, ok := commands[cmd]
	if !ok {
		return ErrUnknownCommand
	}
	return fn(ctx, args)
}

func (h *Handler) printHelp(_ context.Context, _ []string) error {
	fmt.Fprintln(h.out, `Commands:
  help
  exit
  kinds
    - entity kinds known to the ledger
  vocab <kind>
    - statuses of a kind with their next actions
  list <kind> [status] [limit=10]
  show <kind> <id>
    - badge, progress, actions and activity feed of a record
  create <kind> <title...>
  transition <kind> <id> <status> [note...]
  history <kind> <id>
  orders [status]
    - storefront orders with their shipping address
  menu <mode>
  menu_add <mode> <label> <url>
  export_work_orders <file.csv|file.xlsx>
  import_work_orders <file.csv>
    - validate a work-order sheet`)
	return nil
}

func (h *Handler) handleKinds(ctx context.Context, _ []string) error {
	kinds, err := h.c.Kinds(ctx)
	if err != nil {
		return err
	}
	for _, k := range kinds {
		fmt.Fprintln(h.out, k)
	}
	return nil
}

func (h *Handler) handleVocab(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage("vocab <kind>")
	}
	entries, err := h.c.Vocabulary(ctx, models.Kind(args[0]))
	if err != nil {
		return err
	}
	for _, e := range entries {
		targets := make([]string, 0, len(e.Actions))
		for _, a := range e.Actions {
			targets = append(targets, a.Label+"->"+string(a.Target))
		}
		term := ""
		if e.Terminal {
			term = " (terminal)"
		}
		fmt.Fprintf(h.out, "  %-16s %-20s %-8s%s %s\n", e.Status, e.Label, e.Variant, term, strings.Join(targets, ", "))
	}
	return nil
}

func (h *Handler) handleList(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return ErrUsage("list <kind> [status] [limit=10]")
	}
	q := client.RecordQuery{Limit: 10}
	if len(args) >= 2 {
		q.Status = models.Status(args[1])
	}
	if len(args) >= 3 {
		if n, err := strconv.Atoi(args[2]); err == nil {
			q.Limit = n
		}
	}
	page := presenter.NewList(func(ctx context.Context) ([]models.Record, error) {
		return h.c.ListRecords(ctx, models.Kind(args[0]), q)
	}, nil)
	if err := page.Load(ctx); err != nil {
		return err
	}
	if page.State() == presenter.Empty {
		fmt.Fprintf(h.out, "No %s records\n", args[0])
		return nil
	}
	now := h.now()
	for _, v := range presenter.RecordViews(page.Items()) {
		fmt.Fprintf(h.out, "  %s  %-24s [%s] %s  updated %s\n",
			v.Record.ID, v.Record.Title, v.Descriptor.Variant, v.Descriptor.Label, v.Updated(now))
	}
	return nil
}

func (h *Handler) handleShow(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage("show <kind> <id>")
	}
	d, err := h.c.LoadDashboard(ctx, models.Kind(args[0]), args[1])
	if err != nil {
		return err
	}
	v := presenter.RecordView(*d.Record)
	fmt.Fprintf(h.out, "%s %q\n", v.Record.ID, v.Record.Title)
	fmt.Fprintf(h.out, "  status:   %s [%s]\n", v.Descriptor.Label, v.Descriptor.Variant)
	if v.Progress != nil {
		fmt.Fprintf(h.out, "  progress: %.0f%% [%s]\n", v.Progress.Percent, v.Progress.Variant)
	}
	for _, a := range v.Actions {
		marker := ""
		if a.Destructive {
			marker = " !"
		}
		fmt.Fprintf(h.out, "  action:   %s -> %s%s\n", a.Label, a.Target, marker)
	}
	for _, e := range timeline.Feed(d.Activities, h.now()) {
		fmt.Fprintf(h.out, "  %-10s %s\n", e.When, e.Activity.Description)
	}
	return nil
}

func (h *Handler) handleCreate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage("create <kind> <title...>")
	}
	rec, err := h.c.CreateRecord(ctx, models.Kind(args[0]), strings.Join(args[1:], " "), "")
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, "Created %s %s (%s)\n", rec.Kind, rec.ID, rec.Status)
	return nil
}

func (h *Handler) handleTransition(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return ErrUsage("transition <kind> <id> <status> [note...]")
	}
	kind, id := models.Kind(args[0]), args[1]
	req := models.TransitionRequest{To: models.Status(args[2]), Note: strings.Join(args[3:], " ")}

	var res *client.TransitionResult
	err := h.submit.Submit(ctx, client.TransitionPath(kind, id), func(ctx context.Context) error {
		var err error
		res, err = h.c.Transition(ctx, kind, id, req)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, "%s %s: %s -> %s\n", kind, id, res.Transition.From, res.Transition.To)
	return nil
}

func (h *Handler) handleHistory(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage("history <kind> <id>")
	}
	history, err := h.c.History(ctx, models.Kind(args[0]), args[1])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintln(h.out, "No transitions yet")
		return nil
	}
	for _, t := range history {
		fmt.Fprintf(h.out, "  %s  %s -> %s  %s %s\n",
			t.CreatedAt.Format(time.RFC3339), t.From, t.To, t.Actor, t.Note)
	}
	return nil
}

func (h *Handler) handleOrders(ctx context.Context, args []string) error {
	var status models.Status
	if len(args) >= 1 {
		status = models.Status(args[0])
	}
	orders, err := h.c.ListOrders(ctx, status)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(h.out, "No orders")
		return nil
	}
	for _, o := range orders {
		v := presenter.RecordView(models.Record{Kind: models.KindOrder, Status: o.Status})
		fmt.Fprintf(h.out, "  %-12s %-20s %-12s %3.0f%%  %s\n",
			o.OrderNumber, o.CustomerName, v.Descriptor.Label, v.Progress.Percent, addressLine(o.Address()))
	}
	return nil
}

func addressLine(a payload.Address) string {
	if a.Address == "" {
		return "-"
	}
	return a.String()
}

func (h *Handler) handleMenu(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage("menu <mode>")
	}
	items, err := h.c.ListMenu(ctx, args[0])
	if err != nil {
		return err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	for _, m := range items {
		fmt.Fprintf(h.out, "  %d. %s %s\n", m.Position, m.Label, m.URL)
	}
	return nil
}

func (h *Handler) handleMenuAdd(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return ErrUsage("menu_add <mode> <label> <url>")
	}
	m, err := h.c.CreateMenuItem(ctx, args[0], models.MenuItem{Label: args[1], URL: args[2]})
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, "Added %s (%s)\n", m.Label, m.ID)
	return nil
}

func (h *Handler) handleExportWorkOrders(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage("export_work_orders <file.csv|file.xlsx>")
	}
	orders, err := h.c.ListWorkOrders(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
		err = workorder.WriteXLSX(f, orders)
	} else {
		err = workorder.WriteCSV(f, orders)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, "Exported %d work orders to %s\n", len(orders), args[0])
	return f.Close()
}

func (h *Handler) handleImportWorkOrders(_ context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage("import_work_orders <file.csv>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	orders, err := workorder.ReadCSV(f)
	if err != nil {
		return err
	}
	for _, wo := range orders {
		fmt.Fprintf(h.out, "  %-10s %-20s %4d %-8s %s\n", wo.OrderNumber, wo.Product, wo.Quantity, wo.Priority, wo.Status)
	}
	fmt.Fprintf(h.out, "%d work orders read\n", len(orders))
	return nil
}
