package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/anchorapp/journal/internal/export"
	"github.com/anchorapp/journal/internal/journal"
	"github.com/anchorapp/journal/internal/models"
	"github.com/anchorapp/journal/internal/repositories/entries"
	"github.com/google/uuid"
)

// dispatch parses one command line and runs the handler. It returns true
// when the user asked to leave.
func (a *App) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(a.out, "Available commands: (l)ist, more, search, tag, sort, add, show, edit, delete, undo, redo, export, assess, risks, seed, exit")

	case "l", "list":
		a.list()

	case "more":
		a.more(ctx)

	case "search":
		a.search(strings.Join(args, " "))

	case "tag":
		a.tag(args)

	case "sort":
		a.sort(args)

	case "add":
		a.add(ctx)

	case "show":
		a.show(args)

	case "edit":
		a.edit(ctx, args)

	case "delete":
		a.delete(ctx, args)

	case "undo":
		a.undo(ctx)

	case "redo":
		a.redo(ctx)

	case "export":
		a.export(args)

	case "assess":
		a.assess(ctx)

	case "risks":
		a.listRisks(ctx)

	case "seed":
		a.seed(ctx, args)

	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return true

	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}
	return false
}

func (a *App) list() {
	visible := a.store.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(a.out, "No entries.")
		return
	}
	for i, e := range visible {
		sentiment := "?"
		if e.Sentiment != nil {
			sentiment = e.Sentiment.String()
		}
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		lock := " "
		if e.IsLocked {
			lock = "*"
		}
		fmt.Fprintf(a.out, "%3d %s %s  %-30s %-8s %s\n",
			i+1, lock, e.CreatedAt.Local().Format("2006-01-02 15:04"), title, sentiment, strings.Join(e.Tags, ","))
	}
	if a.store.HasMorePages() {
		fmt.Fprintln(a.out, "('more' loads the next page)")
	}
}

func (a *App) more(ctx context.Context) {
	if !a.store.HasMorePages() {
		fmt.Fprintln(a.out, "No more entries.")
		return
	}
	if err := a.store.LoadMore(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	a.list()
}

// search updates the engine's text filter. Flush settles the debounce
// immediately so the shell stays synchronous.
func (a *App) search(text string) {
	a.store.Engine().SetSearchText(text)
	a.store.Engine().Flush()
	a.list()
}

func (a *App) tag(tags []string) {
	a.store.Engine().SetTags(tags)
	a.store.Engine().Flush()
	a.list()
}

func (a *App) sort(args []string) {
	order := entries.SortCreatedDesc
	if len(args) > 0 && args[0] == "oldest" {
		order = entries.SortCreatedAsc
	}
	a.store.Engine().SetSort(order)
	a.list()
}

func (a *App) add(ctx context.Context) {
	title, err := GetSimpleText(a.reader, "Title (optional)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	body, err := GetMultiline(a.reader, "How are you feeling?", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	tags, err := GetTags(a.reader, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	e, err := a.store.Add(ctx, title, body, tags)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	sentiment := "unknown"
	if e.Sentiment != nil {
		sentiment = e.Sentiment.String()
	}
	fmt.Fprintf(a.out, "Saved. Sentiment: %s\n", sentiment)
}

// entryAt resolves a 1-based index from the list output to an entry.
func (a *App) entryAt(args []string) (models.Entry, bool) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: <command> <number from 'list'>")
		return models.Entry{}, false
	}
	n, err := strconv.Atoi(args[0])
	visible := a.store.Visible()
	if err != nil || n < 1 || n > len(visible) {
		fmt.Fprintf(a.out, "No entry numbered %q; run 'list' first.\n", args[0])
		return models.Entry{}, false
	}
	return visible[n-1], true
}

func (a *App) show(args []string) {
	e, ok := a.entryAt(args)
	if !ok {
		return
	}
	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(a.out, "%s\n%s\n\n%s\n", title, e.CreatedAt.Local().Format("Mon, 2 Jan 2006 15:04"), e.Body)
	if e.Sentiment != nil {
		fmt.Fprintf(a.out, "\nSentiment: %s\n", e.Sentiment.String())
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags: %s\n", strings.Join(e.Tags, ", "))
	}
}

func (a *App) edit(ctx context.Context, args []string) {
	e, ok := a.entryAt(args)
	if !ok {
		return
	}
	if e.IsLocked {
		fmt.Fprintln(a.out, "Entry is locked.")
		return
	}

	body, err := GetMultiline(a.reader, "New body (current shown below)\n"+e.Body, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if body == "" {
		fmt.Fprintln(a.out, "Unchanged.")
		return
	}

	updated, err := a.store.Update(ctx, e.ID, journal.Patch{Body: &body})
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	sentiment := "unknown"
	if updated.Sentiment != nil {
		sentiment = updated.Sentiment.String()
	}
	fmt.Fprintf(a.out, "Saved. Sentiment: %s\n", sentiment)
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <numbers from 'list'>")
		return
	}
	visible := a.store.Visible()
	var victims []models.Entry
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(visible) {
			fmt.Fprintf(a.out, "No entry numbered %q; run 'list' first.\n", arg)
			return
		}
		victims = append(victims, visible[n-1])
	}

	if err := a.store.Delete(ctx, victims); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Deleted %d entries ('undo' brings them back).\n", len(victims))
}

func (a *App) undo(ctx context.Context) {
	done, err := a.store.Undo(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if !done {
		fmt.Fprintln(a.out, "Nothing to undo.")
		return
	}
	fmt.Fprintln(a.out, "Undone.")
}

func (a *App) redo(ctx context.Context) {
	done, err := a.store.Redo(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if !done {
		fmt.Fprintln(a.out, "Nothing to redo.")
		return
	}
	fmt.Fprintln(a.out, "Redone.")
}

// export writes the currently visible entries as JSON to the given file.
func (a *App) export(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: export <file>")
		return
	}
	f, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer f.Close()

	visible := a.store.Visible()
	if err := export.WriteJSON(f, visible); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Exported %d entries to %s\n", len(visible), args[0])
}

func (a *App) assess(ctx context.Context) {
	text, err := GetSimpleText(a.reader, "On a scale of 1 (safe) to 10 (crisis), where are you right now?", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	score, err := strconv.Atoi(text)
	if err != nil || score < 1 || score > 10 {
		fmt.Fprintln(a.out, "Score must be a number between 1 and 10.")
		return
	}
	reason, err := GetSimpleText(a.reader, "What's driving that? (optional)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	check := models.RiskAssessment{ID: uuid.NewString(), Score: score, Reason: reason}
	if err := a.risks.Insert(ctx, &check); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Recorded. Current level: %s\n", check.Level())
	if check.Level() == models.RiskHigh {
		fmt.Fprintln(a.out, "If you're in immediate danger, call or text 988 (Suicide & Crisis Lifeline).")
	}
}

func (a *App) listRisks(ctx context.Context) {
	checks, err := a.risks.List(ctx, 10)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(checks) == 0 {
		fmt.Fprintln(a.out, "No check-ins yet.")
		return
	}
	for _, c := range checks {
		reason := c.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(a.out, "%s  %2d (%s)  %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Score, c.Level(), reason)
	}
}

func (a *App) seed(ctx context.Context, args []string) {
	n := 6
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			fmt.Fprintln(a.out, "Usage: seed [count]")
			return
		}
		n = parsed
	}
	if err := journal.Seed(ctx, a.store, n); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Seeded %d demo entries.\n", n)
}
