package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"foodagent"
	"foodagent/agents"
	"foodagent/allergen"
	"foodagent/assistant"
	"foodagent/mealplan"
	"foodagent/profile"
)

const usage = `usage: foodagent [-debug] <command> [args]

commands:
  ask [-agent name] [-budget n] [-servings n] [-diet a,b] <question>
  history [-reset]
  check (-product id | -meal id)
  cart [add <id> <qty> [-override] | set <id> <qty> | remove <id> | clear]
  checkout
  orders
  plan [-week YYYY-MM-DD] [add <day> <slot> <meal-id> <servings> [-override] | remove <entry-id>]
  shopping-list [-week YYYY-MM-DD]
  profile [show | set <file.json> | delete]
  tool [<name> [json-input]]
`

func main() {
	ctx := context.Background()

	global := flag.NewFlagSet("foodagent", flag.ExitOnError)
	debug := global.Bool("debug", false, "dump raw results")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	global.Parse(os.Args[1:]) // nolint: errcheck

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	a, err := newApp(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize", "error", err)
		os.Exit(1)
	}

	cli := &cli{app: a, out: os.Stdout, debug: *debug}
	err = cli.run(ctx, args[0], args[1:])
	if closeErr := a.Close(ctx); closeErr != nil {
		slog.Error("SETUP: Failed to shut down cleanly", "error", closeErr)
	}
	if err != nil {
		slog.Error("RESULT: Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

type cli struct {
	app   *app
	out   io.Writer
	debug bool
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "ask":
		return c.ask(ctx, args)
	case "history":
		return c.history(ctx, args)
	case "check":
		return c.check(ctx, args)
	case "cart":
		return c.cartCmd(ctx, args)
	case "checkout":
		return c.checkout(ctx)
	case "orders":
		return c.orders(ctx)
	case "plan":
		return c.plan(ctx, args)
	case "shopping-list":
		return c.shoppingList(ctx, args)
	case "profile":
		return c.profile(ctx, args)
	case "tool":
		return c.tool(ctx, args)
	}
	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func (c *cli) dump(v ...any) {
	if c.debug {
		foodagent.Dump(v...)
	}
}

func (c *cli) ask(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	agentName := fs.String("agent", "", "consult one specialist: budget, nutrition, dietary, meal-planning")
	budget := fs.Float64("budget", 0, "budget per serving in EUR")
	servings := fs.Int("servings", 0, "number of servings")
	diet := fs.String("diet", "", "comma-separated dietary restrictions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := assistant.Question{
		Text:     strings.Join(fs.Args(), " "),
		Servings: *servings,
	}
	if *agentName != "" {
		t, ok := agents.ParseType(*agentName)
		if !ok {
			slog.Warn("ASSISTANT: Unknown agent, consulting all specialists", "agent", *agentName)
		}
		q.Agent = t
	}
	if *budget > 0 {
		q.Budget = budget
	}
	for _, d := range strings.Split(*diet, ",") {
		if d = strings.TrimSpace(d); d != "" {
			q.DietaryRestrictions = append(q.DietaryRestrictions, d)
		}
	}

	reply, err := c.app.session.Ask(ctx, q)
	if err != nil {
		return err
	}
	c.dump(reply)

	for _, r := range reply.Responses {
		fmt.Fprintf(c.out, "[%s]\n%s\n", r.Agent, r.Message)
		if r.Data != nil {
			for _, p := range r.Data.Products {
				fmt.Fprintf(c.out, "  - %s (%s) €%.2f/%s\n", p.Name, p.ID, p.EffectivePrice(), p.Unit)
			}
			for _, m := range r.Data.Meals {
				fmt.Fprintf(c.out, "  * %s (%s) €%.2f\n", m.Name, m.ID, m.Price)
			}
			if r.Data.Dietary != nil {
				for _, w := range r.Data.Dietary.Warnings {
					fmt.Fprintf(c.out, "  ! %s\n", w)
				}
			}
		}
		fmt.Fprintln(c.out)
	}
	if reply.Summary != "" {
		fmt.Fprintf(c.out, "Summary: %s\n", reply.Summary)
	}
	return nil
}

func (c *cli) history(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	reset := fs.Bool("reset", false, "clear the chat history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *reset {
		return c.app.session.Reset(ctx)
	}

	msgs, err := c.app.session.History(ctx)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		who := m.Role
		if m.Agent != "" {
			who = string(m.Agent)
		}
		fmt.Fprintf(c.out, "%s %s: %s\n", m.Timestamp.Local().Format(time.TimeOnly), who, m.Text)
	}
	return nil
}

func (c *cli) check(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	productID := fs.String("product", "", "product id")
	mealID := fs.String("meal", "", "meal id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var item allergen.Item
	switch {
	case *productID != "":
		p, ok := c.app.catalog.Product(*productID)
		if !ok {
			return fmt.Errorf("unknown product %q", *productID)
		}
		item = allergen.FromProduct(p)
	case *mealID != "":
		m, ok := c.app.catalog.Meal(*mealID)
		if !ok {
			return fmt.Errorf("unknown meal %q", *mealID)
		}
		item = allergen.FromMeal(m)
	default:
		return errors.New("check needs -product or -meal")
	}

	prof, err := c.app.profiles.Profile(ctx)
	if err != nil {
		return err
	}
	res := allergen.Check(item, prof)
	c.dump(res)
	if !res.HasViolation {
		fmt.Fprintf(c.out, "✅ %s is safe for your organization.\n", item.Name)
		return nil
	}
	fmt.Fprintln(c.out, res.WarningMessage)
	return nil
}

func (c *cli) cartCmd(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "add":
			fs := flag.NewFlagSet("cart add", flag.ContinueOnError)
			override := fs.Bool("override", false, "add despite an allergen warning")
			if err := fs.Parse(args[1:]); err != nil {
				return err
			}
			if fs.NArg() != 2 {
				return errors.New("usage: cart add [-override] <product-id> <qty>")
			}
			qty, err := strconv.Atoi(fs.Arg(1))
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			res, err := c.app.cart.Add(ctx, fs.Arg(0), qty, *override)
			if errors.Is(err, allergen.ErrOverrideRequired) {
				fmt.Fprintln(c.out, res.WarningMessage)
				fmt.Fprintln(c.out, "\nRun again with -override to add it anyway.")
				return nil
			}
			if err != nil {
				return err
			}
		case "set":
			if len(args) != 3 {
				return errors.New("usage: cart set <product-id> <qty>")
			}
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			if err := c.app.cart.SetQuantity(ctx, args[1], qty); err != nil {
				return err
			}
		case "remove":
			if len(args) != 2 {
				return errors.New("usage: cart remove <product-id>")
			}
			if err := c.app.cart.Remove(ctx, args[1]); err != nil {
				return err
			}
		case "clear":
			if err := c.app.cart.Clear(ctx); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown cart action %q", args[0])
		}
	}

	items, err := c.app.cart.Items(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(c.out, "🛒 Your cart is empty.")
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(c.out, "%4d × %-40s €%8.2f\n", it.Quantity, it.Product.Name, it.Subtotal())
	}
	total, err := c.app.cart.Total(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%46s €%8.2f\n", "Total", total)
	return nil
}

func (c *cli) checkout(ctx context.Context) error {
	o, err := c.app.cart.Checkout(ctx)
	if err != nil {
		return err
	}
	c.dump(o)

	name := ""
	if prof, err := c.app.profiles.Profile(ctx); err == nil && prof != nil {
		name = prof.Name
	}
	fmt.Fprintln(c.out, o.Summary(name))
	return nil
}

func (c *cli) orders(ctx context.Context) error {
	history, err := c.app.cart.History(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintln(c.out, "No orders yet.")
		return nil
	}
	for _, o := range history {
		fmt.Fprintf(c.out, "%s  %s  %d items  €%.2f  %s\n",
			o.Timestamp.Local().Format(time.DateTime), o.ID, len(o.Items), o.Total, o.Status)
	}
	return nil
}

func weekFlag(fs *flag.FlagSet) func() (time.Time, error) {
	week := fs.String("week", "", "any date in the week (YYYY-MM-DD), default this week")
	return func() (time.Time, error) {
		if *week == "" {
			return mealplan.WeekStart(time.Now()), nil
		}
		t, err := time.Parse(time.DateOnly, *week)
		if err != nil {
			return time.Time{}, fmt.Errorf("week: %w", err)
		}
		return mealplan.WeekStart(t), nil
	}
}

func (c *cli) plan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	week := weekFlag(fs)
	override := fs.Bool("override", false, "schedule despite an allergen warning")
	if err := fs.Parse(args); err != nil {
		return err
	}
	weekStart, err := week()
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		switch rest[0] {
		case "add":
			if len(rest) != 5 {
				return errors.New("usage: plan [-override] add <day> <slot> <meal-id> <servings>")
			}
			day, err := mealplan.ParseDay(rest[1])
			if err != nil {
				return err
			}
			slot, err := mealplan.ParseSlot(rest[2])
			if err != nil {
				return err
			}
			servings, err := strconv.Atoi(rest[4])
			if err != nil {
				return fmt.Errorf("servings: %w", err)
			}
			_, res, err := c.app.planner.Add(ctx, weekStart, day, slot, rest[3], servings, *override)
			if errors.Is(err, allergen.ErrOverrideRequired) {
				fmt.Fprintln(c.out, res.WarningMessage)
				fmt.Fprintln(c.out, "\nRun again with -override to schedule it anyway.")
				return nil
			}
			if err != nil {
				return err
			}
		case "remove":
			if len(rest) != 2 {
				return errors.New("usage: plan remove <entry-id>")
			}
			if err := c.app.planner.Remove(ctx, weekStart, rest[1]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown plan action %q", rest[0])
		}
	}

	plan, err := c.app.planner.Week(ctx, weekStart)
	if err != nil {
		return err
	}
	c.dump(plan)

	fmt.Fprintf(c.out, "📅 Week of %s\n", weekStart.Format(time.DateOnly))
	for _, d := range mealplan.Days {
		entries := plan.Day(d)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(c.out, "%s\n", d)
		for _, e := range entries {
			mark := ""
			if e.Overridden {
				mark = " ⚠️"
			}
			fmt.Fprintf(c.out, "  %-9s %-35s %4d servings  (%s)%s\n", e.Slot, e.Meal.Name, e.Servings, e.ID, mark)
		}
	}

	prof, err := c.app.profiles.Profile(ctx)
	if err != nil {
		return err
	}
	for _, v := range mealplan.Enforce(plan, prof) {
		fmt.Fprintf(c.out, "❗ %s\n", v.Message)
	}
	return nil
}

func (c *cli) shoppingList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shopping-list", flag.ContinueOnError)
	week := weekFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	weekStart, err := week()
	if err != nil {
		return err
	}

	plan, err := c.app.planner.Week(ctx, weekStart)
	if err != nil {
		return err
	}
	items := mealplan.ShoppingList(plan, c.app.catalog.Products())
	if len(items) == 0 {
		fmt.Fprintln(c.out, "Nothing planned this week.")
		return nil
	}
	for _, it := range items {
		product := "no matching product"
		if it.Product != nil {
			product = fmt.Sprintf("%s (%s)", it.Product.Name, it.Product.ID)
		}
		fmt.Fprintf(c.out, "%-30s %5d servings  %s  [%s]\n", it.Name, it.Servings, product, strings.Join(it.Meals, ", "))
	}
	return nil
}

func (c *cli) profile(ctx context.Context, args []string) error {
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "show":
		p, err := c.app.profiles.Profile(ctx)
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Fprintln(c.out, "No organization profile set.")
			return nil
		}
		return writeJSON(c.out, p)
	case "set":
		if len(args) != 2 {
			return errors.New("usage: profile set <file.json>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		var p profile.OrganizationProfile
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parse profile: %w", err)
		}
		saved, err := c.app.profiles.Save(ctx, &p)
		if err != nil {
			return err
		}
		slog.Info("SETUP: Organization profile saved", "id", saved.ID, "name", saved.Name)
		return writeJSON(c.out, saved)
	case "delete":
		return c.app.profiles.Delete(ctx)
	}
	return fmt.Errorf("unknown profile action %q", action)
}

func (c *cli) tool(ctx context.Context, args []string) error {
	if len(args) == 0 {
		for _, t := range c.app.registry.GetTools() {
			fmt.Fprintf(c.out, "%-16s %s\n", t.Name(), t.Description())
		}
		return nil
	}

	t, err := c.app.registry.GetTool(args[0])
	if err != nil {
		return err
	}
	input := map[string]any{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
			return fmt.Errorf("parse tool input: %w", err)
		}
	}
	output, err := t.Run(ctx, input)
	if err != nil {
		return err
	}
	return writeJSON(c.out, output)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
