// Command dinehall is the terminal front end of the ordering client:
// browse the menu, fill a cart, check out, and book a table, against
// the same two backends the web client talks to.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dinehall/dinehall/api"
	"github.com/dinehall/dinehall/core"
	"github.com/dinehall/dinehall/pkg/logger"
	"github.com/dinehall/dinehall/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dinehall:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		storage    = flag.String("storage", "", "storage provider: file, memory, or redis")
	)
	flag.Parse()

	opts := []core.Option{core.WithConfigFile(*configPath)}
	if *storage != "" {
		opts = append(opts, core.WithStorageProvider(*storage))
	}
	cfg, err := core.NewConfig(opts...)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		provider, err := telemetry.New(cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			return err
		}
		defer provider.Shutdown(context.Background())
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg, log)
	session := core.NewSession(ctx, store, log)
	cart := core.NewCart(ctx, store, log)
	orders := core.NewOrders(ctx, store, log, nil)
	orders.SetEstimatedMinutes(cfg.Checkout.EstimatedMinutes)
	reservations := core.NewReservations(ctx, store, log, nil)
	latest := core.NewLatestOrderCache(store, log)

	checkout := core.NewCheckout(core.CheckoutOptions{
		Cart:       cart,
		Orders:     orders,
		Latest:     latest,
		Session:    session,
		Submitter:  client,
		Logger:     log,
		TaxRate:    cfg.Checkout.TaxRate,
		ServiceFee: cfg.Checkout.ServiceFee,
		SyncFailure: func(order core.Order, err error) {
			fmt.Printf("Order %s placed, but syncing with the restaurant failed: %v\n", order.ID, err)
		},
	})

	app := &app{
		cfg:          cfg,
		client:       client,
		session:      session,
		cart:         cart,
		orders:       orders,
		reservations: reservations,
		latest:       latest,
		checkout:     checkout,
	}

	fmt.Printf("Welcome to %s. Type \"help\" for commands.\n", cfg.Restaurant.Name)
	return app.repl(ctx)
}

func openStore(cfg *core.Config, log core.Logger) (core.Store, error) {
	switch cfg.Storage.Provider {
	case "memory":
		store := core.NewMemoryStore()
		store.SetLogger(log)
		return store, nil
	case "redis":
		return core.NewRedisStore(core.RedisStoreOptions{
			RedisURL:  cfg.Storage.RedisURL,
			Namespace: cfg.Storage.Namespace,
			Logger:    log,
		})
	default:
		return core.NewFileStore(cfg.Storage.Path, log)
	}
}

type app struct {
	cfg          *core.Config
	client       *api.Client
	session      *core.Session
	cart         *core.Cart
	orders       *core.Orders
	reservations *core.Reservations
	latest       *core.LatestOrderCache
	checkout     *core.Checkout

	lastItems []api.MenuItem
}

func (a *app) repl(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		if err := a.dispatch(ctx, args); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Print(helpText)
	case "menu":
		return a.showCategories(ctx)
	case "items":
		if len(args) < 2 {
			return fmt.Errorf("usage: items <category-id>")
		}
		return a.showItems(ctx, args[1])
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: add <item-id>")
		}
		return a.addItem(ctx, args[1])
	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: rm <item-id>")
		}
		a.cart.Remove(ctx, args[1])
	case "qty":
		if len(args) < 3 {
			return fmt.Errorf("usage: qty <item-id> <quantity>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 {
			return fmt.Errorf("quantity must be a non-negative integer")
		}
		a.cart.UpdateQuantity(ctx, args[1], n)
	case "cart":
		a.showCart()
	case "table":
		if len(args) < 2 {
			return fmt.Errorf("usage: table <number>")
		}
		a.cart.SetTableNumber(ctx, args[1])
	case "pay":
		if len(args) < 2 {
			return fmt.Errorf("usage: pay <Cash|Card|UPI|Online>")
		}
		a.cart.SetPaymentMethod(ctx, core.PaymentMethod(args[1]))
	case "checkout":
		return a.placeOrder(ctx)
	case "orders":
		a.showOrders(ctx)
	case "login":
		if len(args) < 3 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		return a.login(ctx, args[1], args[2])
	case "logout":
		a.session.Logout(ctx)
	case "reserve":
		return a.reserve(ctx)
	case "reservation":
		return a.showReservation(ctx)
	case "cancel":
		return a.cancelReservation(ctx)
	default:
		return fmt.Errorf("unknown command %q (try \"help\")", args[0])
	}
	return nil
}

const helpText = `commands:
  menu                 list menu categories
  items <category-id>  list items in a category
  add <item-id>        add one unit of an item to the cart
  rm <item-id>         remove an item from the cart
  qty <item-id> <n>    set an item's quantity (0 removes)
  cart                 show the cart
  table <number>       set the table number
  pay <method>         set the payment method (Cash, Card, UPI, Online)
  checkout             place the order
  orders               show placed orders
  login <email> <pw>   log in
  logout               log out
  reserve              book a table (wizard)
  reservation          show the active reservation and countdown
  cancel               cancel the active reservation
  quit                 exit
`

func (a *app) showCategories(ctx context.Context) error {
	categories, err := a.client.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Printf("  %-8s %s\n", c.ID, c.Name)
	}
	return nil
}

func (a *app) showItems(ctx context.Context, categoryID string) error {
	items, err := a.client.ItemsByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("  %-8s %-24s %8.2f\n", item.ID, item.Name, item.Price)
	}
	a.lastItems = items
	return nil
}

func (a *app) addItem(ctx context.Context, id string) error {
	for _, item := range a.lastItems {
		if item.ID == id {
			a.cart.Add(ctx, core.CartItem{
				ID:       item.ID,
				Name:     item.Name,
				Price:    item.Price,
				ImageURL: item.ImageURL,
			})
			fmt.Printf("added %s (x%d in cart)\n", item.Name, a.cart.ItemQuantity(id))
			return nil
		}
	}
	return fmt.Errorf("unknown item %q: list a category with \"items\" first", id)
}

func (a *app) showCart() {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range items {
		fmt.Printf("  %-24s x%-3d %8.2f\n", item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}
	fmt.Printf("  %d items, total %.2f", a.cart.TotalItems(), a.cart.TotalPrice())
	if t := a.cart.TableNumber(); t != "" {
		fmt.Printf(", table %s", t)
	}
	fmt.Printf(", pay by %s\n", a.cart.PaymentMethod())
}

func (a *app) placeOrder(ctx context.Context) error {
	order, err := a.checkout.PlaceOrder(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("order %s placed, estimated wait %d minutes, total %.2f\n",
		order.ID, order.EstimatedTime, order.Total)
	return nil
}

func (a *app) showOrders(ctx context.Context) {
	list := a.orders.All()
	if len(list) == 0 {
		// Cold load: fall back to the persisted latest-order slot.
		if cached, ok := a.latest.Get(ctx); ok {
			list = []core.Order{cached}
		}
	}
	if len(list) == 0 {
		fmt.Println("no orders yet")
		return
	}
	for _, order := range list {
		fmt.Printf("  %s  %-10s %d items  %.2f  %s\n",
			order.ID, order.Status, len(order.Items), order.Total,
			order.PlacedAt.Format("Jan 2 15:04"))
	}
}

func (a *app) login(ctx context.Context, email, password string) error {
	result, err := a.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	a.session.SetToken(ctx, result.Token)
	a.session.SetUser(ctx, &result.Customer)
	fmt.Printf("welcome back, %s\n", a.session.CustomerName())
	return nil
}

func (a *app) reserve(ctx context.Context) error {
	flow := core.NewBookingFlow(core.BookingFlowOptions{
		Tables:       a.client,
		Booker:       a.client,
		Reservations: a.reservations,
		Session:      a.session,
		NoticeTTL:    a.cfg.Booking.NoticeTTL,
	})
	scanner := bufio.NewScanner(os.Stdin)

	prompt := func(label string) string {
		fmt.Print(label)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	for flow.Step() == core.StepDate {
		flow.SetDate(prompt("date (YYYY-MM-DD): "))
		if !flow.ConfirmDate() {
			printNotice(flow)
		}
	}
	for flow.Step() == core.StepTime {
		flow.SetTime(prompt("time (HH:MM): "))
		if !flow.ConfirmTime(ctx) {
			printNotice(flow)
		}
	}

	for flow.Step() == core.StepTable {
		fmt.Println("tables:")
		for _, t := range flow.Tables() {
			marker := " "
			if !t.Available() {
				marker = "x"
			}
			fmt.Printf("  [%s] %-8s %-6s %d seats  %s\n", marker, t.ID, t.DisplayLabel(), t.SeatingCapacity, t.Status)
		}
		if err := flow.SelectTable(prompt("table id: ")); err != nil {
			fmt.Println("error:", err)
			continue
		}
		res, err := flow.Submit(ctx)
		if err != nil {
			printNotice(flow)
			if core.IsAuthFailure(err) {
				return nil
			}
			continue
		}
		fmt.Printf("reserved %s on %s at %s\n",
			res.TableLabel, core.FormatReservationDate(res.Date), core.FormatReservationTime(res.Time))
		return nil
	}
	return nil
}

func printNotice(flow *core.BookingFlow) {
	if n, ok := flow.Notice(); ok {
		fmt.Println(n.Text)
	}
}

func (a *app) showReservation(ctx context.Context) error {
	res, ok := a.reservations.Current()
	if !ok {
		fmt.Println("no active reservation")
		return nil
	}
	fmt.Printf("%s on %s at %s (%d seats)\n",
		res.TableLabel, core.FormatReservationDate(res.Date), core.FormatReservationTime(res.Time), res.SeatingCapacity)

	parts, err := a.reservations.TimeUntil(res)
	if err != nil {
		return err
	}
	if parts.Total <= 0 {
		fmt.Println("the reservation time has passed")
		return nil
	}
	fmt.Printf("starts in %dd %dh %dm %ds\n", parts.Days, parts.Hours, parts.Minutes, parts.Seconds)
	return nil
}

func (a *app) cancelReservation(ctx context.Context) error {
	res, ok := a.reservations.Current()
	if !ok {
		fmt.Println("no active reservation")
		return nil
	}
	if err := a.client.CancelReservation(ctx, a.session.Token(), res.ID); err != nil {
		// The local slot still clears: the customer asked to cancel.
		fmt.Println("backend cancellation failed:", err)
	}
	if res.TableID != "" {
		if err := a.client.SetTableCustomerStatus(ctx, res.TableID, core.TableStatusAvailable); err != nil {
			fmt.Println("could not release the table:", err)
		}
	}
	a.reservations.Clear(ctx)
	fmt.Println("reservation cancelled")
	return nil
}
