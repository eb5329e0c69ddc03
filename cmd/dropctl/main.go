// dropctl is a terminal client for the drop storefront API. It signs in,
// keeps the token pair fresh between runs and exposes the catalogue,
// including the admin write operations.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/09ahmad/drop-go/api"
	"github.com/09ahmad/drop-go/client"
	"github.com/09ahmad/drop-go/credstore"
	"github.com/09ahmad/drop-go/googleauth"
	"github.com/09ahmad/drop-go/internal/config"
	"github.com/09ahmad/drop-go/internal/utils"
	"github.com/09ahmad/drop-go/products"
)

const appName = "dropctl"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", Red, err, ResetColor)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		displayAppname(appName)
		usage()
		return nil
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	credentialsPath, err := cfg.CredentialsPath()
	if err != nil {
		return err
	}
	store, err := credstore.NewFileStore(credentialsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.New(cfg.APIURL, store,
		client.WithLogger(log),
		client.WithSessionExpiredHandler(func() {
			fmt.Fprintf(os.Stderr, "%sSession expired, please sign in again.%s\n", Yellow, ResetColor)
		}),
	)
	if err != nil {
		return err
	}

	if err := c.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("restoring session")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return runLogin(ctx, c, cfg, rest)
	case "logout":
		return runLogout(ctx, c)
	case "whoami":
		return runWhoami(c)
	case "token":
		return runToken(ctx, c)
	case "refresh":
		return runRefresh(ctx, c)
	case "products":
		return runProducts(ctx, c, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, c *client.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email (prompted when omitted)")
	admin := fs.Bool("admin", false, "sign in to the admin panel")
	google := fs.Bool("google", false, "sign in with Google in the browser")
	credential := fs.String("credential", "", "Google identity credential obtained elsewhere")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *credential != "":
		return googleSignIn(ctx, c, *credential)

	case *google:
		flow, err := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret)
		if err != nil {
			return err
		}
		cred, err := flow.Credential(ctx)
		if err != nil {
			return err
		}
		return googleSignIn(ctx, c, cred)
	}

	address := *email
	if address == "" {
		var err error
		if address, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	signIn := c.Login
	if *admin {
		signIn = c.AdminLogin
	}
	user, err := signIn(ctx, address, password)
	if err != nil {
		return err
	}
	printSignedIn(user)
	return nil
}

func googleSignIn(ctx context.Context, c *client.Client, credential string) error {
	user, err := c.LoginWithGoogle(ctx, credential)
	if err != nil {
		return err
	}
	printSignedIn(user)
	return nil
}

func runLogout(ctx context.Context, c *client.Client) error {
	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(c *client.Client) error {
	user := c.Session().User()
	if user == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s%s%s\n", roleColor(user.Role), user.Name, ResetColor)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Role:  %s\n", user.Role)
	return nil
}

func runToken(ctx context.Context, c *client.Client) error {
	raw, err := c.Token(ctx)
	if err != nil {
		return err
	}
	fmt.Println(raw)
	return nil
}

func runRefresh(ctx context.Context, c *client.Client) error {
	if err := c.RefreshTokens(ctx); err != nil {
		return err
	}
	fmt.Println("Token pair refreshed.")
	return nil
}

func runProducts(ctx context.Context, c *client.Client, args []string) error {
	service, err := products.New(c.HTTPClient(), c.BaseURL())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: dropctl products <list|get|add|update|delete>")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return productsList(ctx, service)
	case "get":
		if len(rest) != 1 {
			return errors.New("usage: dropctl products get <id>")
		}
		product, err := service.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		printProduct(product)
		return nil
	case "add":
		return productsAdd(ctx, service, rest)
	case "update":
		return productsUpdate(ctx, service, rest)
	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: dropctl products delete <id>")
		}
		if err := service.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("Product deleted.")
		return nil
	default:
		return fmt.Errorf("unknown products subcommand %q", sub)
	}
}

func productsList(ctx context.Context, service *products.Service) error {
	list, err := service.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No products.")
		return nil
	}
	for _, p := range list {
		fmt.Printf("%s%-14s%s %-32s %8.2f  stock %d\n", Green, p.ID, ResetColor, p.Title, p.Price, p.Stock)
	}
	return nil
}

func productsAdd(ctx context.Context, service *products.Service, args []string) error {
	fs := flag.NewFlagSet("products add", flag.ContinueOnError)
	title := fs.String("title", "", "product title")
	description := fs.String("description", "", "product description")
	price := fs.Float64("price", 0, "price")
	category := fs.String("category", "", "category")
	image := fs.String("image", "", "image URL")
	stock := fs.Int("stock", 0, "stock count")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("products add needs -title")
	}

	product, err := service.Create(ctx, api.NewProduct{
		Title:       *title,
		Description: *description,
		Price:       *price,
		Category:    *category,
		ImageURL:    *image,
		Stock:       *stock,
	})
	if err != nil {
		return err
	}
	printProduct(product)
	return nil
}

func productsUpdate(ctx context.Context, service *products.Service, args []string) error {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return errors.New("usage: dropctl products update <id> [flags]")
	}
	id, rest := args[0], args[1:]

	fs := flag.NewFlagSet("products update", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	price := fs.Float64("price", 0, "new price")
	category := fs.String("category", "", "new category")
	image := fs.String("image", "", "new image URL")
	stock := fs.Int("stock", 0, "new stock count")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	// Only flags the user actually set end up in the payload.
	var update api.ProductUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			update.Title = utils.Ptr(*title)
		case "description":
			update.Description = utils.Ptr(*description)
		case "price":
			update.Price = utils.Ptr(*price)
		case "category":
			update.Category = utils.Ptr(*category)
		case "image":
			update.ImageURL = utils.Ptr(*image)
		case "stock":
			update.Stock = utils.Ptr(*stock)
		}
	})

	product, err := service.Update(ctx, id, update)
	if err != nil {
		return err
	}
	printProduct(product)
	return nil
}

func printSignedIn(user *api.User) {
	name := user.Name
	if name == "" {
		name = user.Email
	}
	fmt.Printf("%sSigned in as %s (%s)%s\n", roleColor(user.Role), name, user.Role, ResetColor)
}

func printProduct(p *api.Product) {
	if p == nil {
		fmt.Println("No product returned.")
		return
	}
	fmt.Printf("%s%s%s  %s\n", Green, p.ID, ResetColor, p.Title)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	if p.Category != "" {
		fmt.Printf("  Category: %s\n", p.Category)
	}
	fmt.Printf("  Price: %.2f  Stock: %d\n", p.Price, p.Stock)
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func usage() {
	fmt.Print(`Usage: dropctl <command> [flags]

Commands:
  login                         sign in with email and password
  login -admin                  sign in to the admin panel
  login -google                 sign in with Google in the browser
  login -credential <jwt>       sign in with a Google credential obtained elsewhere
  logout                        end the session
  whoami                        show the signed-in account
  token                         print a currently valid access token
  refresh                       force a token refresh
  products list                 list the catalogue
  products get <id>             show one product
  products add [flags]          add a product (admin)
  products update <id> [flags]  change product fields (admin)
  products delete <id>          remove a product (admin)

Environment:
  DROP_API_URL                  API base URL (default http://localhost:8080)
  DROP_CREDENTIALS_FILE         credentials location (default ~/.drop/credentials.json)
  DROP_LOG_LEVEL                zerolog level (default info)
  DROP_GOOGLE_CLIENT_ID         OAuth client ID for login -google
  DROP_GOOGLE_CLIENT_SECRET     OAuth client secret for login -google
`)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
