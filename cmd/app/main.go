// main.go — interactive quoting assistant
// Runs the session orchestrator against a demo catalog.
// - Defaults to the offline scripted provider; switch via flags.
// - With -message, answers once and exits; otherwise starts a REPL.
//
// Examples:
//
//	go run ./cmd/app -message "add 10 2x4 studs"
//
//	export ANTHROPIC_API_KEY=...
//	go run ./cmd/app -provider anthropic -model claude-3-5-sonnet-latest
//
// REPL commands: /quote, /accept, /dismiss, /quit
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	agent "github.com/Quotient-Labs/quote-agent"
	"github.com/Quotient-Labs/quote-agent/src/catalog"
	"github.com/Quotient-Labs/quote-agent/src/models"
)

var (
	flagProvider = flag.String("provider", "scripted", "LLM provider: anthropic|openai|gemini|ollama|scripted")
	flagModel    = flag.String("model", "", "Model ID for the selected provider")
	flagMessage  = flag.String("message", "", "Single user message (skips the REPL)")
	flagJSON     = flag.Bool("json", false, "Print JSON {response, mode, quote} in single-message mode")
	flagTimeout  = flag.Duration("timeout", 90*time.Second, "Per-turn timeout")
	flagVerbose  = flag.Bool("verbose", false, "Enable debug logging")

	flagCatalog  = flag.String("catalog", "demo", "Catalog source: demo|postgres|mongo")
	flagPostgres = flag.String("postgres-dsn", "", "Postgres connection string (catalog=postgres)")
	flagMongoURI = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB URI (catalog=mongo)")
	flagMongoDB  = flag.String("mongo-db", "quote_agent", "MongoDB database name")
	flagMongoCol = flag.String("mongo-collection", "catalog_items", "MongoDB collection name")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	logger, err := buildLogger(*flagVerbose)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	model, err := models.NewProvider(context.Background(), *flagProvider, *flagModel)
	if err != nil {
		fail(err)
	}

	source, closeSource, err := buildCatalog(context.Background())
	if err != nil {
		fail(err)
	}
	defer closeSource()

	a, err := agent.New(agent.Options{
		Model:  model,
		Source: source,
		Logger: logger,
	})
	if err != nil {
		fail(err)
	}

	session, err := a.NewSession()
	if err != nil {
		fail(err)
	}

	if strings.TrimSpace(*flagMessage) != "" {
		runOnce(a, session, *flagMessage)
		return
	}
	runREPL(a, session)
}

func runOnce(a *agent.Agent, session *agent.Session, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	reply, err := a.Respond(ctx, session, message)
	if err != nil {
		fail(err)
	}

	if *flagJSON {
		out := map[string]any{
			"response": reply,
			"mode":     session.Mode(),
			"quote":    session.Quote().Items(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fail(err)
		}
		return
	}
	fmt.Println(reply)
}

func runREPL(a *agent.Agent, session *agent.Session) {
	fmt.Println("Quote assistant ready. Commands: /quote /accept /dismiss /quit")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return
		case "/quote":
			printQuote(session)
			continue
		case "/accept":
			reply, err := a.AcceptBOM(context.Background(), session)
			printOutcome(reply, err)
			continue
		case "/dismiss":
			reply, err := a.DismissBOM(session)
			printOutcome(reply, err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
		reply, err := a.Respond(ctx, session, line)
		cancel()
		printOutcome(reply, err)
	}
}

func printOutcome(reply string, err error) {
	if err != nil {
		if errors.Is(err, agent.ErrNoPendingBOM) {
			fmt.Println("Nothing is awaiting your decision.")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println(reply)
}

func printQuote(session *agent.Session) {
	items := session.Quote().Items()
	if len(items) == 0 {
		fmt.Println("Your quote is empty.")
		return
	}
	for _, line := range items {
		fmt.Printf("  %-12s x%-4d $%8.2f  %s\n",
			line.SKU, line.Quantity, float64(line.Quantity)*line.UnitPrice, line.Description)
	}
	fmt.Printf("  Subtotal: $%.2f\n", session.Quote().Subtotal())
}

// buildCatalog picks the inventory backend from flags. Database-backed
// sources are wrapped in the same read-through cache as the demo one.
func buildCatalog(ctx context.Context) (catalog.Source, func(), error) {
	switch *flagCatalog {
	case "postgres":
		if *flagPostgres == "" {
			return nil, nil, errors.New("catalog=postgres requires -postgres-dsn")
		}
		pg, err := catalog.NewPostgresSource(ctx, *flagPostgres)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.CreateSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return catalog.NewCachedSource(pg, 128, 5*time.Minute), pg.Close, nil
	case "mongo":
		mg, err := catalog.NewMongoSource(ctx, *flagMongoURI, *flagMongoDB, *flagMongoCol)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = mg.Close(context.Background()) }
		return catalog.NewCachedSource(mg, 128, 5*time.Minute), closeFn, nil
	case "demo":
		return demoCatalog(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", *flagCatalog)
	}
}

// demoCatalog is the built-in inventory used when no database is wired up.
// Lookups go through a small read-through cache, same as the real sources.
func demoCatalog() catalog.Source {
	static := catalog.NewStaticSource([]catalog.Item{
		{ID: "LUMBER-2X4", Name: "2x4 Stud 8ft", Description: "Kiln-dried SPF framing stud", UnitPrice: 3.25},
		{ID: "LUMBER-2X6", Name: "2x6 Board 10ft", Description: "Pressure-treated joist board", UnitPrice: 8.75},
		{ID: "PLYWOOD-34", Name: "Plywood Sheet 3/4in", Description: "4x8 sanded plywood", UnitPrice: 42.00},
		{ID: "SCREW-BOX", Name: "Deck Screw Box", Description: "5lb box of 3in exterior screws", UnitPrice: 9.99},
		{ID: "CONCRETE-80", Name: "Concrete Mix 80lb", Description: "High-strength concrete mix", UnitPrice: 6.50},
		{ID: "PIPE-40", Name: "PVC Pipe 40mm", Description: "3m schedule 40 PVC pipe", UnitPrice: 4.50},
		{ID: "VALVE-2", Name: "Ball Valve 2in", Description: "Brass full-port ball valve", UnitPrice: 12.00},
	})
	return catalog.NewCachedSource(static, 128, 5*time.Minute)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
