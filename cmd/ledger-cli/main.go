package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"fxledger/pkg/ledger"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", envOr("LEDGER_ADDR", "http://localhost:8080"), "ledger server base URL")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ledger-cli [-addr URL] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version                                       Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  add-user <user_id>                            Register a user\n")
		fmt.Fprintf(os.Stderr, "  add-order <user_id> <src> <dst> <value> <price>  Submit an order\n")
		fmt.Fprintf(os.Stderr, "  orders <user_id>                              List a user's orders\n")
		fmt.Fprintf(os.Stderr, "  user <user_id>                                Show a user's balances\n")
		fmt.Fprintf(os.Stderr, "\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c := ledger.NewClient(*addr)

	if err := run(ctx, c, args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *ledger.Client, args []string) error {
	switch args[0] {
	case "version":
		fmt.Printf("ledger-cli %s\n", version)
		return nil

	case "add-user":
		if len(args) != 2 {
			return usageError()
		}
		return c.AddUser(ctx, args[1])

	case "add-order":
		if len(args) != 6 {
			return usageError()
		}
		value, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		price, err := strconv.ParseFloat(args[5], 64)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		return c.AddOrder(ctx, args[1], args[2], args[3], value, price)

	case "orders":
		if len(args) != 2 {
			return usageError()
		}
		orders, err := c.GetOrders(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"orders": orders})

	case "user":
		if len(args) != 2 {
			return usageError()
		}
		detail, err := c.GetUserDetail(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(detail)

	default:
		flag.Usage()
		return fmt.Errorf("unknown command")
	}
}

func usageError() error {
	flag.Usage()
	return fmt.Errorf("wrong number of arguments")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
