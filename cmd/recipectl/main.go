// Command recipectl searches, adds and deletes recipes on a KitchenOS server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"kitchenos/pkg/client"
	"kitchenos/pkg/recipe"
)

const usage = `usage: recipectl [-addr URL] [-tenant N] [-no-color] <command> [args]

commands:
  search [query]                       list recipes matching query
  add -title T [-ingredients I] [-instructions S] [-yield Y] [-key K]
  delete <id>                          remove a recipe
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recipectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	addr := fs.String("addr", envOr("KITCHENOS_URL", "http://localhost:8080"), "server base URL")
	tenant := fs.Int("tenant", 1, "restaurant id")
	noColor := fs.Bool("no-color", false, "disable colored output")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *noColor {
		color.NoColor = true
	}
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	c := client.New(*addr, *tenant)

	switch rest[0] {
	case "search":
		recipes, err := c.Search(ctx, strings.Join(rest[1:], " "))
		if err != nil {
			fmt.Fprintln(stderr, bad("search failed:"), err)
			return 1
		}
		printRecipes(stdout, recipes)
		fmt.Fprintln(stdout, ok(fmt.Sprintf("%d recipe(s)", len(recipes))))
		return 0

	case "add":
		afs := flag.NewFlagSet("add", flag.ContinueOnError)
		afs.SetOutput(stderr)
		var r recipe.Recipe
		afs.StringVar(&r.Title, "title", "", "recipe title (required)")
		afs.StringVar(&r.Ingredients, "ingredients", "", "ingredients")
		afs.StringVar(&r.Instructions, "instructions", "", "instructions")
		afs.StringVar(&r.Yield, "yield", "", "yield, e.g. \"4 Servings\"")
		key := afs.String("key", "", "idempotency key")
		if err := afs.Parse(rest[1:]); err != nil {
			return 2
		}
		id, err := c.Add(ctx, r, *key)
		if err != nil {
			fmt.Fprintln(stderr, bad("add failed:"), err)
			return 1
		}
		fmt.Fprintln(stdout, ok("added recipe"), id)
		return 0

	case "delete":
		if len(rest) != 2 {
			fs.Usage()
			return 2
		}
		id, err := strconv.Atoi(rest[1])
		if err != nil {
			fmt.Fprintln(stderr, bad("invalid id:"), rest[1])
			return 2
		}
		if err := c.Delete(ctx, id); err != nil {
			if errors.Is(err, client.ErrNotFound) {
				fmt.Fprintln(stderr, bad("not found:"), id)
				return 1
			}
			fmt.Fprintln(stderr, bad("delete failed:"), err)
			return 1
		}
		fmt.Fprintln(stdout, ok("deleted"), id)
		return 0
	}

	fmt.Fprintln(stderr, bad("unknown command:"), rest[0])
	fs.Usage()
	return 2
}

func printRecipes(w io.Writer, recipes []recipe.Recipe) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Ingredients", "Yield"})
	table.SetAutoWrapText(false)
	for _, r := range recipes {
		table.Append([]string{strconv.Itoa(r.ID), r.Title, r.Ingredients, r.Yield})
	}
	table.Render()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
